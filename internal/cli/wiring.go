package cli

import (
	"context"
	"io"

	"github.com/pkg/errors"

	pgxdb "github.com/manavc-13/KIIT-Mailer/db/pg/pgx"
	"github.com/manavc-13/KIIT-Mailer/journal"
	jnoop "github.com/manavc-13/KIIT-Mailer/journal/noop"
	jredis "github.com/manavc-13/KIIT-Mailer/journal/redis"
	"github.com/manavc-13/KIIT-Mailer/mail"
	"github.com/manavc-13/KIIT-Mailer/queue"
	"github.com/manavc-13/KIIT-Mailer/queue/rabbitmq"
	"github.com/manavc-13/KIIT-Mailer/relay"
	"github.com/manavc-13/KIIT-Mailer/storage"
	"github.com/manavc-13/KIIT-Mailer/storage/minio"
	"github.com/manavc-13/KIIT-Mailer/store"
	snoop "github.com/manavc-13/KIIT-Mailer/store/noop"
	"github.com/manavc-13/KIIT-Mailer/store/pg"
)

type storeConfig struct {
	Provider string `envconfig:"STORE_PROVIDER" default:"noop"` // noop or postgres
}

type eventsConfig struct {
	Enabled bool `envconfig:"EVENTS_ENABLED" default:"false"`
}

type closerFunc func() error

func (f closerFunc) Close() error { return f() }

var nopCloser = closerFunc(func() error { return nil })

func openStore(ctx context.Context, load relay.ConfigLoader) (store.Store, io.Closer, error) {
	var cfg storeConfig
	if err := load(&cfg); err != nil {
		return nil, nil, err
	}
	switch cfg.Provider {
	case "noop", "":
		return snoop.New(), nopCloser, nil
	case "postgres":
		var dbCfg pgxdb.Config
		if err := load(&dbCfg); err != nil {
			return nil, nil, errors.Wrap(err, "failed to load postgres config")
		}
		st, err := pg.Open(ctx, dbCfg)
		if err != nil {
			return nil, nil, err
		}
		return st, st, nil
	default:
		return nil, nil, errors.Errorf("unknown store provider: %s", cfg.Provider)
	}
}

func openJournal(ctx context.Context, load relay.ConfigLoader) (journal.Journal, error) {
	var cfg journal.Config
	if err := load(&cfg); err != nil {
		return nil, err
	}
	switch cfg.Provider {
	case journal.ProviderNoop, "":
		return jnoop.New(journal.MaxEntries), nil
	case journal.ProviderRedis:
		j, err := jredis.Connect(ctx, jredis.Config{
			Addr:         cfg.RedisAddr,
			Password:     cfg.RedisPassword,
			DB:           cfg.RedisDB,
			MaxRetries:   cfg.RedisMaxRetries,
			DialTimeout:  cfg.RedisDialTimeout,
			ReadTimeout:  cfg.RedisReadTimeout,
			WriteTimeout: cfg.RedisWriteTimeout,
			PoolSize:     cfg.RedisPoolSize,
			Key:          cfg.Key,
			MaxEntries:   journal.MaxEntries,
		})
		if err != nil {
			return nil, err
		}
		return j, nil
	default:
		return nil, errors.Errorf("unknown journal provider: %s", cfg.Provider)
	}
}

// openPublisher returns queue.Discard unless EVENTS_ENABLED is set.
func openPublisher(ctx context.Context, load relay.ConfigLoader) (queue.Publisher, io.Closer, error) {
	var cfg eventsConfig
	if err := load(&cfg); err != nil {
		return nil, nil, err
	}
	if !cfg.Enabled {
		return queue.Discard{}, nopCloser, nil
	}
	var rmq rabbitmq.Config
	if err := load(&rmq); err != nil {
		return nil, nil, errors.Wrap(err, "failed to load rabbitmq config")
	}
	pub, err := rabbitmq.Connect(ctx, rmq)
	if err != nil {
		return nil, nil, err
	}
	return pub, pub, nil
}

// openObjectStore is only called when a campaign references s3:// objects.
func openObjectStore(load relay.ConfigLoader) (storage.Storage, error) {
	var cfg minio.Config
	if err := load(&cfg); err != nil {
		return nil, errors.Wrap(err, "failed to load object storage config")
	}
	s, err := minio.NewDefault(cfg)
	if err != nil {
		return nil, err
	}
	return s, nil
}

// newRelay builds an in-process relay on the configured mail provider.
func newRelay(ctx context.Context, load relay.ConfigLoader, st store.Store) (*relay.Relay, mail.Sender, error) {
	var cfg relay.Config
	if err := load(&cfg); err != nil {
		return nil, nil, err
	}
	sender, err := relay.NewSender(ctx, cfg.Provider, load)
	if err != nil {
		return nil, nil, err
	}
	return relay.New(sender, st, cfg), sender, nil
}
