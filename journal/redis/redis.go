// Package redis stores the journal in a Redis list trimmed to the newest
// entries.
package redis

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/pkg/errors"
	rclient "github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/manavc-13/KIIT-Mailer/journal"
)

var tracer = otel.Tracer("github.com/manavc-13/KIIT-Mailer/journal/redis")

var _ journal.Journal = (*Client)(nil)

type Config struct {
	Addr            string
	Password        string
	DB              int
	MaxRetries      int
	MinRetryBackoff time.Duration
	MaxRetryBackoff time.Duration
	DialTimeout     time.Duration
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	PoolSize        int
	Key             string
	MaxEntries      int
}

type Client struct {
	rdb    *rclient.Client
	cfg    Config
	logger *slog.Logger
}

// Connect dials Redis and pings it.
func Connect(ctx context.Context, cfg Config) (*Client, error) {
	if cfg.Addr == "" {
		cfg.Addr = "localhost:6379"
	}
	if cfg.Key == "" {
		cfg.Key = "bulkmail:journal"
	}
	if cfg.MaxEntries <= 0 {
		cfg.MaxEntries = journal.MaxEntries
	}

	rdb := rclient.NewClient(&rclient.Options{
		Addr:            cfg.Addr,
		Password:        cfg.Password,
		DB:              cfg.DB,
		MaxRetries:      cfg.MaxRetries,
		MinRetryBackoff: cfg.MinRetryBackoff,
		MaxRetryBackoff: cfg.MaxRetryBackoff,
		DialTimeout:     cfg.DialTimeout,
		ReadTimeout:     cfg.ReadTimeout,
		WriteTimeout:    cfg.WriteTimeout,
		PoolSize:        cfg.PoolSize,
	})
	c := &Client{rdb: rdb, cfg: cfg, logger: slog.Default().WithGroup("redis")}

	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, errors.Wrap(err, "failed to ping redis")
	}
	c.logger.Debug("connected to redis", "addr", cfg.Addr, "key", cfg.Key)
	return c, nil
}

// Append pushes e and trims the list to the newest MaxEntries in one
// transaction.
func (c *Client) Append(ctx context.Context, e journal.Entry) error {
	ctx, span := c.startSpan(ctx, "Append")
	defer span.End()

	raw, err := json.Marshal(e)
	if err != nil {
		recordError(span, err)
		return errors.Wrap(err, "failed to encode journal entry")
	}

	_, err = c.rdb.TxPipelined(ctx, func(p rclient.Pipeliner) error {
		p.RPush(ctx, c.cfg.Key, raw)
		p.LTrim(ctx, c.cfg.Key, int64(-c.cfg.MaxEntries), -1)
		return nil
	})
	recordError(span, err)
	return errors.Wrap(err, "failed to append journal entry")
}

func (c *Client) List(ctx context.Context) ([]journal.Entry, error) {
	ctx, span := c.startSpan(ctx, "List")
	defer span.End()

	raw, err := c.rdb.LRange(ctx, c.cfg.Key, 0, -1).Result()
	if err != nil {
		recordError(span, err)
		return nil, errors.Wrap(err, "failed to read journal")
	}

	entries := make([]journal.Entry, 0, len(raw))
	for _, r := range raw {
		var e journal.Entry
		if err := json.Unmarshal([]byte(r), &e); err != nil {
			c.logger.WarnContext(ctx, "skipping malformed journal entry", "error", err)
			continue
		}
		entries = append(entries, e)
	}
	span.SetAttributes(attribute.Int("journal.entries", len(entries)))
	recordError(span, nil)
	return entries, nil
}

func (c *Client) Clear(ctx context.Context) error {
	ctx, span := c.startSpan(ctx, "Clear")
	defer span.End()

	err := c.rdb.Del(ctx, c.cfg.Key).Err()
	recordError(span, err)
	return errors.Wrap(err, "failed to clear journal")
}

func (c *Client) Close() error {
	err := c.rdb.Close()
	if err != nil && !errors.Is(err, rclient.ErrClosed) {
		return errors.Wrap(err, "failed to close redis connection")
	}
	return nil
}

func (c *Client) startSpan(ctx context.Context, op string) (context.Context, trace.Span) {
	attrs := []attribute.KeyValue{
		attribute.String("db.system", "redis"),
		attribute.String("redis.key", c.cfg.Key),
	}
	if c.cfg.DB > 0 {
		attrs = append(attrs, attribute.Int("redis.db", c.cfg.DB))
	}
	return tracer.Start(ctx, "journal.redis."+op, trace.WithAttributes(attrs...))
}

func recordError(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return
	}
	span.SetStatus(codes.Ok, "")
}
