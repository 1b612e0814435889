// Package pgx opens the Postgres pool used by the draft and log store and
// applies its migrations.
package pgx

import (
	"context"
	"time"

	"github.com/exaring/otelpgx"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/multitracer"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/tracelog"
	"github.com/pkg/errors"
)

type DB struct {
	*pgxpool.Pool
	cfg Config
}

type Options struct {
	Tracers []pgx.QueryTracer
}

func New(ctx context.Context, cfg Config, options *Options) (*DB, error) {
	poolCfg, err := pgxpool.ParseConfig(cfg.URL().String())
	if err != nil {
		return nil, errors.Wrap(err, "failed to parse postgres config")
	}

	if cfg.MaxOpenConns < 1 {
		cfg.MaxOpenConns = 1
	}
	poolCfg.MaxConns = cfg.MaxOpenConns
	poolCfg.MaxConnLifetime = time.Duration(cfg.MaxConnLifeTime) * time.Second
	poolCfg.MaxConnIdleTime = time.Duration(cfg.MaxConnIdleTime) * time.Second
	poolCfg.HealthCheckPeriod = 20 * time.Second

	if options != nil && len(options.Tracers) > 0 {
		poolCfg.ConnConfig.Tracer = multitracer.New(options.Tracers...)
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, errors.Wrap(err, "failed to init postgres pool")
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, errors.Wrap(err, "failed to ping postgres")
	}

	return &DB{Pool: pool, cfg: cfg}, nil
}

// NewDefault opens a pool with otel tracing and slog query logging.
func NewDefault(ctx context.Context, cfg Config) (*DB, error) {
	return New(ctx, cfg, &Options{
		Tracers: []pgx.QueryTracer{
			otelpgx.NewTracer(),
			&tracelog.TraceLog{
				Logger:   NewLogger(),
				LogLevel: parseTraceLogLevel(cfg.TraceLogLevel),
			},
		},
	})
}

func (db *DB) Close() error {
	db.Pool.Close()
	return nil
}

func parseTraceLogLevel(lvl string) tracelog.LogLevel {
	level, err := tracelog.LogLevelFromString(lvl)
	if err != nil {
		return tracelog.LogLevelNone
	}
	return level
}
