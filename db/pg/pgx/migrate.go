package pgx

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"

	"github.com/jackc/pgx/v5/stdlib"
	"github.com/pkg/errors"
	"github.com/pressly/goose/v3"

	"github.com/manavc-13/KIIT-Mailer/logger"
)

// Migrate applies the goose migrations found in dir of migrations.
func (db *DB) Migrate(ctx context.Context, migrations fs.FS, dir string) error {
	// shares the pool connections, so it is not closed here
	sqlDB := stdlib.OpenDBFromPool(db.Pool)

	goose.SetBaseFS(migrations)
	goose.SetLogger(gooseLogger{logger.FromContext(ctx).WithGroup("migrations")})
	goose.SetTableName(db.cfg.MigrationsTable)
	if err := goose.SetDialect("postgres"); err != nil {
		return errors.Wrap(err, "failed to set goose dialect")
	}

	if err := goose.UpContext(ctx, sqlDB, dir); err != nil {
		return errors.Wrap(err, "failed to apply migrations")
	}
	return nil
}

type gooseLogger struct {
	log *slog.Logger
}

func (g gooseLogger) Printf(format string, args ...any) {
	g.log.Info(fmt.Sprintf(format, args...))
}

// Fatalf only logs; goose returns the error to the caller as well.
func (g gooseLogger) Fatalf(format string, args ...any) {
	g.log.Error(fmt.Sprintf(format, args...))
}
