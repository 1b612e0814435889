package pgx

import (
	"context"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5/tracelog"

	"github.com/manavc-13/KIIT-Mailer/logger"
)

// Logger writes pgx trace logs to the context logger.
type Logger struct{}

func NewLogger() *Logger {
	return &Logger{}
}

func (l *Logger) Log(ctx context.Context, level tracelog.LogLevel, msg string, data map[string]any) {
	attrs := make([]slog.Attr, 0, len(data))
	for k, v := range data {
		if d, ok := v.(time.Duration); ok && k == "time" {
			attrs = append(attrs, slog.Int64("duration_ms", d.Milliseconds()))
			continue
		}
		if k == "args" {
			// query arguments may carry message bodies
			continue
		}
		attrs = append(attrs, slog.Any(k, v))
	}

	logger.FromContext(ctx).WithGroup("postgres").LogAttrs(ctx, slogLevel(level), msg, attrs...)
}

func slogLevel(level tracelog.LogLevel) slog.Level {
	switch level {
	case tracelog.LogLevelTrace:
		return slog.LevelDebug - 1
	case tracelog.LogLevelDebug:
		return slog.LevelDebug
	case tracelog.LogLevelInfo:
		return slog.LevelInfo
	case tracelog.LogLevelWarn:
		return slog.LevelWarn
	default:
		return slog.LevelError
	}
}
