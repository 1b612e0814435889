package logger

import (
	"context"
	"log/slog"

	"github.com/pkg/errors"
	"go.opentelemetry.io/otel"

	"github.com/manavc-13/KIIT-Mailer/logger/charm"
	"github.com/manavc-13/KIIT-Mailer/logger/devslog"
	"github.com/manavc-13/KIIT-Mailer/logger/noop"
	"github.com/manavc-13/KIIT-Mailer/logger/stdjson"
)

type Level string
type Provider string
type contextKeyT string

var contextKey = contextKeyT("github.com/manavc-13/KIIT-Mailer/logger")

const (
	INFO  Level = "info"
	ERROR Level = "error"
	WARN  Level = "warn"
	DEBUG Level = "debug"

	ProviderDevSlog Provider = "dev"      // for dev
	ProviderStdJson Provider = "std_json" // for the relay in production
	ProviderCharm   Provider = "charm"    // for the CLI
	ProviderNoop    Provider = "noop"     // for unit tests
)

type Config struct {
	Provider Provider `envconfig:"LOG_PROVIDER" default:"std_json"`
	Level    Level    `envconfig:"LOG_LEVEL" default:"info"`
}

// NewDefault builds the logger c selects. Unknown providers get std_json.
func NewDefault(c Config) *slog.Logger {
	level := convertLevel(c.Level)
	switch c.Provider {
	case ProviderDevSlog:
		return devslog.NewDefault(level)
	case ProviderCharm:
		return charm.NewDefault(level)
	case ProviderNoop:
		return noop.NewNoop()
	case ProviderStdJson:
		fallthrough
	default:
		return stdjson.NewDefault(level)
	}
}

// InitDefault installs the logger as slog's default and routes otel errors to it.
func InitDefault(c Config) {
	slog.SetDefault(NewDefault(c))
	otel.SetErrorHandler(otel.ErrorHandlerFunc(func(err error) {
		slog.Default().Error(err.Error())
	}))
}

// FromContext returns the logger stored in ctx, or the default one.
func FromContext(ctx context.Context) *slog.Logger {
	if l, ok := ctx.Value(contextKey).(*slog.Logger); ok {
		return l
	}
	return slog.Default()
}

// NewContext stores l in ctx.
func NewContext(ctx context.Context, l *slog.Logger) context.Context {
	return context.WithValue(ctx, contextKey, l)
}

// WithErr returns the default logger with err and its stack attached.
func WithErr(err error) *slog.Logger {
	return appendErr(slog.Default(), err)
}

func FromContextWithErr(ctx context.Context, err error) *slog.Logger {
	return appendErr(FromContext(ctx), err)
}

// WithErrIf is WithErr for a non-nil err and a discarding logger otherwise.
func WithErrIf(err error) *slog.Logger {
	if err == nil {
		return noop.NewNoop()
	}
	return WithErr(err)
}

func FromContextWithErrIf(ctx context.Context, err error) *slog.Logger {
	if err == nil {
		return noop.NewNoop()
	}
	return FromContextWithErr(ctx, err)
}

func appendErr(l *slog.Logger, err error) *slog.Logger {
	var st interface{ StackTrace() errors.StackTrace }
	if errors.As(err, &st) {
		l = l.With("stack", st.StackTrace())
	}
	return l.With("error", err.Error())
}

var levels = map[Level]slog.Level{
	DEBUG: slog.LevelDebug,
	INFO:  slog.LevelInfo,
	WARN:  slog.LevelWarn,
	ERROR: slog.LevelError,
}

// convertLevel falls back to info for unknown levels.
func convertLevel(level Level) slog.Level {
	if l, ok := levels[level]; ok {
		return l
	}
	return slog.LevelInfo
}
