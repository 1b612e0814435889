package stdjson

import (
	"io"
	"log/slog"
	"os"
	"strings"
)

// Redacted replaces the value of secret attributes.
const Redacted = "[REDACTED]"

func NewDefault(level slog.Level) *slog.Logger {
	return New(os.Stdout, level)
}

func New(w io.Writer, level slog.Level) *slog.Logger {
	return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level, ReplaceAttr: redact}))
}

func redact(_ []string, a slog.Attr) slog.Attr {
	key := strings.ToLower(a.Key)
	if strings.Contains(key, "pass") || strings.Contains(key, "secret") || key == "api_key" {
		return slog.String(a.Key, Redacted)
	}
	return a
}
