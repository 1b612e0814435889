// Package charm renders slog records for people at a terminal.
package charm

import (
	"io"
	"log/slog"
	"os"

	"github.com/charmbracelet/log"
)

func NewDefault(level slog.Level) *slog.Logger {
	return New(os.Stderr, level)
}

func New(w io.Writer, level slog.Level) *slog.Logger {
	h := log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      "15:04:05",
		// charm levels share slog's numeric values
		Level: log.Level(level),
	})
	return slog.New(h)
}
