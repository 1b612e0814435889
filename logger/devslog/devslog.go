package devslog

import (
	"log/slog"
	"os"

	"github.com/golang-cz/devslog"
)

func NewDefault(level slog.Level) *slog.Logger {
	opts := &devslog.Options{
		HandlerOptions: &slog.HandlerOptions{
			AddSource: level <= slog.LevelDebug,
			Level:     level,
		},
		MaxErrorStackTrace: 20,
		MaxSlicePrintSize:  20,
		SortKeys:           true,
		TimeFormat:         "[15:04:05]",
		DebugColor:         devslog.Magenta,
		StringerFormatter:  true,
	}

	return slog.New(devslog.NewHandler(os.Stderr, opts))
}
