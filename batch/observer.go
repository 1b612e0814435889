package batch

import (
	"context"
	"log/slog"

	"github.com/manavc-13/KIIT-Mailer/logger"
)

// Observer receives batch events on the dispatching goroutine. Slow
// observers slow the batch down.
type Observer interface {
	OnBatchStart(ctx context.Context, id string, total int)
	// OnRowSent is called for every processed row, skipped rows included.
	OnRowSent(ctx context.Context, o Outcome)
	OnProgress(ctx context.Context, current, total int)
	OnBatchComplete(ctx context.Context, s Summary)
}

// NopObserver ignores every event. Embed it to implement a subset.
type NopObserver struct{}

func (NopObserver) OnBatchStart(context.Context, string, int) {}
func (NopObserver) OnRowSent(context.Context, Outcome)        {}
func (NopObserver) OnProgress(context.Context, int, int)      {}
func (NopObserver) OnBatchComplete(context.Context, Summary)  {}

// Observers fans events out in order.
type Observers []Observer

func (obs Observers) OnBatchStart(ctx context.Context, id string, total int) {
	for _, o := range obs {
		o.OnBatchStart(ctx, id, total)
	}
}

func (obs Observers) OnRowSent(ctx context.Context, out Outcome) {
	for _, o := range obs {
		o.OnRowSent(ctx, out)
	}
}

func (obs Observers) OnProgress(ctx context.Context, current, total int) {
	for _, o := range obs {
		o.OnProgress(ctx, current, total)
	}
}

func (obs Observers) OnBatchComplete(ctx context.Context, s Summary) {
	for _, o := range obs {
		o.OnBatchComplete(ctx, s)
	}
}

// ProgressFunc observes progress only.
type ProgressFunc func(current, total int)

func (f ProgressFunc) OnBatchStart(context.Context, string, int) {}
func (f ProgressFunc) OnRowSent(context.Context, Outcome)        {}
func (f ProgressFunc) OnProgress(_ context.Context, current, total int) {
	f(current, total)
}
func (f ProgressFunc) OnBatchComplete(context.Context, Summary) {}

// Percent is the progress percentage shown to operators.
func Percent(current, total int) int {
	if total <= 0 {
		return 0
	}
	return int(float64(current)/float64(total)*100 + 0.5)
}

// LogObserver writes batch events to the context logger.
type LogObserver struct {
	NopObserver
}

func (LogObserver) OnBatchStart(ctx context.Context, id string, total int) {
	logger.FromContext(ctx).InfoContext(ctx, "starting batch", "batch_id", id, "total", total)
}

func (LogObserver) OnRowSent(ctx context.Context, o Outcome) {
	l := logger.FromContext(ctx)
	switch o.Status {
	case StatusSent:
		l.InfoContext(ctx, "sent to "+o.Email, "index", o.Index, "message_id", o.MessageID)
	case StatusFailed:
		l.ErrorContext(ctx, "failed to send to "+o.Email+": "+o.Error, "index", o.Index)
	case StatusSkipped:
		l.DebugContext(ctx, "skipped row without email", "index", o.Index)
	}
}

func (LogObserver) OnBatchComplete(ctx context.Context, s Summary) {
	level := slog.LevelInfo
	if s.Failed > 0 || s.Cancelled {
		level = slog.LevelWarn
	}
	logger.FromContext(ctx).Log(ctx, level, "batch finished",
		"batch_id", s.ID,
		"sent", s.Succeeded,
		"total", s.Total,
		"failed", s.Failed,
		"skipped", s.Skipped,
		"cancelled", s.Cancelled,
		"duration", s.Duration.String(),
	)
}
