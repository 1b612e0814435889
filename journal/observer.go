package journal

import (
	"context"
	"fmt"
	"time"

	"github.com/manavc-13/KIIT-Mailer/batch"
	"github.com/manavc-13/KIIT-Mailer/logger"
)

// Observer writes batch events to a journal. Append failures are logged and
// never stop the batch.
type Observer struct {
	batch.NopObserver
	j   Journal
	now func() time.Time
}

func NewObserver(j Journal) *Observer {
	return &Observer{j: j, now: time.Now}
}

func (o *Observer) OnBatchStart(ctx context.Context, _ string, total int) {
	o.append(ctx, TypeSystem, fmt.Sprintf("Starting batch of %d emails...", total))
}

func (o *Observer) OnRowSent(ctx context.Context, out batch.Outcome) {
	switch out.Status {
	case batch.StatusSent:
		o.append(ctx, TypeSuccess, "Sent to "+out.Email)
	case batch.StatusFailed:
		o.append(ctx, TypeError, fmt.Sprintf("Failed to send to %s: %s", out.Email, out.Error))
	}
}

func (o *Observer) OnBatchComplete(ctx context.Context, s batch.Summary) {
	typ := TypeSuccess
	if s.Cancelled {
		typ = TypeSystem
	}
	o.append(ctx, typ, FinishedMessage(s))
}

// FinishedMessage is the operator-facing batch result line.
func FinishedMessage(s batch.Summary) string {
	msg := fmt.Sprintf("Batch Finished. Sent %d/%d", s.Succeeded, s.Total)
	if s.Cancelled {
		msg += fmt.Sprintf(" (cancelled after %d rows)", s.Processed())
	}
	return msg
}

func (o *Observer) append(ctx context.Context, typ, msg string) {
	if err := o.j.Append(ctx, Entry{Type: typ, Message: msg, Time: o.now()}); err != nil {
		logger.FromContextWithErr(ctx, err).WarnContext(ctx, "failed to write journal entry")
	}
}
