package batch

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"

	"github.com/manavc-13/KIIT-Mailer/compose"
	"github.com/manavc-13/KIIT-Mailer/recipient"
)

var (
	tracer = otel.Tracer("github.com/manavc-13/KIIT-Mailer/batch")
	meter  = otel.GetMeterProvider().Meter("github.com/manavc-13/KIIT-Mailer/batch")
	// nolint:errcheck // Sync OpenTelemetry instruments never return errors
	rowsCount, _    = meter.Int64Counter("batch.rows", metric.WithDescription("processed recipient rows by status"))
	sendTimeHist, _ = meter.Int64Histogram("batch.send_time", metric.WithUnit("ms"))
	batchesCount, _ = meter.Int64Counter("batch.runs")
)

// Validate checks the batch preconditions and returns the resolved email column.
func (j Job) Validate() (string, error) {
	if strings.TrimSpace(j.Template) == "" {
		return "", ErrEmptyTemplate
	}
	if j.Subject == "" {
		return "", ErrEmptySubject
	}
	if j.Recipients.Len() == 0 {
		return "", ErrNoRecipients
	}
	return j.Recipients.EmailColumn()
}

// Run dispatches job row by row. A send starts only after the previous one
// returned. Per-row failures, including panics in sender, are recorded in
// the summary and never abort the batch. ctx is consulted before each row;
// when it is done Run stops and returns the partial summary together with
// the context error.
func Run(ctx context.Context, job Job, sender Sender, obs Observer) (*Summary, error) {
	emailCol, err := job.Validate()
	if err != nil {
		return nil, err
	}
	if obs == nil {
		obs = NopObserver{}
	}
	if job.ID == "" {
		job.ID = uuid.NewString()
	}

	ctx, span := tracer.Start(ctx, "Batch.Run")
	defer span.End()

	rows := job.Recipients.Rows()
	total := len(rows)
	span.SetAttributes(
		attribute.String("batch.id", job.ID),
		attribute.Int("batch.total", total),
		attribute.Int("batch.attachments", len(job.Attachments)),
	)
	batchesCount.Add(ctx, 1)

	started := time.Now()
	summary := &Summary{
		ID:       job.ID,
		Total:    total,
		Outcomes: make([]Outcome, 0, total),
	}
	obs.OnBatchStart(ctx, job.ID, total)

	var runErr error
	for i, row := range rows {
		if err := ctx.Err(); err != nil {
			summary.Cancelled = true
			runErr = errors.Wrapf(err, "batch cancelled after %d of %d rows", i, total)
			break
		}

		out := runRow(ctx, job, sender, row, emailCol, i+1)
		switch out.Status {
		case StatusSent:
			summary.Attempted++
			summary.Succeeded++
		case StatusFailed:
			summary.Attempted++
			summary.Failed++
		case StatusSkipped:
			summary.Skipped++
		}
		summary.Outcomes = append(summary.Outcomes, out)
		rowsCount.Add(ctx, 1, metric.WithAttributes(attribute.String("status", string(out.Status))))

		obs.OnRowSent(ctx, out)
		obs.OnProgress(ctx, i+1, total)
	}
	summary.Duration = time.Since(started)

	span.SetAttributes(
		attribute.Int("batch.succeeded", summary.Succeeded),
		attribute.Int("batch.failed", summary.Failed),
		attribute.Int("batch.skipped", summary.Skipped),
		attribute.Bool("batch.cancelled", summary.Cancelled),
	)
	if runErr != nil {
		span.SetStatus(codes.Error, runErr.Error())
	} else {
		span.SetStatus(codes.Ok, "")
	}

	obs.OnBatchComplete(ctx, *summary)
	return summary, runErr
}

func runRow(ctx context.Context, job Job, sender Sender, row recipient.Row, emailCol string, index int) Outcome {
	email := strings.TrimSpace(row.Get(emailCol))
	if email == "" {
		return Outcome{Index: index, Status: StatusSkipped}
	}

	msg := Message{
		To:          email,
		Subject:     job.Subject,
		HTML:        compose.Substitute(job.Template, row),
		Attachments: job.Attachments,
	}
	if job.Options.SubstituteSubject {
		msg.Subject = compose.Substitute(job.Subject, row)
	}

	started := time.Now()
	id, err := sendOne(ctx, sender, msg, job.Options.SendTimeout)
	sendTimeHist.Record(ctx, time.Since(started).Milliseconds())

	if err != nil {
		return Outcome{Index: index, Email: email, Status: StatusFailed, Error: err.Error()}
	}
	return Outcome{Index: index, Email: email, Status: StatusSent, MessageID: id}
}

func sendOne(ctx context.Context, sender Sender, msg Message, timeout time.Duration) (id string, err error) {
	ctx, span := tracer.Start(ctx, "Batch.SendOne")
	defer span.End()
	span.SetAttributes(attribute.String("batch.to", msg.To))

	defer func() {
		if r := recover(); r != nil {
			err = errors.Errorf("send panicked: %v", r)
		}
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
	}()

	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	return sender.SendOne(ctx, msg)
}
