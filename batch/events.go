package batch

import (
	"context"
	"time"

	"github.com/manavc-13/KIIT-Mailer/logger"
	"github.com/manavc-13/KIIT-Mailer/queue"
)

// Event topics published by EventObserver.
const (
	TopicRow      = "bulkmail.batch.row"
	TopicComplete = "bulkmail.batch.complete"
)

// RowEvent is the payload published for each processed row.
type RowEvent struct {
	BatchID string    `json:"batchId"`
	Outcome Outcome   `json:"outcome"`
	Time    time.Time `json:"time"`
}

// CompleteEvent is the payload published once a batch ends.
type CompleteEvent struct {
	Summary Summary   `json:"summary"`
	Time    time.Time `json:"time"`
}

// EventObserver publishes row and completion events. Publish failures are
// logged and never affect the batch.
type EventObserver struct {
	NopObserver
	pub     queue.Publisher
	batchID string
	now     func() time.Time
}

func NewEventObserver(pub queue.Publisher) *EventObserver {
	return &EventObserver{pub: pub, now: time.Now}
}

func (e *EventObserver) OnBatchStart(_ context.Context, id string, _ int) {
	e.batchID = id
}

func (e *EventObserver) OnRowSent(ctx context.Context, o Outcome) {
	e.publish(ctx, TopicRow, RowEvent{BatchID: e.batchID, Outcome: o, Time: e.now()})
}

func (e *EventObserver) OnBatchComplete(ctx context.Context, s Summary) {
	// outcomes already went out one by one
	s.Outcomes = nil
	e.publish(ctx, TopicComplete, CompleteEvent{Summary: s, Time: e.now()})
}

func (e *EventObserver) publish(ctx context.Context, topic string, body any) {
	err := e.pub.Publish(ctx, queue.Message{
		Topic:   topic,
		Headers: map[string]string{"batch_id": e.batchID},
		Body:    body,
	})
	if err != nil {
		logger.FromContextWithErr(ctx, err).WarnContext(ctx, "failed to publish batch event", "topic", topic)
	}
}
