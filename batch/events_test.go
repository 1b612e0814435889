package batch

import (
	"context"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/manavc-13/KIIT-Mailer/queue"
)

type memPublisher struct {
	msgs []queue.Message
	err  error
}

func (m *memPublisher) Publish(_ context.Context, msgs ...queue.Message) error {
	if m.err != nil {
		return m.err
	}
	m.msgs = append(m.msgs, msgs...)
	return nil
}

func TestEventObserver(t *testing.T) {
	pub := &memPublisher{}
	obs := NewEventObserver(pub)
	fixed := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	obs.now = func() time.Time { return fixed }

	_, err := Run(context.Background(), Job{
		ID:         "b1",
		Template:   "x",
		Subject:    "s",
		Recipients: people([]string{"A", "a@x.com"}, []string{"B", ""}),
	}, &recordingSender{}, obs)
	require.NoError(t, err)

	require.Len(t, pub.msgs, 3)
	assert.Equal(t, TopicRow, pub.msgs[0].Topic)
	assert.Equal(t, "b1", pub.msgs[0].Headers["batch_id"])

	row, ok := pub.msgs[0].Body.(RowEvent)
	require.True(t, ok)
	assert.Equal(t, "b1", row.BatchID)
	assert.Equal(t, StatusSent, row.Outcome.Status)
	assert.Equal(t, fixed, row.Time)

	skipped := pub.msgs[1].Body.(RowEvent)
	assert.Equal(t, StatusSkipped, skipped.Outcome.Status)

	assert.Equal(t, TopicComplete, pub.msgs[2].Topic)
	done := pub.msgs[2].Body.(CompleteEvent)
	assert.Equal(t, 1, done.Summary.Succeeded)
	assert.Nil(t, done.Summary.Outcomes)
}

func TestEventObserver_PublishErrorIgnored(t *testing.T) {
	pub := &memPublisher{err: errors.New("broker down")}

	summary, err := Run(context.Background(), Job{
		Template:   "x",
		Subject:    "s",
		Recipients: people([]string{"A", "a@x.com"}),
	}, &recordingSender{}, NewEventObserver(pub))
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Succeeded)
}
