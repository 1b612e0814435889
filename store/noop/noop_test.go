package noop

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/manavc-13/KIIT-Mailer/store"
)

func steppingClock() func() time.Time {
	t := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	return func() time.Time {
		t = t.Add(time.Minute)
		return t
	}
}

func TestSaveDraft(t *testing.T) {
	ctx := context.Background()
	s := New()
	s.now = steppingClock()

	first, created, err := store.SaveDraft(ctx, s, store.Draft{Subject: "one"})
	require.NoError(t, err)
	assert.True(t, created)
	assert.NotEmpty(t, first.ID)

	second, created, err := store.SaveDraft(ctx, s, store.Draft{Subject: "two"})
	require.NoError(t, err)
	assert.True(t, created)

	first.Subject = "one, edited"
	updated, created, err := store.SaveDraft(ctx, s, first)
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, first.ID, updated.ID)
	assert.Equal(t, first.CreatedAt, updated.CreatedAt)
	assert.True(t, updated.UpdatedAt.After(second.UpdatedAt))

	drafts, err := s.ListDrafts(ctx)
	require.NoError(t, err)
	require.Len(t, drafts, 2)
	assert.Equal(t, "one, edited", drafts[0].Subject)
	assert.Equal(t, "two", drafts[1].Subject)
}

func TestSaveDraft_RecreatesMissing(t *testing.T) {
	ctx := context.Background()
	s := New()

	saved, created, err := store.SaveDraft(ctx, s, store.Draft{ID: "deleted-elsewhere", Subject: "x"})
	require.NoError(t, err)
	assert.True(t, created)
	assert.NotEqual(t, "deleted-elsewhere", saved.ID)
}

func TestDeleteDraft(t *testing.T) {
	ctx := context.Background()
	s := New()

	d, err := s.CreateDraft(ctx, store.Draft{Subject: "x"})
	require.NoError(t, err)
	require.NoError(t, s.DeleteDraft(ctx, d.ID))
	require.NoError(t, s.DeleteDraft(ctx, "unknown"))

	drafts, err := s.ListDrafts(ctx)
	require.NoError(t, err)
	assert.Empty(t, drafts)

	_, err = s.UpdateDraft(ctx, d)
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestLogs_NewestFirstWithLimit(t *testing.T) {
	ctx := context.Background()
	s := New()

	for i := 0; i < 5; i++ {
		require.NoError(t, s.AddActivity(ctx, store.Activity{Type: store.ActivityMailSent, Description: fmt.Sprint(i)}))
		require.NoError(t, s.AddSentMail(ctx, store.SentMail{To: fmt.Sprintf("%d@x.com", i)}))
	}

	activity, err := s.ListActivity(ctx, 3)
	require.NoError(t, err)
	require.Len(t, activity, 3)
	assert.Equal(t, "4", activity[0].Description)
	assert.Equal(t, "2", activity[2].Description)
	assert.False(t, activity[0].CreatedAt.IsZero())

	sent, err := s.ListSentMails(ctx, 0)
	require.NoError(t, err)
	require.Len(t, sent, 5)
	assert.Equal(t, "4@x.com", sent[0].To)
}
