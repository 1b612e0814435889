package noop

import (
	"context"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/manavc-13/KIIT-Mailer/journal"
)

func TestJournal_Capped(t *testing.T) {
	ctx := context.Background()
	j := New(3)

	for i := 0; i < 5; i++ {
		require.NoError(t, j.Append(ctx, journal.Entry{Type: journal.TypeInfo, Message: strconv.Itoa(i)}))
	}

	entries, err := j.List(ctx)
	require.NoError(t, err)
	require.Len(t, entries, 3)
	assert.Equal(t, "2", entries[0].Message)
	assert.Equal(t, "4", entries[2].Message)

	require.NoError(t, j.Clear(ctx))
	entries, err = j.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, entries)
	assert.NoError(t, j.Close())
}

func TestJournal_DefaultMax(t *testing.T) {
	assert.Equal(t, journal.MaxEntries, New(0).max)
}
