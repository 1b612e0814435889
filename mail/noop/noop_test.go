package noop

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/manavc-13/KIIT-Mailer/mail"
)

func TestSender_Send(t *testing.T) {
	sender := NewSender()

	id, err := sender.Send(context.Background(), mail.Email{
		From:    mail.Address{Address: "test@example.com"},
		To:      []mail.Address{{Address: "to@example.com"}},
		Subject: "Test",
		Body:    "Test body",
	})
	require.NoError(t, err)
	assert.Equal(t, "<noop-1@localhost>", id)
	assert.Equal(t, int64(1), sender.Sent())
}

func TestSender_Send_Invalid(t *testing.T) {
	sender := NewSender()

	_, err := sender.Send(context.Background(), mail.Email{})
	assert.Error(t, err)
	assert.Zero(t, sender.Sent())
}

func TestSender_Close(t *testing.T) {
	sender := NewSender()

	assert.NoError(t, sender.Close())
	assert.NoError(t, sender.Close())

	_, err := sender.Send(context.Background(), mail.Email{})
	assert.ErrorIs(t, err, mail.ErrClosed)
}
