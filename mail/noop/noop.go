package noop

import (
	"context"
	"fmt"
	"sync/atomic"

	"github.com/manavc-13/KIIT-Mailer/mail"
)

var _ mail.Sender = (*Sender)(nil)

// Sender is a no-op mail sender for testing and dry runs.
type Sender struct {
	sent   atomic.Int64
	closed atomic.Bool
}

// NewSender creates a new no-op Sender.
func NewSender() *Sender {
	return &Sender{}
}

// Send validates and discards the email.
func (n *Sender) Send(_ context.Context, email mail.Email) (string, error) {
	if n.closed.Load() {
		return "", mail.ErrClosed
	}
	if err := email.Validate(); err != nil {
		return "", err
	}
	return fmt.Sprintf("<noop-%d@localhost>", n.sent.Add(1)), nil
}

// Sent returns how many emails were accepted.
func (n *Sender) Sent() int64 {
	return n.sent.Load()
}

// Close is a no-op.
func (n *Sender) Close() error {
	n.closed.Store(true)
	return nil
}
