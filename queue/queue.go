// Package queue is the outbound event bus batches publish progress to.
package queue

import (
	"context"
	"time"
)

// Publisher sends messages to a topic of a message broker.
type Publisher interface {
	Publish(ctx context.Context, msgs ...Message) error
}

// Encoder converts a message body to bytes.
type Encoder interface {
	Encode(i any) ([]byte, error)
	ContentType() string
}

// Message is one event. Topic is used as the routing key.
type Message struct {
	Topic   string
	Headers map[string]string
	Body    any
	TTL     time.Duration
}

// EncodeValue converts Body with enc. A nil Body encodes to nil.
func (m *Message) EncodeValue(enc Encoder) ([]byte, error) {
	if m.Body == nil {
		return nil, nil
	}
	return enc.Encode(m.Body)
}

// Discard drops every message. It stands in when no broker is configured.
type Discard struct{}

func (Discard) Publish(context.Context, ...Message) error { return nil }
