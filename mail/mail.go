package mail

import (
	"context"
	"io"
	"strings"
)

// Sender delivers one message and returns the provider's message id.
type Sender interface {
	Send(ctx context.Context, email Email) (messageID string, err error)
	io.Closer
}

// Email represents an email message.
type Email struct {
	// Envelope
	From    Address
	To      []Address
	Cc      []Address
	Bcc     []Address
	ReplyTo []Address
	Subject string

	// Headers
	Headers map[string]string

	// Body
	Body string // Plain text body
	HTML string // HTML body (optional)

	Attachments []Attachment
}

// Address represents an email address.
type Address struct {
	Name    string // "John Doe"
	Address string // "john@example.com"
}

// Attachment is a file carried by the message.
type Attachment struct {
	Filename    string
	ContentType string
	Content     []byte
}

// Recipients returns every envelope recipient, Bcc included.
func (e Email) Recipients() []string {
	out := make([]string, 0, len(e.To)+len(e.Cc)+len(e.Bcc))
	for _, list := range [][]Address{e.To, e.Cc, e.Bcc} {
		for _, a := range list {
			out = append(out, a.Address)
		}
	}
	return out
}

// Validate checks the fields every provider needs.
func (e Email) Validate() error {
	if e.From.Address == "" {
		return NewValidationError("no from address specified", nil)
	}
	if !IsAddress(e.From.Address) {
		return NewInvalidEmailError("invalid from address format", nil)
	}
	rcpts := e.Recipients()
	if len(rcpts) == 0 {
		return NewValidationError("no recipients specified", nil)
	}
	for _, r := range rcpts {
		if !IsAddress(r) {
			return NewInvalidEmailError("invalid recipient address: "+r, nil)
		}
	}
	if e.HTML == "" && e.Body == "" {
		return NewValidationError("email body is required (HTML or text)", nil)
	}
	return nil
}

// IsAddress is a loose syntax check: one @ with something on both sides and
// a dot in the domain.
func IsAddress(s string) bool {
	local, domain, ok := strings.Cut(s, "@")
	return ok && local != "" && strings.Contains(domain, ".") && !strings.ContainsAny(s, " \r\n<>")
}

// AddressList extracts bare addresses.
func AddressList(addrs []Address) []string {
	out := make([]string, len(addrs))
	for i, a := range addrs {
		out[i] = a.Address
	}
	return out
}
