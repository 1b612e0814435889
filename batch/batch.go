// Package batch sends one personalised email per recipient row, strictly in
// sequence, and accounts for every row's outcome.
package batch

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"github.com/manavc-13/KIIT-Mailer/attachment"
	"github.com/manavc-13/KIIT-Mailer/compose"
	"github.com/manavc-13/KIIT-Mailer/recipient"
)

// Precondition failures. Run returns them before any row is sent.
var (
	ErrEmptyTemplate = compose.ErrEmptyBody
	ErrEmptySubject  = errors.New("please enter a subject")
	ErrNoRecipients  = errors.New("please upload a CSV file")
	ErrNoEmailColumn = recipient.ErrNoEmailColumn
)

// Job is everything one batch needs. Template is the final HTML document;
// rich content is expected to be wrapped already.
type Job struct {
	ID          string
	Template    string
	Subject     string
	Recipients  *recipient.Set
	Attachments []attachment.Attachment
	Options     Options
}

type Options struct {
	// SubstituteSubject runs the subject through the same substitution as the body.
	SubstituteSubject bool
	// SendTimeout bounds one send call. Zero means no bound.
	SendTimeout time.Duration
}

// Message is one personalised email handed to the Sender.
type Message struct {
	To          string
	Subject     string
	HTML        string
	Attachments []attachment.Attachment
}

// Sender is the send-one collaborator. The same attachment slice is passed
// for every row and must not be modified.
type Sender interface {
	SendOne(ctx context.Context, msg Message) (messageID string, err error)
}

// SenderFunc adapts a function to Sender.
type SenderFunc func(ctx context.Context, msg Message) (string, error)

func (f SenderFunc) SendOne(ctx context.Context, msg Message) (string, error) {
	return f(ctx, msg)
}

type Status string

const (
	StatusSent    Status = "sent"
	StatusFailed  Status = "failed"
	StatusSkipped Status = "skipped"
)

// Outcome is the result of one row. Index is 1-based in recipient order.
type Outcome struct {
	Index     int    `json:"index"`
	Email     string `json:"email,omitempty"`
	Status    Status `json:"status"`
	MessageID string `json:"messageId,omitempty"`
	Error     string `json:"error,omitempty"`
}

// Summary totals a batch. Attempted+Skipped equals the number of processed
// rows, which is Total unless the run was cancelled.
type Summary struct {
	ID        string        `json:"id"`
	Total     int           `json:"total"`
	Attempted int           `json:"attempted"`
	Succeeded int           `json:"succeeded"`
	Failed    int           `json:"failed"`
	Skipped   int           `json:"skipped"`
	Cancelled bool          `json:"cancelled,omitempty"`
	Duration  time.Duration `json:"duration"`
	Outcomes  []Outcome     `json:"outcomes"`
}

// Processed is the number of rows the loop got through.
func (s Summary) Processed() int {
	return s.Attempted + s.Skipped
}

// Failures returns the failed outcomes.
func (s Summary) Failures() []Outcome {
	var out []Outcome
	for _, o := range s.Outcomes {
		if o.Status == StatusFailed {
			out = append(out, o)
		}
	}
	return out
}
