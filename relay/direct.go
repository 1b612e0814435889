package relay

import (
	"context"

	"github.com/manavc-13/KIIT-Mailer/batch"
	"github.com/manavc-13/KIIT-Mailer/mail"
)

var _ batch.Sender = (*Direct)(nil)

// Direct sends batch rows through a Relay in process, with the same
// semantics as posting to its HTTP endpoint.
type Direct struct {
	relay *Relay
	creds batch.Credentials
}

func NewDirect(r *Relay, creds batch.Credentials) *Direct {
	return &Direct{relay: r, creds: creds}
}

// DirectFactory builds in-process senders for a session.
func DirectFactory(r *Relay) batch.SenderFactory {
	return func(c batch.Credentials) batch.Sender {
		return NewDirect(r, c)
	}
}

func (d *Direct) SendOne(ctx context.Context, msg batch.Message) (string, error) {
	files := make([]mail.Attachment, len(msg.Attachments))
	for i, a := range msg.Attachments {
		files[i] = mail.Attachment{Filename: a.Filename, ContentType: a.ContentType, Content: a.Content}
	}

	return d.relay.Deliver(ctx, SendRequest{
		To:          msg.To,
		Subject:     msg.Subject,
		HTML:        msg.HTML,
		SMTPUser:    d.creds.Email,
		SMTPPass:    d.creds.Password,
		DisplayName: d.creds.DisplayName,
		ReplyTo:     d.creds.ReplyTo,
		Attachments: files,
	})
}
