// Package relay is the HTTP mail relay the batch sends through, plus the
// client side of it. The relay turns one form post into one email on the
// configured mail provider and keeps an activity log of every attempt.
package relay

import (
	"context"
	"fmt"
	"strings"

	"github.com/pkg/errors"

	"github.com/manavc-13/KIIT-Mailer/compose"
	"github.com/manavc-13/KIIT-Mailer/logger"
	"github.com/manavc-13/KIIT-Mailer/mail"
	"github.com/manavc-13/KIIT-Mailer/store"
	"github.com/manavc-13/KIIT-Mailer/store/noop"
)

type Provider string

const (
	ProviderSMTP   Provider = "smtp"
	ProviderSES    Provider = "ses"
	ProviderResend Provider = "resend"
	ProviderNoop   Provider = "noop"
)

// usesRequestCredentials reports whether the provider authenticates with the
// smtpUser/smtpPass of each request.
func (p Provider) usesRequestCredentials() bool {
	return p == ProviderSMTP || p == ""
}

type Config struct {
	Provider           Provider `envconfig:"RELAY_PROVIDER" default:"smtp"`
	MaxBodyMB          int64    `envconfig:"RELAY_MAX_BODY_MB" default:"50"`
	DefaultDisplayName string   `envconfig:"RELAY_DEFAULT_DISPLAY_NAME" default:"EDGEI 2026"`
	StaticDir          string   `envconfig:"RELAY_STATIC_DIR"`
}

var ErrMissingCredentials = errors.New("Missing SMTP Credentials (User/Pass)") //nolint:stylecheck // shown to operators verbatim

// SendRequest is one send-mail call.
type SendRequest struct {
	To          string
	Subject     string
	HTML        string
	SMTPUser    string
	SMTPPass    string
	DisplayName string
	ReplyTo     string
	Attachments []mail.Attachment
}

type Relay struct {
	sender mail.Sender
	store  store.Store
	cfg    Config
}

// New returns a relay over sender. A nil st keeps logs in memory.
func New(sender mail.Sender, st store.Store, cfg Config) *Relay {
	if st == nil {
		st = noop.New()
	}
	if cfg.DefaultDisplayName == "" {
		cfg.DefaultDisplayName = "EDGEI 2026"
	}
	if cfg.MaxBodyMB <= 0 {
		cfg.MaxBodyMB = 50
	}
	return &Relay{sender: sender, store: st, cfg: cfg}
}

func (r *Relay) Store() store.Store {
	return r.store
}

// Deliver sends req and records the attempt in the activity log.
func (r *Relay) Deliver(ctx context.Context, req SendRequest) (string, error) {
	log := logger.FromContext(ctx).With("to", req.To)
	log.InfoContext(ctx, "attempting to send email")

	id, err := r.deliver(ctx, req)
	r.record(ctx, req, id, err)
	if err != nil {
		logger.FromContextWithErr(ctx, err).ErrorContext(ctx, "mail error", "to", req.To)
		return "", err
	}
	log.InfoContext(ctx, "email sent", "message_id", id)
	return id, nil
}

func (r *Relay) deliver(ctx context.Context, req SendRequest) (string, error) {
	if r.cfg.Provider.usesRequestCredentials() {
		if req.SMTPUser == "" || req.SMTPPass == "" {
			return "", ErrMissingCredentials
		}
	}
	if req.SMTPUser != "" {
		ctx = mail.WithCredentials(ctx, mail.Credentials{Username: req.SMTPUser, Password: req.SMTPPass})
	}

	name := strings.TrimSpace(req.DisplayName)
	if name == "" {
		name = r.cfg.DefaultDisplayName
	}
	email := mail.Email{
		From:        mail.Address{Name: name, Address: req.SMTPUser},
		To:          parseRecipients(req.To),
		Subject:     req.Subject,
		HTML:        req.HTML,
		Body:        compose.PlainText(req.HTML),
		Attachments: req.Attachments,
	}
	if reply := strings.TrimSpace(req.ReplyTo); reply != "" {
		email.ReplyTo = []mail.Address{{Address: reply}}
	}

	return r.sender.Send(ctx, email)
}

func (r *Relay) record(ctx context.Context, req SendRequest, id string, sendErr error) {
	a := store.Activity{Type: store.ActivityMailSent, Description: "Email sent to " + req.To}
	if sendErr != nil {
		a = store.Activity{Type: store.ActivityMailError, Description: fmt.Sprintf("Failed to send to %s: %s", req.To, ErrorMessage(sendErr))}
	}
	if err := r.store.AddActivity(ctx, a); err != nil {
		logger.FromContextWithErr(ctx, err).WarnContext(ctx, "failed to record activity")
	}
	if sendErr != nil {
		return
	}
	if err := r.store.AddSentMail(ctx, store.SentMail{To: req.To, Subject: req.Subject, MessageID: id}); err != nil {
		logger.FromContextWithErr(ctx, err).WarnContext(ctx, "failed to record sent mail")
	}
}

// ErrorMessage is the text shown to operators for a failed send.
func ErrorMessage(err error) string {
	var me *mail.Error
	if errors.As(err, &me) {
		if me.Cause != nil {
			return me.Message + ": " + me.Cause.Error()
		}
		return me.Message
	}
	return err.Error()
}

func parseRecipients(to string) []mail.Address {
	var out []mail.Address
	for _, a := range strings.Split(to, ",") {
		if a = strings.TrimSpace(a); a != "" {
			out = append(out, mail.Address{Address: a})
		}
	}
	return out
}
