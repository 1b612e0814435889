package resend

import (
	"context"
	"strings"
	"sync/atomic"

	"github.com/resend/resend-go/v2"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/manavc-13/KIIT-Mailer/mail"
)

var tracer = otel.Tracer("github.com/manavc-13/KIIT-Mailer/mail/resend")

var _ mail.Sender = (*Sender)(nil)

type Config struct {
	APIKey string `envconfig:"RESEND_API_KEY" required:"true"`
	From   string `envconfig:"RESEND_FROM"`
}

// EmailsAPI is the part of the Resend client the sender uses.
type EmailsAPI interface {
	SendWithContext(ctx context.Context, params *resend.SendEmailRequest) (*resend.SendEmailResponse, error)
}

// Sender implements mail.Sender using the Resend API.
type Sender struct {
	emails EmailsAPI
	cfg    Config
	closed atomic.Bool
}

// NewDefault creates a sender with a Resend client for cfg.APIKey.
func NewDefault(cfg Config) *Sender {
	return NewSender(resend.NewClient(cfg.APIKey).Emails, cfg)
}

func NewSender(emails EmailsAPI, cfg Config) *Sender {
	return &Sender{emails: emails, cfg: cfg}
}

func (s *Sender) Send(ctx context.Context, email mail.Email) (string, error) {
	ctx, span := tracer.Start(ctx, "Resend.Send", trace.WithSpanKind(trace.SpanKindClient))
	defer span.End()

	if s.closed.Load() {
		return "", mail.ErrClosed
	}
	if email.From.Address == "" {
		email.From.Address = s.cfg.From
	}
	if err := email.Validate(); err != nil {
		span.SetStatus(codes.Error, err.Error())
		return "", err
	}

	from := email.From.Address
	if email.From.Name != "" {
		from = email.From.Name + " <" + email.From.Address + ">"
	}

	req := &resend.SendEmailRequest{
		From:    from,
		To:      mail.AddressList(email.To),
		Cc:      mail.AddressList(email.Cc),
		Bcc:     mail.AddressList(email.Bcc),
		Subject: email.Subject,
		Html:    email.HTML,
		Text:    email.Body,
		Headers: email.Headers,
	}
	if len(email.ReplyTo) > 0 {
		req.ReplyTo = email.ReplyTo[0].Address
	}
	for _, a := range email.Attachments {
		req.Attachments = append(req.Attachments, &resend.Attachment{
			Filename:    a.Filename,
			Content:     a.Content,
			ContentType: a.ContentType,
		})
	}

	span.SetAttributes(
		attribute.String("resend.from", email.From.Address),
		attribute.Int("resend.attachments", len(req.Attachments)),
	)

	sent, err := s.emails.SendWithContext(ctx, req)
	if err != nil {
		err = categorize(err)
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return "", err
	}

	span.SetStatus(codes.Ok, "")
	return sent.Id, nil
}

func (s *Sender) Close() error {
	s.closed.Store(true)
	return nil
}

// categorize reads the Resend error text, the SDK has no typed errors.
func categorize(err error) error {
	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "rate limit") || strings.Contains(msg, "429"):
		return mail.NewRateLimitedError("resend rate limit exceeded", err)
	case strings.Contains(msg, "api key") || strings.Contains(msg, "401") || strings.Contains(msg, "403"):
		return mail.NewAuthError("resend rejected the api key", err)
	case strings.Contains(msg, "domain") && strings.Contains(msg, "verif"):
		return mail.NewUnverifiedDomainError("sender domain not verified", err)
	case strings.Contains(msg, "validation") || strings.Contains(msg, "422"):
		return mail.NewValidationError("resend rejected the request", err)
	default:
		return mail.NewUnknownError("resend: failed to send email", err)
	}
}
