package smtp

import (
	"context"
	"crypto/tls"
	"log/slog"
	"net"
	"net/smtp"
	"net/textproto"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/manavc-13/KIIT-Mailer/mail"
	"github.com/pkg/errors"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

var tracer = otel.Tracer("github.com/manavc-13/KIIT-Mailer/mail/smtp")

var _ mail.Sender = (*Sender)(nil)

// Sender implements mail.Sender using net/smtp. Each Send opens its own
// connection, so concurrent sends with different credentials are safe.
type Sender struct {
	mx     sync.RWMutex
	cfg    Config
	logger *slog.Logger
	closed bool
}

// SenderOptions contains options for creating a Sender.
type SenderOptions struct {
	Logger *slog.Logger
}

// NewSender creates a new SMTP Sender.
func NewSender(cfg Config, options *SenderOptions) *Sender {
	l := slog.Default()
	if options != nil && options.Logger != nil {
		l = options.Logger
	}
	return &Sender{
		cfg:    cfg,
		logger: l.WithGroup("smtp"),
	}
}

// Send delivers one email. Credentials attached with mail.WithCredentials
// take precedence over the configured ones.
func (s *Sender) Send(ctx context.Context, email mail.Email) (string, error) {
	ctx, span := tracer.Start(ctx, "SMTP.Send", trace.WithSpanKind(trace.SpanKindClient))
	defer span.End()

	span.SetAttributes(
		attribute.String("smtp.subject", email.Subject),
		attribute.Int("smtp.to_count", len(email.To)),
		attribute.Int("smtp.cc_count", len(email.Cc)),
		attribute.Int("smtp.bcc_count", len(email.Bcc)),
		attribute.Int("smtp.attachments", len(email.Attachments)),
		attribute.String("smtp.host", s.cfg.Host),
		attribute.Int("smtp.port", s.cfg.Port),
		attribute.Bool("smtp.implicit_tls", s.cfg.implicitTLS()),
	)

	s.mx.RLock()
	defer s.mx.RUnlock()

	if s.closed {
		span.SetStatus(codes.Error, "sender is closed")
		return "", mail.ErrClosed
	}

	creds, ok := mail.CredentialsFromContext(ctx)
	if !ok {
		creds = mail.Credentials{Username: s.cfg.Username, Password: s.cfg.Password}
	}

	if email.From.Address == "" {
		email.From.Address = s.cfg.From
	}
	if email.From.Address == "" {
		email.From.Address = creds.Username
	}
	if err := email.Validate(); err != nil {
		span.SetStatus(codes.Error, err.Error())
		return "", err
	}
	span.SetAttributes(attribute.String("smtp.from", email.From.Address))

	messageID := newMessageID(email.From.Address)
	msg, err := buildMessage(email, messageID, time.Now())
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to build message")
		return "", mail.NewValidationError("failed to build message", err)
	}

	var auth smtp.Auth
	if creds.Username != "" {
		auth = smtp.PlainAuth("", creds.Username, creds.Password, s.cfg.Host)
	}

	if err := s.deliver(ctx, auth, email.From.Address, email.Recipients(), msg); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		s.logger.DebugContext(ctx, "send failed", "to", mail.AddressList(email.To), "error", err.Error())
		return "", err
	}

	span.SetAttributes(attribute.String("smtp.message_id", messageID))
	span.SetStatus(codes.Ok, "")
	return messageID, nil
}

// deliver runs one SMTP conversation. Port 465 uses implicit TLS, any other
// port upgrades with STARTTLS when enabled and advertised.
func (s *Sender) deliver(ctx context.Context, auth smtp.Auth, from string, rcpts []string, msg []byte) error {
	ctx, span := tracer.Start(ctx, "SMTP.Deliver")
	defer span.End()

	span.SetAttributes(
		attribute.String("smtp.address", s.addr()),
		attribute.Int("smtp.recipients_count", len(rcpts)),
		attribute.Bool("smtp.auth", auth != nil),
	)

	select {
	case <-ctx.Done():
		span.SetStatus(codes.Error, "context canceled")
		return ctx.Err()
	default:
	}

	conn, err := s.dial(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to connect")
		return mail.NewServiceError("failed to connect to SMTP server", err)
	}
	if deadline, ok := s.deadline(ctx); ok {
		_ = conn.SetDeadline(deadline)
	}

	client, err := smtp.NewClient(conn, s.cfg.Host)
	if err != nil {
		_ = conn.Close()
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to greet")
		return categorize("failed to greet SMTP server", err)
	}
	defer func() {
		// the message is already accepted or the error already reported
		_ = client.Close()
	}()

	if !s.cfg.implicitTLS() && s.cfg.TLS {
		if ok, _ := client.Extension("STARTTLS"); ok {
			span.SetAttributes(attribute.Bool("smtp.starttls", true))
			if err := client.StartTLS(s.tlsConfig()); err != nil {
				span.RecordError(err)
				span.SetStatus(codes.Error, "failed to start TLS")
				return mail.NewServiceError("failed to start TLS", err)
			}
		} else {
			span.SetAttributes(attribute.Bool("smtp.starttls", false))
		}
	}

	if auth != nil {
		if err := client.Auth(auth); err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "failed to authenticate")
			return mail.NewAuthError("failed to authenticate", err)
		}
	}

	if err := client.Mail(from); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to set sender")
		return categorize("failed to set sender", err)
	}

	for _, rcpt := range rcpts {
		if err := client.Rcpt(rcpt); err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "failed to set recipient")
			return categorize("failed to set recipient: "+rcpt, err)
		}
	}

	w, err := client.Data()
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to get data writer")
		return categorize("failed to get data writer", err)
	}
	if _, err := w.Write(msg); err != nil {
		_ = w.Close()
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to write message")
		return categorize("failed to write message", err)
	}
	// the server accepts or rejects the message on the terminating dot
	if err := w.Close(); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "message rejected")
		return categorize("message not accepted", err)
	}

	_ = client.Quit()
	span.SetStatus(codes.Ok, "")
	return nil
}

func (s *Sender) addr() string {
	return net.JoinHostPort(s.cfg.Host, strconv.Itoa(s.cfg.Port))
}

func (s *Sender) dial(ctx context.Context) (net.Conn, error) {
	d := &net.Dialer{Timeout: s.cfg.Timeout}
	if s.cfg.implicitTLS() {
		td := &tls.Dialer{NetDialer: d, Config: s.tlsConfig()}
		return td.DialContext(ctx, "tcp", s.addr())
	}
	return d.DialContext(ctx, "tcp", s.addr())
}

func (s *Sender) deadline(ctx context.Context) (time.Time, bool) {
	deadline, ok := ctx.Deadline()
	if s.cfg.Timeout > 0 {
		if d := time.Now().Add(s.cfg.Timeout); !ok || d.Before(deadline) {
			return d, true
		}
	}
	return deadline, ok
}

func (s *Sender) tlsConfig() *tls.Config {
	return &tls.Config{
		ServerName:         s.cfg.Host,
		InsecureSkipVerify: s.cfg.Insecure, // #nosec G402 -- controlled by config, user's responsibility
		MinVersion:         tls.VersionTLS12,
	}
}

// categorize maps SMTP reply codes to mail error reasons.
func categorize(message string, err error) error {
	var tpErr *textproto.Error
	if !errors.As(err, &tpErr) {
		return mail.NewUnknownError(message, err)
	}

	msg := strings.ToLower(tpErr.Msg)
	switch {
	case tpErr.Code == 530 || tpErr.Code == 534 || tpErr.Code == 535:
		return mail.NewAuthError(message, err)
	case tpErr.Code == 452 || tpErr.Code == 454 || strings.Contains(msg, "rate") || strings.Contains(msg, "limit"):
		return mail.NewRateLimitedError(message, err)
	case tpErr.Code == 501 || tpErr.Code == 550 || tpErr.Code == 553:
		return mail.NewInvalidEmailError(message, err)
	case tpErr.Code == 552 || tpErr.Code == 554:
		return mail.NewMessageRejectedError(message, err)
	case tpErr.Code >= 400 && tpErr.Code < 500:
		return mail.NewServiceError(message, err)
	default:
		return mail.NewUnknownError(message, err)
	}
}

// Close closes the sender.
func (s *Sender) Close() error {
	s.mx.Lock()
	defer s.mx.Unlock()

	if s.closed {
		return nil
	}
	s.closed = true
	return nil
}
