package ses

import (
	"context"
	"sync/atomic"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/aws/aws-sdk-go-v2/service/sesv2/types"
	"github.com/aws/smithy-go"
	"github.com/pkg/errors"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/manavc-13/KIIT-Mailer/mail"
)

var tracer = otel.Tracer("github.com/manavc-13/KIIT-Mailer/mail/ses")

var _ mail.Sender = (*Sender)(nil)

// Client is the part of the SES v2 API the sender uses.
type Client interface {
	SendEmail(ctx context.Context, params *sesv2.SendEmailInput, optFns ...func(*sesv2.Options)) (*sesv2.SendEmailOutput, error)
}

// Sender implements mail.Sender on Amazon SES v2.
type Sender struct {
	client Client
	cfg    Config
	closed atomic.Bool
}

func NewSender(client Client, cfg Config) *Sender {
	return &Sender{client: client, cfg: cfg}
}

func (s *Sender) Send(ctx context.Context, email mail.Email) (string, error) {
	ctx, span := tracer.Start(ctx, "SES.Send", trace.WithSpanKind(trace.SpanKindClient))
	defer span.End()

	if s.closed.Load() {
		span.SetStatus(codes.Error, "sender is closed")
		return "", mail.ErrClosed
	}

	if email.From.Address == "" {
		email.From.Address = s.cfg.From
	}
	if err := email.Validate(); err != nil {
		span.SetStatus(codes.Error, err.Error())
		return "", err
	}
	if email.Subject == "" {
		return "", mail.NewValidationError("subject is required", nil)
	}

	span.SetAttributes(
		attribute.String("ses.from", email.From.Address),
		attribute.Int("ses.recipients", len(email.Recipients())),
		attribute.Int("ses.attachments", len(email.Attachments)),
	)

	out, err := s.client.SendEmail(ctx, &sesv2.SendEmailInput{
		Content: &types.EmailContent{
			Simple: &types.Message{
				Body: &types.Body{
					Html: content(email.HTML),
					Text: content(email.Body),
				},
				Subject:     content(email.Subject),
				Attachments: attachments(email.Attachments),
				Headers:     headers(email.Headers),
			},
		},
		Destination: &types.Destination{
			ToAddresses:  mail.AddressList(email.To),
			CcAddresses:  mail.AddressList(email.Cc),
			BccAddresses: mail.AddressList(email.Bcc),
		},
		FromEmailAddress:     aws.String(formatFrom(email.From)),
		ReplyToAddresses:     mail.AddressList(email.ReplyTo),
		ConfigurationSetName: stringOrNil(s.cfg.ConfigurationSet),
	})
	if err != nil {
		err = categorize(err)
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return "", err
	}

	id := aws.ToString(out.MessageId)
	span.SetAttributes(attribute.String("ses.message_id", id))
	span.SetStatus(codes.Ok, "")
	return id, nil
}

func (s *Sender) Close() error {
	s.closed.Store(true)
	return nil
}

func formatFrom(a mail.Address) string {
	if a.Name == "" {
		return a.Address
	}
	return `"` + a.Name + `" <` + a.Address + `>`
}

func content(s string) *types.Content {
	if s == "" {
		return nil
	}
	return &types.Content{
		Data:    aws.String(s),
		Charset: aws.String("UTF-8"),
	}
}

func attachments(in []mail.Attachment) []types.Attachment {
	if len(in) == 0 {
		return nil
	}
	out := make([]types.Attachment, len(in))
	for i, a := range in {
		ct := a.ContentType
		if ct == "" {
			ct = "application/octet-stream"
		}
		out[i] = types.Attachment{
			FileName:           aws.String(a.Filename),
			RawContent:         a.Content,
			ContentType:        aws.String(ct),
			ContentDisposition: types.AttachmentContentDispositionAttachment,
		}
	}
	return out
}

func headers(in map[string]string) []types.MessageHeader {
	if len(in) == 0 {
		return nil
	}
	out := make([]types.MessageHeader, 0, len(in))
	for k, v := range in {
		out = append(out, types.MessageHeader{Name: aws.String(k), Value: aws.String(v)})
	}
	return out
}

func categorize(err error) error {
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.ErrorCode() {
		case "TooManyRequestsException", "LimitExceededException":
			return mail.NewRateLimitedError("sending rate limit exceeded", err)
		case "MessageRejected":
			return mail.NewMessageRejectedError("message rejected by SES", err)
		case "MailFromDomainNotVerifiedException":
			return mail.NewUnverifiedDomainError("sender domain not verified", err)
		case "InvalidParameterValueException", "BadRequestException":
			return mail.NewInvalidEmailError("invalid email parameter", err)
		case "AccountSuspendedException", "SendingPausedException", "NotFoundException":
			return mail.NewAuthError("account cannot send", err)
		case "ServiceUnavailableException", "InternalServiceErrorException":
			return mail.NewServiceError("AWS SES service error", err)
		}
	}
	return mail.NewUnknownError("failed to send email", err)
}
