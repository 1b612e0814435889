package ses

import (
	"context"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/aws/aws-sdk-go-v2/service/sesv2/types"
	"github.com/aws/smithy-go"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/manavc-13/KIIT-Mailer/mail"
)

type mockClient struct {
	input *sesv2.SendEmailInput
	err   error
}

func (m *mockClient) SendEmail(_ context.Context, params *sesv2.SendEmailInput, _ ...func(*sesv2.Options)) (*sesv2.SendEmailOutput, error) {
	m.input = params
	if m.err != nil {
		return nil, m.err
	}
	return &sesv2.SendEmailOutput{MessageId: aws.String("0100018c-ses-id")}, nil
}

func testEmail() mail.Email {
	return mail.Email{
		From:        mail.Address{Name: "EDGEI 2026", Address: "sender@kiit.ac.in"},
		To:          []mail.Address{{Address: "alice@example.com"}},
		ReplyTo:     []mail.Address{{Address: "info@edgei.org"}},
		Subject:     "Invitation",
		HTML:        "<p>Hi Alice</p>",
		Body:        "Hi Alice",
		Attachments: []mail.Attachment{{Filename: "agenda.pdf", ContentType: "application/pdf", Content: []byte("%PDF")}},
	}
}

func TestSender_Send(t *testing.T) {
	client := &mockClient{}
	sender := NewSender(client, Config{ConfigurationSet: "bulk"})

	id, err := sender.Send(context.Background(), testEmail())
	require.NoError(t, err)
	assert.Equal(t, "0100018c-ses-id", id)

	in := client.input
	require.NotNil(t, in)
	assert.Equal(t, `"EDGEI 2026" <sender@kiit.ac.in>`, aws.ToString(in.FromEmailAddress))
	assert.Equal(t, []string{"alice@example.com"}, in.Destination.ToAddresses)
	assert.Equal(t, []string{"info@edgei.org"}, in.ReplyToAddresses)
	assert.Equal(t, "bulk", aws.ToString(in.ConfigurationSetName))
	assert.Equal(t, "<p>Hi Alice</p>", aws.ToString(in.Content.Simple.Body.Html.Data))
	require.Len(t, in.Content.Simple.Attachments, 1)
	assert.Equal(t, "agenda.pdf", aws.ToString(in.Content.Simple.Attachments[0].FileName))
	assert.Equal(t, types.AttachmentContentDispositionAttachment, in.Content.Simple.Attachments[0].ContentDisposition)
}

func TestSender_Send_DefaultFrom(t *testing.T) {
	client := &mockClient{}
	sender := NewSender(client, Config{From: "noreply@kiit.ac.in"})

	email := testEmail()
	email.From = mail.Address{}
	_, err := sender.Send(context.Background(), email)
	require.NoError(t, err)
	assert.Equal(t, "noreply@kiit.ac.in", aws.ToString(client.input.FromEmailAddress))
}

func TestSender_Send_Validation(t *testing.T) {
	client := &mockClient{}
	sender := NewSender(client, Config{})

	email := testEmail()
	email.Subject = ""
	_, err := sender.Send(context.Background(), email)
	assert.Equal(t, mail.ReasonValidation, mail.ReasonOf(err))
	assert.Nil(t, client.input)
}

func TestSender_Send_CategorizesErrors(t *testing.T) {
	tests := []struct {
		code   string
		reason mail.ErrorReason
	}{
		{"TooManyRequestsException", mail.ReasonRateLimited},
		{"MessageRejected", mail.ReasonMessageRejected},
		{"MailFromDomainNotVerifiedException", mail.ReasonUnverifiedDomain},
		{"InvalidParameterValueException", mail.ReasonInvalidEmail},
		{"SendingPausedException", mail.ReasonAuth},
		{"InternalServiceErrorException", mail.ReasonServiceError},
		{"SomethingElse", mail.ReasonUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			client := &mockClient{err: &smithy.GenericAPIError{Code: tt.code, Message: "boom"}}
			_, err := NewSender(client, Config{}).Send(context.Background(), testEmail())
			require.Error(t, err)
			assert.Equal(t, tt.reason, mail.ReasonOf(err))
		})
	}

	client := &mockClient{err: errors.New("network down")}
	_, err := NewSender(client, Config{}).Send(context.Background(), testEmail())
	assert.Equal(t, mail.ReasonUnknown, mail.ReasonOf(err))
}

func TestSender_Close(t *testing.T) {
	sender := NewSender(&mockClient{}, Config{})
	require.NoError(t, sender.Close())
	_, err := sender.Send(context.Background(), testEmail())
	assert.ErrorIs(t, err, mail.ErrClosed)
}
