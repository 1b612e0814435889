package relay

import (
	"context"
	"sync"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/manavc-13/KIIT-Mailer/logger"
	"github.com/manavc-13/KIIT-Mailer/mail"
	"github.com/manavc-13/KIIT-Mailer/store"
	"github.com/manavc-13/KIIT-Mailer/store/noop"
)

func init() {
	logger.InitDefault(logger.Config{Provider: logger.ProviderNoop, Level: logger.INFO})
}

type fakeSender struct {
	mx     sync.Mutex
	emails []mail.Email
	creds  []mail.Credentials
	err    error
}

func (f *fakeSender) Send(ctx context.Context, email mail.Email) (string, error) {
	f.mx.Lock()
	defer f.mx.Unlock()
	if f.err != nil {
		return "", f.err
	}
	c, _ := mail.CredentialsFromContext(ctx)
	f.emails = append(f.emails, email)
	f.creds = append(f.creds, c)
	return "<msg-1@kiit.ac.in>", nil
}

func (f *fakeSender) Close() error { return nil }

func validRequest() SendRequest {
	return SendRequest{
		To:       "alice@x.com",
		Subject:  "Invitation",
		HTML:     "<p>Hi <b>Alice</b></p>",
		SMTPUser: "user@kiit.ac.in",
		SMTPPass: "app-pass",
	}
}

func TestDeliver_BuildsEmail(t *testing.T) {
	sender := &fakeSender{}
	st := noop.New()
	r := New(sender, st, Config{Provider: ProviderSMTP})

	req := validRequest()
	req.ReplyTo = "info@edgei.org"
	req.Attachments = []mail.Attachment{{Filename: "a.pdf", ContentType: "application/pdf", Content: []byte("%PDF")}}

	id, err := r.Deliver(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, "<msg-1@kiit.ac.in>", id)

	require.Len(t, sender.emails, 1)
	e := sender.emails[0]
	assert.Equal(t, mail.Address{Name: "EDGEI 2026", Address: "user@kiit.ac.in"}, e.From)
	assert.Equal(t, []mail.Address{{Address: "alice@x.com"}}, e.To)
	assert.Equal(t, []mail.Address{{Address: "info@edgei.org"}}, e.ReplyTo)
	assert.Equal(t, "Invitation", e.Subject)
	assert.Equal(t, "<p>Hi <b>Alice</b></p>", e.HTML)
	assert.Equal(t, "Hi Alice", e.Body)
	assert.Len(t, e.Attachments, 1)
	assert.Equal(t, mail.Credentials{Username: "user@kiit.ac.in", Password: "app-pass"}, sender.creds[0])

	activity, err := st.ListActivity(context.Background(), 0)
	require.NoError(t, err)
	require.Len(t, activity, 1)
	assert.Equal(t, store.ActivityMailSent, activity[0].Type)
	assert.Equal(t, "Email sent to alice@x.com", activity[0].Description)

	sent, err := st.ListSentMails(context.Background(), 0)
	require.NoError(t, err)
	require.Len(t, sent, 1)
	assert.Equal(t, id, sent[0].MessageID)
}

func TestDeliver_DisplayName(t *testing.T) {
	sender := &fakeSender{}
	r := New(sender, nil, Config{Provider: ProviderSMTP, DefaultDisplayName: "IQAC"})

	_, err := r.Deliver(context.Background(), validRequest())
	require.NoError(t, err)
	req := validRequest()
	req.DisplayName = "  Dean Office "
	_, err = r.Deliver(context.Background(), req)
	require.NoError(t, err)

	assert.Equal(t, "IQAC", sender.emails[0].From.Name)
	assert.Equal(t, "Dean Office", sender.emails[1].From.Name)
	assert.Nil(t, sender.emails[0].ReplyTo)
}

func TestDeliver_MissingCredentials(t *testing.T) {
	sender := &fakeSender{}
	st := noop.New()
	r := New(sender, st, Config{Provider: ProviderSMTP})

	req := validRequest()
	req.SMTPPass = ""
	_, err := r.Deliver(context.Background(), req)
	require.ErrorIs(t, err, ErrMissingCredentials)
	assert.Equal(t, "Missing SMTP Credentials (User/Pass)", ErrorMessage(err))
	assert.Empty(t, sender.emails)

	activity, err := st.ListActivity(context.Background(), 0)
	require.NoError(t, err)
	require.Len(t, activity, 1)
	assert.Equal(t, store.ActivityMailError, activity[0].Type)
	assert.Equal(t, "Failed to send to alice@x.com: Missing SMTP Credentials (User/Pass)", activity[0].Description)
}

func TestDeliver_ServiceProviderNeedsNoCredentials(t *testing.T) {
	sender := &fakeSender{}
	r := New(sender, nil, Config{Provider: ProviderSES})

	req := validRequest()
	req.SMTPUser, req.SMTPPass = "", ""
	_, err := r.Deliver(context.Background(), req)
	require.NoError(t, err)
	assert.Empty(t, sender.emails[0].From.Address)
	assert.Equal(t, mail.Credentials{}, sender.creds[0])
}

func TestDeliver_ProviderError(t *testing.T) {
	sender := &fakeSender{err: mail.NewAuthError("authentication failed", errors.New("535 5.7.8 bad credentials"))}
	st := noop.New()
	r := New(sender, st, Config{})

	_, err := r.Deliver(context.Background(), validRequest())
	require.Error(t, err)
	assert.Equal(t, mail.ReasonAuth, mail.ReasonOf(err))
	assert.Equal(t, "authentication failed: 535 5.7.8 bad credentials", ErrorMessage(err))

	sent, err := st.ListSentMails(context.Background(), 0)
	require.NoError(t, err)
	assert.Empty(t, sent)
}

func TestParseRecipients(t *testing.T) {
	assert.Equal(t, []mail.Address{{Address: "a@x.com"}, {Address: "b@x.com"}}, parseRecipients(" a@x.com, ,b@x.com "))
	assert.Nil(t, parseRecipients(""))
}
