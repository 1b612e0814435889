package mail

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
)

func TestEmail_Validate(t *testing.T) {
	valid := Email{
		From:    Address{Address: "sender@example.com"},
		To:      []Address{{Address: "to@example.com"}},
		Subject: "Hi",
		HTML:    "<p>x</p>",
	}

	tests := []struct {
		name   string
		mutate func(e *Email)
		reason ErrorReason
	}{
		{"valid", func(*Email) {}, ""},
		{"no from", func(e *Email) { e.From = Address{} }, ReasonValidation},
		{"bad from", func(e *Email) { e.From.Address = "nobody" }, ReasonInvalidEmail},
		{"no recipients", func(e *Email) { e.To = nil }, ReasonValidation},
		{"bad bcc", func(e *Email) { e.Bcc = []Address{{Address: "a b@x.com"}} }, ReasonInvalidEmail},
		{"no body", func(e *Email) { e.HTML = "" }, ReasonValidation},
		{"text only", func(e *Email) { e.HTML = ""; e.Body = "x" }, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := valid
			tt.mutate(&e)
			err := e.Validate()
			if tt.reason == "" {
				assert.NoError(t, err)
				return
			}
			assert.Equal(t, tt.reason, ReasonOf(err))
		})
	}
}

func TestEmail_Recipients(t *testing.T) {
	e := Email{
		To:  []Address{{Address: "a@x.com"}},
		Cc:  []Address{{Address: "b@x.com"}},
		Bcc: []Address{{Address: "c@x.com"}},
	}
	assert.Equal(t, []string{"a@x.com", "b@x.com", "c@x.com"}, e.Recipients())
}

func TestError(t *testing.T) {
	cause := errors.New("535 bad credentials")
	err := errors.Wrap(NewAuthError("authentication failed", cause), "send")

	assert.Equal(t, ReasonAuth, ReasonOf(err))
	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "AUTH_ERROR: authentication failed. Cause: 535 bad credentials")
	assert.Equal(t, ReasonUnknown, ReasonOf(errors.New("plain")))
}
