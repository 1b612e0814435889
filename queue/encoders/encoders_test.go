package encoders

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/manavc-13/KIIT-Mailer/queue"
)

func TestJSON_Encode(t *testing.T) {
	type outcome struct {
		Index  int    `json:"index"`
		Email  string `json:"email"`
		Status string `json:"status"`
	}

	b, err := JSON{}.Encode(outcome{Index: 2, Email: "a@x.com", Status: "sent"})
	require.NoError(t, err)
	assert.JSONEq(t, `{"index":2,"email":"a@x.com","status":"sent"}`, string(b))
	assert.Equal(t, "application/json", JSON{}.ContentType())
}

func TestJSON_Encode_Unsupported(t *testing.T) {
	_, err := JSON{}.Encode(make(chan int))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to marshal chan int")
}

func TestMessage_EncodeValue(t *testing.T) {
	msg := queue.Message{Topic: "bulkmail.batch.row"}
	b, err := msg.EncodeValue(JSON{})
	require.NoError(t, err)
	assert.Nil(t, b)

	msg.Body = map[string]int{"total": 3}
	b, err = msg.EncodeValue(JSON{})
	require.NoError(t, err)
	assert.JSONEq(t, `{"total":3}`, string(b))
}
