package charm

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNew(t *testing.T) {
	buf := &bytes.Buffer{}
	l := New(buf, slog.LevelInfo)

	l.Debug("hidden")
	l.Info("Sent to a@x.com", "index", 1)
	l.Error("Failed to send to b@x.com", "reason", "rejected")

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, "Sent to a@x.com")
	assert.Contains(t, out, "index=1")
	assert.Contains(t, out, "Failed to send to b@x.com")
}
