package logger

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
)

func TestNewDefault_Providers(t *testing.T) {
	for _, p := range []Provider{ProviderDevSlog, ProviderStdJson, ProviderCharm, ProviderNoop, "unknown"} {
		t.Run(string(p), func(t *testing.T) {
			assert.NotNil(t, NewDefault(Config{Provider: p, Level: DEBUG}))
		})
	}
}

func TestConvertLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, convertLevel(DEBUG))
	assert.Equal(t, slog.LevelInfo, convertLevel(INFO))
	assert.Equal(t, slog.LevelWarn, convertLevel(WARN))
	assert.Equal(t, slog.LevelError, convertLevel(ERROR))
	assert.Equal(t, slog.LevelInfo, convertLevel("verbose"))
}

func TestContext(t *testing.T) {
	buf := &bytes.Buffer{}
	l := slog.New(slog.NewTextHandler(buf, nil))

	assert.Equal(t, slog.Default(), FromContext(context.Background()))

	ctx := NewContext(context.Background(), l)
	assert.Equal(t, l, FromContext(ctx))

	FromContextWithErr(ctx, errors.New("relay down")).Info("send failed")
	assert.Contains(t, buf.String(), `error="relay down"`)
	assert.Contains(t, buf.String(), "stack=")
}

func TestWithErrIf(t *testing.T) {
	buf := &bytes.Buffer{}
	ctx := NewContext(context.Background(), slog.New(slog.NewTextHandler(buf, nil)))

	FromContextWithErrIf(ctx, nil).Error("nothing")
	assert.Empty(t, buf.String())

	FromContextWithErrIf(ctx, errors.New("x")).Error("something")
	assert.Contains(t, buf.String(), "something")
	assert.NotNil(t, WithErrIf(nil))
	assert.NotNil(t, WithErr(errors.New("y")))
}
