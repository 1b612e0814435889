package metrics

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
)

func TestNewHttpServer(t *testing.T) {
	server := NewHttpServer(Config{Host: "127.0.0.1", Port: 9191, ReadTimeout: 15})
	assert.Equal(t, "127.0.0.1:9191", server.Addr)
	assert.Equal(t, 15*time.Second, server.ReadTimeout)
}

func TestInitDefault_Disabled(t *testing.T) {
	closer, err := InitDefault(Config{})
	require.NoError(t, err)
	assert.NoError(t, closer.Close())
}

func TestPrometheusEndpoint(t *testing.T) {
	require.NoError(t, InitPrometheus())

	counter, err := otel.Meter("bulkmail/test").Int64Counter("batch.rows.test")
	require.NoError(t, err)
	counter.Add(context.Background(), 3)

	srv := httptest.NewServer(NewHttpServer(Config{}).Handler)
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), "batch_rows_test")
}
