package middleware

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/manavc-13/KIIT-Mailer/logger"
)

func init() {
	logger.InitDefault(logger.Config{
		Provider: logger.ProviderNoop,
		Level:    logger.INFO,
	})
}

func TestMonitoring_PassesBodyAndStatus(t *testing.T) {
	var got string
	h := Monitoring(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NotNil(t, logger.FromContext(r.Context()))
		b, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		got = string(b)
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte("done"))
	}))

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/api/send-mail", strings.NewReader("smtpPass=secret")))

	assert.Equal(t, "smtpPass=secret", got)
	assert.Equal(t, http.StatusCreated, rr.Code)
	assert.Equal(t, "done", rr.Body.String())
	assert.NotEmpty(t, rr.Header().Get("X-Trace-Id"))
}

func TestMonitoring_WithChiRoutes(t *testing.T) {
	mux := chi.NewRouter()
	mux.Use(Monitoring)
	mux.Delete("/api/drafts/{id}", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(chi.URLParam(r, "id")))
	})

	rr := httptest.NewRecorder()
	mux.ServeHTTP(rr, httptest.NewRequest(http.MethodDelete, "/api/drafts/abc", nil))
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "abc", rr.Body.String())
}

func TestStatefulRespWriter(t *testing.T) {
	rr := httptest.NewRecorder()
	w := newStatefulRespWriter(rr)

	_, err := w.Write([]byte("hello"))
	require.NoError(t, err)
	w.WriteHeader(http.StatusTeapot)
	w.Flush()

	assert.Equal(t, http.StatusOK, w.status)
	assert.Equal(t, int64(5), w.written)
	assert.Equal(t, rr, w.Unwrap())
}

func TestRecovery(t *testing.T) {
	h := Recovery(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	}))

	rr := httptest.NewRecorder()
	assert.NotPanics(t, func() {
		h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))
	})
	assert.Equal(t, http.StatusInternalServerError, rr.Code)
	assert.JSONEq(t, `{"error":"Internal Server Error"}`, rr.Body.String())
}

func TestRecovery_NoPanic(t *testing.T) {
	h := Recovery(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusNoContent, rr.Code)
}

func TestRecovery_AbortHandler(t *testing.T) {
	h := Recovery(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic(http.ErrAbortHandler)
	}))

	assert.PanicsWithValue(t, http.ErrAbortHandler, func() {
		h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	})
}
