package middleware

import (
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/propagation"
	semconv "go.opentelemetry.io/otel/semconv/v1.12.0"
	"go.opentelemetry.io/otel/trace"

	"github.com/manavc-13/KIIT-Mailer/logger"
)

var (
	meter = otel.GetMeterProvider().Meter("github.com/manavc-13/KIIT-Mailer/httpserver/middleware")
	// nolint:errcheck // Sync OpenTelemetry instruments never return errors
	requestsCount, _       = meter.Int64Counter("http.request_count")
	requestTimeHist, _     = meter.Int64Histogram("http.request_time", metric.WithUnit("ms"))
	requestBodyLenHist, _  = meter.Int64Histogram("http.request_body_len", metric.WithUnit("KB"))
	responseBodyLenHist, _ = meter.Int64Histogram("http.response_body_len", metric.WithUnit("KB"))
	tracer                 = otel.Tracer("github.com/manavc-13/KIIT-Mailer/httpserver/middleware")
)

// Monitoring traces requests, records request metrics and puts a request
// logger into the context. Bodies are counted, never captured: send-mail
// forms carry SMTP passwords.
func Monitoring(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		started := time.Now()
		ctx := otel.GetTextMapPropagator().Extract(r.Context(), propagation.HeaderCarrier(r.Header))

		ctx, span := tracer.Start(ctx, r.Method+" "+r.URL.Path, trace.WithSpanKind(trace.SpanKindServer))
		defer span.End()

		traceID := span.SpanContext().TraceID().String()
		log := slog.Default().With("method", r.Method, "path", r.URL.Path, "trace_id", traceID)
		w.Header().Set("X-Trace-Id", traceID)

		attrs := semconv.NetAttributesFromHTTPRequest("tcp", r)
		attrs = append(attrs, semconv.HTTPServerAttributesFromHTTPRequest("relay", r.URL.Path, r)...)
		attrs = append(attrs, attribute.String("http.request.header.User-Agent", r.Header.Get("User-Agent")))

		body := &countingReader{ReadCloser: r.Body}
		r.Body = body
		srw := newStatefulRespWriter(w)

		next.ServeHTTP(srw, r.WithContext(logger.NewContext(ctx, log)))

		route := r.URL.Path
		if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
			route = rctx.RoutePattern()
			span.SetName(r.Method + " " + route)
		}
		attrs = append(attrs, attribute.Int("http.response.status", srw.status), attribute.String("http.route", route))
		span.SetAttributes(attrs...)

		labels := metric.WithAttributes(attribute.String("http.method", r.Method), attribute.String("http.route", route))
		elapsed := time.Since(started)
		requestsCount.Add(ctx, 1, labels, metric.WithAttributes(attribute.Int("http.response.code", srw.status)))
		requestTimeHist.Record(ctx, elapsed.Milliseconds(), labels)
		requestBodyLenHist.Record(ctx, body.n/1024, labels)
		responseBodyLenHist.Record(ctx, srw.written/1024, labels)

		log.InfoContext(ctx, "request", "status", srw.status, "duration_ms", elapsed.Milliseconds())

		if srw.status >= 500 {
			span.SetStatus(codes.Error, "")
			return
		}
		span.SetStatus(codes.Ok, "")
	})
}

type countingReader struct {
	io.ReadCloser
	n int64
}

func (c *countingReader) Read(p []byte) (int, error) {
	n, err := c.ReadCloser.Read(p)
	c.n += int64(n)
	return n, err
}

// statefulRespWriter keeps the status and the number of bytes written.
type statefulRespWriter struct {
	http.ResponseWriter
	status  int
	written int64
}

func newStatefulRespWriter(w http.ResponseWriter) *statefulRespWriter {
	return &statefulRespWriter{ResponseWriter: w}
}

func (w *statefulRespWriter) WriteHeader(status int) {
	if w.status == 0 {
		w.status = status
	}
	w.ResponseWriter.WriteHeader(status)
}

func (w *statefulRespWriter) Write(b []byte) (int, error) {
	if w.status == 0 {
		w.WriteHeader(http.StatusOK)
	}
	n, err := w.ResponseWriter.Write(b)
	w.written += int64(n)
	return n, err
}

func (w *statefulRespWriter) Flush() {
	if f, ok := w.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

func (w *statefulRespWriter) Unwrap() http.ResponseWriter {
	return w.ResponseWriter
}
