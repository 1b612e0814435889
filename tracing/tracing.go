// Package tracing installs the global OpenTelemetry tracer provider.
package tracing

import (
	"io"

	"github.com/pkg/errors"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
)

type Provider interface {
	trace.TracerProvider
	io.Closer
}

// ProviderBuilder hides the config of a concrete provider.
type ProviderBuilder func() (Provider, error)

// Init installs the provider built by creator together with the W3C trace
// context propagator the relay client and the event publisher rely on. On
// failure a NoopProvider is returned with the error.
func Init(creator ProviderBuilder) (Provider, error) {
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(propagation.TraceContext{}, propagation.Baggage{}))

	provider, err := creator()
	if err != nil {
		return NoopProvider{TracerProvider: noop.NewTracerProvider()}, errors.Wrap(err, "failed to load tracing provider")
	}
	otel.SetTracerProvider(provider)
	return provider, nil
}

type NoopProvider struct{ noop.TracerProvider }

func (NoopProvider) Close() error { return nil }
