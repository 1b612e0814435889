// Package jaeger exports spans over OTLP HTTP, which Jaeger accepts natively.
package jaeger

import (
	"context"
	stdErr "errors"

	"github.com/pkg/errors"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/sdk/resource"
	tracesdk "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.12.0"

	"github.com/manavc-13/KIIT-Mailer/tracing"
)

var _ tracing.Provider = (*Provider)(nil)

type Config struct {
	EndPoint    string  `envconfig:"TRACING_ENDPOINT"`
	ServiceName string  `envconfig:"SERVICE_NAME" default:"bulkmail"`
	AppVersion  string  `envconfig:"APP_VERSION" default:"dev"`
	SampleRatio float64 `envconfig:"TRACING_SAMPLE_RATIO" default:"1"`
}

type Provider struct {
	*tracesdk.TracerProvider
}

// Close flushes pending spans and shuts the provider down.
func (p *Provider) Close() error {
	ctx := context.Background()
	flushErr := p.ForceFlush(ctx)
	shutdownErr := p.Shutdown(ctx)
	return errors.Wrap(stdErr.Join(flushErr, shutdownErr), "shutdown jaeger")
}

func NewProviderBuilder(conf Config) tracing.ProviderBuilder {
	return func() (tracing.Provider, error) {
		if conf.EndPoint == "" {
			return nil, errors.New("empty connection string")
		}
		if conf.ServiceName == "" {
			return nil, errors.New("service name is empty")
		}

		exp, err := otlptrace.New(context.Background(), otlptracehttp.NewClient(otlptracehttp.WithEndpointURL(conf.EndPoint)))
		if err != nil {
			return nil, errors.Wrap(err, "failed to create otlp exporter")
		}
		return &Provider{TracerProvider: newTracerProvider(conf, tracesdk.WithBatcher(exp))}, nil
	}
}

func newTracerProvider(conf Config, exporter tracesdk.TracerProviderOption) *tracesdk.TracerProvider {
	sampler := tracesdk.AlwaysSample()
	if conf.SampleRatio < 1 {
		sampler = tracesdk.ParentBased(tracesdk.TraceIDRatioBased(conf.SampleRatio))
	}
	return tracesdk.NewTracerProvider(
		exporter,
		tracesdk.WithResource(resource.NewWithAttributes(
			semconv.SchemaURL,
			semconv.ServiceNameKey.String(conf.ServiceName),
			semconv.ServiceVersionKey.String(conf.AppVersion),
		)),
		tracesdk.WithSampler(sampler),
	)
}
