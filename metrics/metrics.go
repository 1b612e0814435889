// Package metrics serves OpenTelemetry meters on a Prometheus endpoint.
package metrics

import (
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/manavc-13/KIIT-Mailer/logger"
)

type Config struct {
	Enabled     bool   `envconfig:"METRICS_ENABLED" default:"false"`
	Host        string `envconfig:"METRICS_HOST" default:"0.0.0.0"`
	Port        int    `envconfig:"METRICS_PORT" default:"9090"`
	ReadTimeout int    `envconfig:"METRICS_READ_TIMEOUT" default:"30"`
}

type Metrics struct {
	config Config
	server *http.Server
}

// InitDefault installs the Prometheus meter provider and starts the
// endpoint. A disabled config returns a no-op closer.
func InitDefault(config Config) (io.Closer, error) {
	if !config.Enabled {
		return nopCloser{}, nil
	}
	m := New(config)
	if err := m.Start(); err != nil {
		return nil, errors.Wrap(err, "failed to start metrics server")
	}
	return m, nil
}

func New(config Config) *Metrics {
	return &Metrics{config: config, server: NewHttpServer(config)}
}

func (m *Metrics) Start() error {
	if err := InitPrometheus(); err != nil {
		return errors.Wrap(err, "failed to init prometheus")
	}
	go func() {
		if err := m.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.WithErr(err).Warn("metrics server failed")
		}
	}()
	return nil
}

func (m *Metrics) Close() error {
	return errors.Wrap(m.server.Close(), "failed to close metrics")
}

func NewHttpServer(conf Config) *http.Server {
	r := http.NewServeMux()
	r.Handle("/metrics", promhttp.Handler())
	return &http.Server{
		Addr:              fmt.Sprintf("%s:%d", conf.Host, conf.Port),
		Handler:           r,
		ReadTimeout:       time.Duration(conf.ReadTimeout) * time.Second,
		ReadHeaderTimeout: 10 * time.Second,
	}
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
