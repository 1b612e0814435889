package std

import (
	"context"
	stdErr "errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"syscall"
	"time"

	"github.com/pkg/errors"

	"github.com/manavc-13/KIIT-Mailer/httpserver"
)

const ShutdownTimeout = 15 * time.Second

var _ httpserver.RunableProvider = (*Server)(nil)

type Config struct {
	Host string `envconfig:"WEBSERVER_HOST"`
	Port int    `envconfig:"WEBSERVER_PORT" default:"3000"`
	// PortSearch is how many following ports are tried when Port is taken.
	PortSearch  int    `envconfig:"WEBSERVER_PORT_SEARCH" default:"10"`
	TLSCertPath string `envconfig:"WEBSERVER_TLS_CERT_PATH"`
	TLSKeyPath  string `envconfig:"WEBSERVER_TLS_KEY_PATH"`
	ReadTimeout int    `envconfig:"WEBSERVER_READ_TIMEOUT" default:"120"`
}

type Server struct {
	logger *slog.Logger
	server *http.Server
	config Config

	mx       sync.Mutex
	listener net.Listener
}

func NewDefault(c Config, h http.Handler) *Server {
	s := New(c, h)
	s.server.ErrorLog = slog.NewLogLogger(s.logger.Handler(), slog.LevelError)
	return s
}

func New(c Config, h http.Handler) *Server {
	return &Server{
		server: &http.Server{
			Handler:           h,
			ReadTimeout:       time.Duration(c.ReadTimeout) * time.Second,
			ReadHeaderTimeout: 10 * time.Second,
		},
		logger: slog.Default().WithGroup("webserver"),
		config: c,
	}
}

// Listen binds the first free port starting at Config.Port. It is called by
// Start when needed.
func (s *Server) Listen() (net.Addr, error) {
	s.mx.Lock()
	defer s.mx.Unlock()
	if s.listener != nil {
		return s.listener.Addr(), nil
	}

	var err error
	for i := 0; i <= s.config.PortSearch; i++ {
		addr := fmt.Sprintf("%s:%d", s.config.Host, s.config.Port+i)
		s.listener, err = net.Listen("tcp", addr)
		if err == nil {
			s.server.Addr = s.listener.Addr().String()
			return s.listener.Addr(), nil
		}
		if !errors.Is(err, syscall.EADDRINUSE) || s.config.Port == 0 {
			break
		}
		s.logger.Warn("port in use, trying the next one", slog.String("addr", addr))
	}
	return nil, errors.Wrap(err, "failed to listen")
}

func (s *Server) Start() error {
	addr, err := s.Listen()
	if err != nil {
		return err
	}
	s.logger.Info("server starting", slog.String("addr", addr.String()))

	if s.config.TLSCertPath == "" {
		err = s.server.Serve(s.listener)
	} else {
		err = s.server.ServeTLS(s.listener, s.config.TLSCertPath, s.config.TLSKeyPath)
	}
	if err == nil || errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return errors.Wrap(err, "serve failed")
}

func (s *Server) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), ShutdownTimeout)
	defer cancel()
	err := s.server.Shutdown(ctx)
	if err != nil {
		err = stdErr.Join(err, errors.Wrap(s.server.Close(), "failed to close server"))
	}
	s.mx.Lock()
	if s.listener != nil {
		// already closed when Serve ran
		_ = s.listener.Close()
	}
	s.mx.Unlock()
	s.logger.Info("server closed")
	return errors.Wrap(err, "server shutdown failed")
}

// Run starts the server in the background. Call Listen first to surface
// bind errors synchronously.
func (s *Server) Run() {
	go func() {
		if err := s.Start(); err != nil {
			s.logger.Error("webserver crashed", "error", err)
		}
	}()
}
