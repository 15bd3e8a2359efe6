package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/teemow/gdrive-endpoint/internal/instrumentation"
)

const (
	DefaultMetricsAddr = ":9090"

	// DefaultShutdownTimeout bounds the graceful shutdown of every HTTP
	// listener
	DefaultShutdownTimeout = 30 * time.Second

	metricsReadHeaderTimeout = 10 * time.Second
	metricsWriteTimeout      = 10 * time.Second
	metricsIdleTimeout       = 60 * time.Second
)

// MetricsServerConfig configures the metrics listener
type MetricsServerConfig struct {
	Addr string

	// InstrumentationProvider must be enabled
	InstrumentationProvider *instrumentation.Provider

	Logger *slog.Logger
}

// MetricsServer exposes /metrics for Prometheus on its own port so scrapes
// never share a listener with MCP traffic
type MetricsServer struct {
	logger *slog.Logger

	mu       sync.Mutex
	addr     string
	listener net.Listener
	srv      *http.Server
}

// NewMetricsServer validates config. Nothing is bound until Listen.
func NewMetricsServer(config MetricsServerConfig) (*MetricsServer, error) {
	switch {
	case config.InstrumentationProvider == nil:
		return nil, errors.New("instrumentation provider is required for metrics server")
	case !config.InstrumentationProvider.Enabled():
		return nil, errors.New("instrumentation provider is not enabled")
	}

	s := &MetricsServer{addr: config.Addr, logger: config.Logger}
	if s.addr == "" {
		s.addr = DefaultMetricsAddr
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	return s, nil
}

func metricsMux() *http.ServeMux {
	mux := http.NewServeMux()
	// the otel prometheus exporter registers with the default registry
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("ok"))
	})
	return mux
}

// Listen binds the address. After it returns, Addr reports the bound
// address, so ":0" resolves to a real port.
func (s *MetricsServer) Listen() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener != nil {
		return errors.New("metrics server already listening")
	}

	ln, err := net.Listen("tcp", s.addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.addr, err)
	}
	s.listener = ln
	s.addr = ln.Addr().String()
	s.srv = &http.Server{
		Handler:           metricsMux(),
		ReadHeaderTimeout: metricsReadHeaderTimeout,
		WriteTimeout:      metricsWriteTimeout,
		IdleTimeout:       metricsIdleTimeout,
	}
	return nil
}

// Serve blocks serving the bound listener until Shutdown, which makes it
// return http.ErrServerClosed
func (s *MetricsServer) Serve() error {
	s.mu.Lock()
	srv, ln := s.srv, s.listener
	s.mu.Unlock()
	if srv == nil {
		return errors.New("metrics server is not listening")
	}

	s.logger.Info("serving metrics", "addr", ln.Addr().String())
	return srv.Serve(ln)
}

// Shutdown stops a started server. It is a no-op otherwise.
func (s *MetricsServer) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	srv, ln := s.srv, s.listener
	s.mu.Unlock()
	if srv == nil {
		return nil
	}
	err := srv.Shutdown(ctx)
	// Shutdown only closes listeners Serve has seen
	_ = ln.Close()
	return err
}

func (s *MetricsServer) Addr() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.addr
}
