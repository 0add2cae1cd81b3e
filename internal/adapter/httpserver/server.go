package httpserver

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	apperrors "github.com/etay-atar/Sandbox/internal/errors"
	"github.com/etay-atar/Sandbox/internal/metrics"
	"github.com/jonboulle/clockwork"
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
)

// Server is an echo HTTP server. A status server only exposes health,
// version and metrics routes; a mock server additionally serves the
// sandbox backend API under /api/v1.
type Server struct {
	echo  *echo.Echo
	addr  string
	clock clockwork.Clock

	registry     *prometheus.Registry
	healthChecks []HealthCheck
	startTime    time.Time

	backend *backend
}

// NewStatusServer builds the health and metrics server used by long-running
// client commands. reg may be nil to omit /metrics.
func NewStatusServer(addr string, reg *prometheus.Registry, healthChecks []HealthCheck) *Server {
	srv := newServer(addr, clockwork.NewRealClock(), reg, healthChecks)
	srv.registerRoutes()
	return srv
}

// NewMockServer builds a local stand-in for the sandbox analysis backend.
func NewMockServer(cfg MockConfig) (*Server, error) {
	if cfg.JWTSecret == "" {
		return nil, errors.New("mock server requires a JWT secret")
	}
	cfg = cfg.withDefaults()

	srv := newServer(cfg.Addr, cfg.Clock, cfg.Registry, nil)
	srv.backend = newBackend(cfg)
	srv.registerRoutes()
	return srv, nil
}

func newServer(addr string, clock clockwork.Clock, reg *prometheus.Registry, healthChecks []HealthCheck) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = apperrors.HTTPErrorHandler

	return &Server{
		echo:         e,
		addr:         addr,
		clock:        clock,
		registry:     reg,
		healthChecks: healthChecks,
		startTime:    clock.Now(),
	}
}

// Handler exposes the router, e.g. for httptest.
func (s *Server) Handler() http.Handler {
	return s.echo
}

func (s *Server) Start() error {
	slog.Info("Starting server", "addr", s.addr)
	if err := s.echo.Start(s.addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("failed to start server: %w", err)
	}
	return nil
}

// Serve runs the server on an already bound listener.
func (s *Server) Serve(l net.Listener) error {
	s.echo.Listener = l
	slog.Info("Starting server", "addr", l.Addr().String())
	if err := s.echo.Start(""); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("failed to start server: %w", err)
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	if err := s.echo.Shutdown(ctx); err != nil {
		return fmt.Errorf("failed to shutdown server: %w", err)
	}
	return nil
}

func (s *Server) httpMetrics() *metrics.HTTPMetrics {
	if s.registry == nil || s.backend == nil {
		return nil
	}
	return metrics.NewHTTPMetrics(s.registry)
}
