package httpserver

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/etay-atar/Sandbox/internal/platform/version"
	"github.com/labstack/echo/v4"
)

// Upper bound for one /health/ready request across all checks.
const readyTimeout = 5 * time.Second

// HealthCheck is one dependency consulted by /health/ready, e.g. the backend
// ping or the circuit breaker state.
type HealthCheck struct {
	Name  string
	Check func(ctx context.Context) error
}

type livenessBody struct {
	Status string  `json:"status"`
	Uptime float64 `json:"uptime"`
}

type readinessBody struct {
	Status      string `json:"status"`
	FailedCheck string `json:"failed_check,omitempty"`
	Error       string `json:"error,omitempty"`
}

func (s *Server) registerHealthRoutes() {
	s.echo.GET("/health/live", s.handleLiveness)
	s.echo.GET("/health/ready", s.handleReadiness)
	s.echo.GET("/version", s.handleVersion)
}

func (s *Server) handleLiveness(c echo.Context) error {
	return writeJSON(c, http.StatusOK, livenessBody{
		Status: "ok",
		Uptime: s.clock.Since(s.startTime).Seconds(),
	})
}

// handleReadiness reports the first failing check; later checks are skipped.
func (s *Server) handleReadiness(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), readyTimeout)
	defer cancel()

	if name, err := s.firstFailingCheck(ctx); err != nil {
		return writeJSON(c, http.StatusServiceUnavailable, readinessBody{
			Status:      "unhealthy",
			FailedCheck: name,
			Error:       err.Error(),
		})
	}
	return writeJSON(c, http.StatusOK, readinessBody{Status: "ready"})
}

func (s *Server) firstFailingCheck(ctx context.Context) (string, error) {
	for _, hc := range s.healthChecks {
		if err := hc.Check(ctx); err != nil {
			return hc.Name, err
		}
	}
	return "", nil
}

func (s *Server) handleVersion(c echo.Context) error {
	return writeJSON(c, http.StatusOK, version.Get())
}

func writeJSON(c echo.Context, status int, body any) error {
	if err := c.JSON(status, body); err != nil {
		return fmt.Errorf("write %s response: %w", c.Path(), err)
	}
	return nil
}
