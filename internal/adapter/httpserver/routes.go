package httpserver

import (
	"log/slog"
	"net/http"

	apperrors "github.com/etay-atar/Sandbox/internal/errors"
	"github.com/etay-atar/Sandbox/internal/metrics"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
)

func (s *Server) registerRoutes() {
	s.echo.Use(correlationMiddleware)
	s.echo.Use(s.setupRequestLoggerMiddleware())
	s.echo.Use(middleware.Recover())
	if m := s.httpMetrics(); m != nil {
		s.echo.Use(m.Middleware())
	}
	s.echo.Use(apperrors.Middleware())

	s.echo.GET("/", s.handleRoot)
	s.registerHealthRoutes()
	if s.registry != nil {
		s.echo.GET("/metrics", echo.WrapHandler(metrics.Handler(s.registry)))
	}

	if s.backend != nil {
		s.registerBackendRoutes()
	}
}

func (s *Server) registerBackendRoutes() {
	b := s.backend
	api := s.echo.Group("/api/v1")

	auth := api.Group("/auth", newRateLimiter(b.cfg.AuthRate, b.cfg.AuthBurst))
	auth.POST("/register", b.handleRegister)
	auth.POST("/login", b.handleLogin)

	subs := api.Group("/submissions", b.requireAuth)
	subs.GET("/", b.handleListSubmissions)
	subs.POST("/", b.handleCreateSubmission, middleware.BodyLimit(b.cfg.MaxUploadSize))
	subs.GET("/:id/status", b.handleStatus)
	subs.GET("/:id/report", b.handleReport)
}

func (s *Server) handleRoot(c echo.Context) error {
	msg := "sandboxctl status server"
	if s.backend != nil {
		msg = "Sandbox API is running"
	}
	return c.JSON(http.StatusOK, map[string]string{"message": msg})
}

func (s *Server) setupRequestLoggerMiddleware() echo.MiddlewareFunc {
	return middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogStatus:  true,
		LogURI:     true,
		LogMethod:  true,
		LogLatency: true,
		LogError:   true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			attrs := []any{
				"method", v.Method,
				"uri", v.URI,
				"status", v.Status,
				"latency", v.Latency,
			}
			if v.Error != nil {
				attrs = append(attrs, "error", v.Error)
			}
			slog.DebugContext(c.Request().Context(), "Request", attrs...)
			return nil
		},
	})
}
