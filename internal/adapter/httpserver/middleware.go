package httpserver

import (
	"github.com/etay-atar/Sandbox/internal/platform/correlation"
	"github.com/labstack/echo/v4"
)

// correlationMiddleware adopts the caller's correlation id, or mints one,
// and echoes it on the response.
func correlationMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		id := c.Request().Header.Get(correlation.HeaderName)
		if id == "" {
			id = correlation.NewID()
		}
		ctx := correlation.WithID(c.Request().Context(), id)
		c.SetRequest(c.Request().WithContext(ctx))
		c.Response().Header().Set(correlation.HeaderName, id)
		return next(c)
	}
}
