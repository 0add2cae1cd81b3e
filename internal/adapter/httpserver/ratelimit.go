package httpserver

import (
	"math"
	"net/http"
	"strconv"
	"time"

	apperrors "github.com/etay-atar/Sandbox/internal/errors"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"golang.org/x/time/rate"
)

// Per-client buckets idle for this long are dropped.
const clientBucketTTL = 5 * time.Minute

// newRateLimiter throttles the auth endpoints per client IP with a token
// bucket of the given rate and burst. A rejected request gets 429 with a
// Retry-After hint of one token interval.
func newRateLimiter(perSecond float64, burst int) echo.MiddlewareFunc {
	retryAfter := "1"
	if perSecond > 0 {
		retryAfter = strconv.Itoa(int(math.Ceil(1 / perSecond)))
	}

	return middleware.RateLimiterWithConfig(middleware.RateLimiterConfig{
		Store: middleware.NewRateLimiterMemoryStoreWithConfig(middleware.RateLimiterMemoryStoreConfig{
			Rate:      rate.Limit(perSecond),
			Burst:     burst,
			ExpiresIn: clientBucketTTL,
		}),
		IdentifierExtractor: func(c echo.Context) (string, error) {
			return c.RealIP(), nil
		},
		DenyHandler: func(c echo.Context, _ string, _ error) error {
			c.Response().Header().Set("Retry-After", retryAfter)
			return c.JSON(http.StatusTooManyRequests, apperrors.ErrorResponse{Detail: "Too many requests"})
		},
	})
}
