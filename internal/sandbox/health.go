package sandbox

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	apperrors "github.com/etay-atar/Sandbox/internal/errors"
	"github.com/etay-atar/Sandbox/internal/platform/retry"
)

// DefaultReadyPolicy waits roughly half a minute for a backend that is still starting.
var DefaultReadyPolicy = retry.Policy{
	MaxAttempts:     8,
	InitialBackoff:  250 * time.Millisecond,
	MaxBackoff:      5 * time.Second,
	ThrottleBackoff: 2 * time.Second,
}

// Ping checks the backend's health root on the host of the configured base URL.
func (c *Client) Ping(ctx context.Context) error {
	_, err := c.do(ctx, request{
		operation: "ping",
		method:    http.MethodGet,
		url:       c.hostRoot,
	})
	return err
}

// WaitReady pings until the backend answers, following policy.
func (c *Client) WaitReady(ctx context.Context, policy retry.Policy) error {
	if policy.OnRetry == nil {
		policy.OnRetry = func(attempt int, err error, backoff time.Duration) {
			slog.InfoContext(ctx, "Backend not ready, retrying", "attempt", attempt, "backoff", backoff, "error", err)
		}
	}
	return retry.DoVoid(ctx, policy, classifyReadiness, c.Ping)
}

func classifyReadiness(err error) retry.Action {
	switch {
	case apperrors.IsType(err, apperrors.TypeTransport):
		return retry.Retry
	case apperrors.IsType(err, apperrors.TypeExternal):
		return retry.After
	default:
		return retry.Stop
	}
}
