package sandbox

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/etay-atar/Sandbox/internal/metrics"
	"github.com/sony/gobreaker"
)

// serverError carries a 5xx response through the breaker as a failure.
type serverError struct {
	resp *http.Response
}

func (e *serverError) Error() string {
	return "backend returned " + e.resp.Status
}

// breakerTransport counts transport errors and 5xx answers against the
// breaker. 4xx answers are the caller's problem and count as success.
type breakerTransport struct {
	next http.RoundTripper
	cb   *gobreaker.CircuitBreaker
}

func newBreakerTransport(next http.RoundTripper, maxFailures uint32, openTimeout time.Duration, m *metrics.ClientMetrics) *breakerTransport {
	settings := gobreaker.Settings{
		Name:        "sandbox-api",
		MaxRequests: 1,
		Timeout:     openTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= maxFailures
		},
		IsSuccessful: func(err error) bool {
			// A cancelled request says nothing about backend health.
			return err == nil || errors.Is(err, context.Canceled)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			slog.Warn("Circuit breaker state changed", "component", name, "from", from.String(), "to", to.String())
			if m != nil {
				m.BreakerStateChanges.WithLabelValues(to.String()).Inc()
				m.BreakerState.Set(stateToFloat(to))
			}
		},
	}

	return &breakerTransport{next: next, cb: gobreaker.NewCircuitBreaker(settings)}
}

func (t *breakerTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	res, err := t.cb.Execute(func() (any, error) {
		resp, err := t.next.RoundTrip(req)
		if err != nil {
			return nil, err
		}
		if resp.StatusCode >= http.StatusInternalServerError {
			return nil, &serverError{resp: resp}
		}
		return resp, nil
	})

	var se *serverError
	if errors.As(err, &se) {
		return se.resp, nil
	}
	if err != nil {
		return nil, err
	}
	return res.(*http.Response), nil
}

func (t *breakerTransport) State() gobreaker.State {
	return t.cb.State()
}

func stateToFloat(state gobreaker.State) float64 {
	switch state {
	case gobreaker.StateClosed:
		return 0
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	default:
		return 0
	}
}

func isBreakerRejection(err error) bool {
	return errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests)
}
