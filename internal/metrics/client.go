package metrics

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
)

// ClientMetrics holds Prometheus metrics for outbound calls to the analysis backend.
type ClientMetrics struct {
	RequestsTotal       *prometheus.CounterVec
	RequestDuration     *prometheus.HistogramVec
	BreakerState        prometheus.Gauge
	BreakerStateChanges *prometheus.CounterVec
	CoalescedRequests   prometheus.Counter
}

// NewClientMetrics creates and registers client metrics on the given registry.
func NewClientMetrics(reg prometheus.Registerer) *ClientMetrics {
	m := &ClientMetrics{
		RequestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "client",
			Name:      "requests_total",
			Help:      "Total backend requests, by operation and status code (0 = no response).",
		}, []string{"operation", "status_code"}),
		RequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "client",
			Name:      "request_duration_seconds",
			Help:      "Duration of backend requests in seconds.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"operation"}),
		BreakerState: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "client",
			Name:      "circuit_breaker_state",
			Help:      "Current circuit breaker state (0=closed, 1=half-open, 2=open).",
		}),
		BreakerStateChanges: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "client",
			Name:      "circuit_breaker_state_changes_total",
			Help:      "Circuit breaker state transitions by new state.",
		}, []string{"state"}),
		CoalescedRequests: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "client",
			Name:      "coalesced_requests_total",
			Help:      "GET requests whose response was shared with a concurrent identical request.",
		}),
	}

	reg.MustRegister(m.RequestsTotal, m.RequestDuration, m.BreakerState, m.BreakerStateChanges, m.CoalescedRequests)
	return m
}

func (m *ClientMetrics) ObserveRequest(operation string, statusCode int, seconds float64) {
	m.RequestsTotal.WithLabelValues(operation, strconv.Itoa(statusCode)).Inc()
	m.RequestDuration.WithLabelValues(operation).Observe(seconds)
}
