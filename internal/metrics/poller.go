package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Poller names used as label values.
const (
	PollerList   = "list"
	PollerDetail = "detail"
)

// Tick outcomes used as label values.
const (
	OutcomeSuccess   = "success"
	OutcomeFailure   = "failure"
	OutcomeSkipped   = "skipped"
	OutcomeDiscarded = "discarded"
)

// PollerMetrics holds Prometheus metrics for the dashboard polling loops.
type PollerMetrics struct {
	Ticks         *prometheus.CounterVec
	FetchDuration *prometheus.HistogramVec
	Active        *prometheus.GaugeVec
}

// NewPollerMetrics creates and registers poller metrics on the given registry.
func NewPollerMetrics(reg prometheus.Registerer) *PollerMetrics {
	m := &PollerMetrics{
		Ticks: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "poller",
			Name:      "ticks_total",
			Help:      "Total number of poll ticks, by poller and outcome.",
		}, []string{"poller", "outcome"}),
		FetchDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "poller",
			Name:      "fetch_duration_seconds",
			Help:      "Duration of one poll fetch in seconds.",
			Buckets:   []float64{.01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
		}, []string{"poller"}),
		Active: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "poller",
			Name:      "active",
			Help:      "Whether a poller is currently running (1) or idle (0).",
		}, []string{"poller"}),
	}

	reg.MustRegister(m.Ticks, m.FetchDuration, m.Active)
	return m
}

func (m *PollerMetrics) Tick(poller, outcome string) {
	m.Ticks.WithLabelValues(poller, outcome).Inc()
}

func (m *PollerMetrics) ObserveFetch(poller string, d time.Duration) {
	m.FetchDuration.WithLabelValues(poller).Observe(d.Seconds())
}

func (m *PollerMetrics) SetActive(poller string, active bool) {
	v := 0.0
	if active {
		v = 1
	}
	m.Active.WithLabelValues(poller).Set(v)
}
