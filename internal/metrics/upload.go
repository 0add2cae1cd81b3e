package metrics

import "github.com/prometheus/client_golang/prometheus"

// UploadMetrics holds Prometheus metrics for file submissions.
type UploadMetrics struct {
	UploadsTotal *prometheus.CounterVec
	UploadBytes  prometheus.Histogram
}

// NewUploadMetrics creates and registers upload metrics on the given registry.
func NewUploadMetrics(reg prometheus.Registerer) *UploadMetrics {
	m := &UploadMetrics{
		UploadsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "upload",
			Name:      "total",
			Help:      "Total number of upload attempts, by outcome.",
		}, []string{"outcome"}),
		UploadBytes: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "upload",
			Name:      "size_bytes",
			Help:      "Size of successfully uploaded files in bytes.",
			Buckets:   prometheus.ExponentialBuckets(1024, 4, 10),
		}),
	}

	reg.MustRegister(m.UploadsTotal, m.UploadBytes)
	return m
}
