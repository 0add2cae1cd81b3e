package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAllMetricsRegisterOnOneRegistry(t *testing.T) {
	reg := NewRegistry()

	require.NotPanics(t, func() {
		NewPollerMetrics(reg)
		NewClientMetrics(reg)
		NewUploadMetrics(reg)
		NewHTTPMetrics(reg)
	})
}

func TestPollerMetrics(t *testing.T) {
	m := NewPollerMetrics(prometheus.NewRegistry())

	m.Tick(PollerList, OutcomeSuccess)
	m.Tick(PollerList, OutcomeSuccess)
	m.Tick(PollerDetail, OutcomeDiscarded)
	m.ObserveFetch(PollerList, 120*time.Millisecond)
	m.SetActive(PollerDetail, true)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.Ticks.WithLabelValues(PollerList, OutcomeSuccess)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Ticks.WithLabelValues(PollerDetail, OutcomeDiscarded)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Active.WithLabelValues(PollerDetail)))
	assert.Equal(t, 1, testutil.CollectAndCount(m.FetchDuration))

	m.SetActive(PollerDetail, false)
	assert.Equal(t, 0.0, testutil.ToFloat64(m.Active.WithLabelValues(PollerDetail)))
}

func TestClientMetrics(t *testing.T) {
	m := NewClientMetrics(prometheus.NewRegistry())

	m.ObserveRequest("list_submissions", http.StatusOK, 0.05)
	m.ObserveRequest("list_submissions", 0, 0.01)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.RequestsTotal.WithLabelValues("list_submissions", "200")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.RequestsTotal.WithLabelValues("list_submissions", "0")))
}

func TestHandlerServesRegisteredMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewUploadMetrics(reg)
	m.UploadsTotal.WithLabelValues(OutcomeSuccess).Inc()

	rec := httptest.NewRecorder()
	Handler(reg).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `sandboxctl_upload_total{outcome="success"} 1`)
}

func TestHTTPMetricsMiddleware(t *testing.T) {
	m := NewHTTPMetrics(prometheus.NewRegistry())

	e := echo.New()
	e.Use(m.Middleware())
	e.GET("/", func(c echo.Context) error { return c.String(http.StatusOK, "ok") })
	e.GET("/api/v1/submissions/:id/status", func(c echo.Context) error {
		return c.String(http.StatusNotFound, "missing")
	})

	for _, path := range []string{"/", "/api/v1/submissions/abc/status"} {
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	}

	assert.Equal(t, 1.0, testutil.ToFloat64(m.RequestsTotal.WithLabelValues(http.MethodGet, "/api/v1/submissions/:id/status", "404")))
	assert.Equal(t, 1, testutil.CollectAndCount(m.RequestsTotal), "health root must not be recorded")
	assert.Equal(t, 0.0, testutil.ToFloat64(m.InFlightGauge))
}
