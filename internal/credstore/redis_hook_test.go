package credstore

import (
	"context"
	"errors"
	"net"
	"testing"

	"github.com/etay-atar/Sandbox/internal/metrics"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
)

func TestMetricsHook_ProcessCountsByStatus(t *testing.T) {
	m := metrics.NewStoreMetrics(prometheus.NewRegistry())
	hook := metricsHook{m: m}
	ctx := context.Background()

	ok := hook.ProcessHook(func(context.Context, redis.Cmder) error { return nil })
	miss := hook.ProcessHook(func(context.Context, redis.Cmder) error { return redis.Nil })
	fail := hook.ProcessHook(func(context.Context, redis.Cmder) error { return errors.New("boom") })

	_ = ok(ctx, redis.NewStringCmd(ctx, "get", "k"))
	_ = miss(ctx, redis.NewStringCmd(ctx, "get", "k"))
	_ = fail(ctx, redis.NewStatusCmd(ctx, "set", "k", "v"))

	assert.Equal(t, 2.0, testutil.ToFloat64(m.OpsTotal.WithLabelValues("get", "success")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.OpsTotal.WithLabelValues("set", "error")))
}

func TestMetricsHook_PipelineAndDial(t *testing.T) {
	m := metrics.NewStoreMetrics(prometheus.NewRegistry())
	hook := metricsHook{m: m}
	ctx := context.Background()

	pipe := hook.ProcessPipelineHook(func(context.Context, []redis.Cmder) error { return nil })
	_ = pipe(ctx, nil)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.OpsTotal.WithLabelValues("pipeline", "success")))

	dial := hook.DialHook(func(context.Context, string, string) (net.Conn, error) {
		return nil, errors.New("connection refused")
	})
	_, err := dial(ctx, "tcp", "localhost:1")
	assert.Error(t, err)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ConnectionErrors))
}
