package monitoring

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetricsCollector(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetricsCollector(reg)

	m.RecordRefresh(time.Second, nil)
	m.RecordRefresh(time.Second, errors.New("boom"))
	m.RecordRefresh(time.Second, nil)
	assert.Equal(t, 2.0, testutil.ToFloat64(m.refreshTotal.WithLabelValues("success")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.refreshTotal.WithLabelValues("error")))

	m.RecordFeedRows(10, 3, 8, 2)
	assert.Equal(t, 10.0, testutil.ToFloat64(m.feedRows.WithLabelValues("completion")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.leaderboardRAs))

	m.RecordScoreOperation("set", nil)
	m.RecordLogin("failure")
	m.SetActiveSessions(3)
	m.RecordExport()
	assert.Equal(t, 1.0, testutil.ToFloat64(m.scoreOperations.WithLabelValues("set", "success")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.adminLogins.WithLabelValues("failure")))
	assert.Equal(t, 3.0, testutil.ToFloat64(m.activeSessions))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.exportsTotal))

	// 两个注册表互不冲突
	assert.NotPanics(t, func() { NewMetricsCollector(prometheus.NewRegistry()) })
}

func TestMetricsCollector_NilSafe(t *testing.T) {
	var m *MetricsCollector
	assert.NotPanics(t, func() {
		m.RecordRefresh(time.Second, nil)
		m.RecordLogin("success")
		m.RecordExport()
	})
}

func TestHealthChecker(t *testing.T) {
	ok := func(ctx context.Context) error { return nil }
	fail := func(ctx context.Context) error { return errors.New("unreachable") }

	t.Run("全部可用", func(t *testing.T) {
		h := NewHealthChecker(time.Second)
		h.Register("store", true, ok)
		h.Register("redis", false, ok)
		status := h.Check(context.Background())
		assert.Equal(t, StatusHealthy, status.Overall)
		require.Len(t, status.Dependencies, 2)
		assert.Equal(t, "redis", status.Dependencies[0].Name)
	})

	t.Run("可选依赖失败", func(t *testing.T) {
		h := NewHealthChecker(time.Second)
		h.Register("store", true, ok)
		h.Register("source", false, fail)
		status := h.Check(context.Background())
		assert.Equal(t, StatusWarning, status.Overall)
		assert.Equal(t, "unreachable", status.Dependencies[0].ErrorMessage)
	})

	t.Run("必需依赖失败", func(t *testing.T) {
		h := NewHealthChecker(time.Second)
		h.Register("source", false, fail)
		h.Register("store", true, fail)
		assert.Equal(t, StatusCritical, h.Check(context.Background()).Overall)
	})

	t.Run("检查超时", func(t *testing.T) {
		h := NewHealthChecker(10 * time.Millisecond)
		h.Register("slow", true, func(ctx context.Context) error {
			<-ctx.Done()
			return ctx.Err()
		})
		status := h.Check(context.Background())
		assert.Equal(t, StatusCritical, status.Overall)
	})
}
