/*
 * @module service/monitoring/metrics_collector
 * @description 排行榜服务的Prometheus指标：刷新次数与耗时、数据源行数、评分变更、管理员登录
 * @architecture 分层架构 - 监控层
 * @stateFlow 业务操作 -> Record* -> /metrics 暴露
 * @rules 标签取值有限，RA名不作为标签
 * @dependencies github.com/prometheus/client_golang
 * @refs service/leaderboard/service.go, api/middleware/admin_auth.go
 */

package monitoring

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// MetricsCollector 指标收集器
type MetricsCollector struct {
	refreshTotal    *prometheus.CounterVec
	refreshDuration prometheus.Histogram
	feedRows        *prometheus.GaugeVec
	leaderboardRAs  prometheus.Gauge
	scoreOperations *prometheus.CounterVec
	adminLogins     *prometheus.CounterVec
	activeSessions  prometheus.Gauge
	exportsTotal    prometheus.Counter
}

// NewMetricsCollector 在给定注册表上创建指标，reg为nil时使用默认注册表
func NewMetricsCollector(reg prometheus.Registerer) *MetricsCollector {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)

	return &MetricsCollector{
		refreshTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "raotm_refresh_total",
				Help: "排行榜刷新次数",
			},
			[]string{"status"},
		),
		refreshDuration: factory.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "raotm_refresh_duration_seconds",
				Help:    "排行榜刷新耗时",
				Buckets: prometheus.DefBuckets,
			},
		),
		feedRows: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "raotm_feed_rows",
				Help: "最近一次刷新各数据源的行数",
			},
			[]string{"feed"},
		),
		leaderboardRAs: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "raotm_leaderboard_ras",
				Help: "最近一次刷新得到的RA数量",
			},
		),
		scoreOperations: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "raotm_manual_score_operations_total",
				Help: "人工评分操作次数",
			},
			[]string{"operation", "status"},
		),
		adminLogins: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "raotm_admin_logins_total",
				Help: "管理员登录次数",
			},
			[]string{"result"},
		),
		activeSessions: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "raotm_admin_sessions_active",
				Help: "当前有效的管理员会话数",
			},
		),
		exportsTotal: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "raotm_exports_total",
				Help: "CSV导出次数",
			},
		),
	}
}

// RecordRefresh 记录一次刷新
func (m *MetricsCollector) RecordRefresh(duration time.Duration, err error) {
	if m == nil {
		return
	}
	m.refreshTotal.WithLabelValues(statusLabel(err)).Inc()
	m.refreshDuration.Observe(duration.Seconds())
}

// RecordFeedRows 记录数据源行数
func (m *MetricsCollector) RecordFeedRows(completion, quality, activity, ras int) {
	if m == nil {
		return
	}
	m.feedRows.WithLabelValues("completion").Set(float64(completion))
	m.feedRows.WithLabelValues("quality").Set(float64(quality))
	m.feedRows.WithLabelValues("activity").Set(float64(activity))
	m.leaderboardRAs.Set(float64(ras))
}

// RecordScoreOperation 记录人工评分操作（set、batch、reset）
func (m *MetricsCollector) RecordScoreOperation(operation string, err error) {
	if m == nil {
		return
	}
	m.scoreOperations.WithLabelValues(operation, statusLabel(err)).Inc()
}

// RecordLogin 记录登录结果（success、failure、throttled）
func (m *MetricsCollector) RecordLogin(result string) {
	if m == nil {
		return
	}
	m.adminLogins.WithLabelValues(result).Inc()
}

// SetActiveSessions 设置有效会话数
func (m *MetricsCollector) SetActiveSessions(n int) {
	if m == nil {
		return
	}
	m.activeSessions.Set(float64(n))
}

// RecordExport 记录一次导出
func (m *MetricsCollector) RecordExport() {
	if m == nil {
		return
	}
	m.exportsTotal.Inc()
}

func statusLabel(err error) string {
	if err != nil {
		return "error"
	}
	return "success"
}
