/*
 * @module service/session/session_cleanup
 * @description 过期会话定时清理，并刷新有效会话数指标
 * @architecture 分层架构 - 业务服务层
 * @stateFlow 定时触发 -> Sweep -> 更新指标
 * @rules 清理失败只记录日志
 * @dependencies github.com/robfig/cron/v3
 * @refs session.go, service/monitoring/metrics_collector.go
 */

package session

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/robfig/cron/v3"
)

// SessionGauge 有效会话数指标
type SessionGauge interface {
	SetActiveSessions(n int)
}

// CleanupService 会话清理服务
type CleanupService struct {
	manager *Manager
	gauge   SessionGauge
	cron    *cron.Cron
	ctx     context.Context
	cancel  context.CancelFunc
	started bool
}

// NewCleanupService 创建会话清理服务
func NewCleanupService(manager *Manager, gauge SessionGauge) *CleanupService {
	ctx, cancel := context.WithCancel(context.Background())
	return &CleanupService{
		manager: manager,
		gauge:   gauge,
		cron:    cron.New(cron.WithSeconds()),
		ctx:     ctx,
		cancel:  cancel,
	}
}

// RunOnce 执行一次清理
func (s *CleanupService) RunOnce(ctx context.Context) {
	removed, err := s.manager.Sweep(ctx)
	if err != nil {
		slog.Error("清理过期会话失败", "error", err)
		return
	}
	if removed > 0 {
		slog.Info("已清理过期会话", "count", removed)
	}

	if s.gauge != nil {
		if n, err := s.manager.Active(ctx); err == nil {
			s.gauge.SetActiveSessions(n)
		}
	}
}

// Start 按cron表达式（秒 分 时 日 月 周）启动定时清理
func (s *CleanupService) Start(schedule string) error {
	if s.started {
		return fmt.Errorf("会话清理调度器已经启动")
	}
	if _, err := s.cron.AddFunc(schedule, func() { s.RunOnce(s.ctx) }); err != nil {
		return fmt.Errorf("添加定时任务失败: %w", err)
	}
	s.cron.Start()
	s.started = true
	slog.Info("会话清理调度器启动成功", "schedule", schedule)
	return nil
}

// Stop 停止定时清理
func (s *CleanupService) Stop() {
	if !s.started {
		return
	}
	s.cancel()
	<-s.cron.Stop().Done()
	s.started = false
	slog.Info("会话清理调度器已停止")
}
