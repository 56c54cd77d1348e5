/*
 * @module service/event/event
 * @description 排行榜事件定义与发布接口：刷新完成、人工评分变更、周期重置
 * @architecture 事件驱动架构 - 发布者接口 + Kafka/MQTT/SSE 实现
 * @stateFlow 业务操作成功 -> 构造事件 -> 发布到所有已配置的发布者
 * @rules 事件发布失败只记录日志，不影响业务操作结果
 * @dependencies github.com/google/uuid
 * @refs kafka_publisher.go, mqtt_publisher.go, hub.go
 */

package event

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
)

// 事件类型
const (
	TypeLeaderboardRefreshed = "leaderboard.refreshed"
	TypeScoresUpdated        = "scores.updated"
	TypeScoresReset          = "scores.reset"
	TypeLeaderboardCleared   = "leaderboard.cleared"
)

// Event 排行榜事件
type Event struct {
	ID        string                 `json:"id"`
	Type      string                 `json:"type"`
	Period    string                 `json:"period"`
	Data      map[string]interface{} `json:"data,omitempty"`
	CreatedAt time.Time              `json:"created_at"`
}

// NewEvent 创建事件
func NewEvent(eventType, period string, data map[string]interface{}) *Event {
	return &Event{
		ID:        uuid.New().String(),
		Type:      eventType,
		Period:    period,
		Data:      data,
		CreatedAt: time.Now(),
	}
}

// Payload 序列化事件
func (e *Event) Payload() ([]byte, error) {
	return json.Marshal(e)
}

// Publisher 事件发布者
type Publisher interface {
	Publish(ctx context.Context, evt *Event) error
	Close() error
}

// NoopPublisher 未配置消息中间件时使用
type NoopPublisher struct{}

// Publish 丢弃事件
func (NoopPublisher) Publish(ctx context.Context, evt *Event) error { return nil }

// Close 无需释放
func (NoopPublisher) Close() error { return nil }

// MultiPublisher 依次发布到多个发布者
type MultiPublisher struct {
	publishers []Publisher
}

// NewMultiPublisher 创建组合发布者，忽略nil
func NewMultiPublisher(publishers ...Publisher) *MultiPublisher {
	m := &MultiPublisher{}
	for _, p := range publishers {
		if p != nil {
			m.publishers = append(m.publishers, p)
		}
	}
	return m
}

// Publish 发布到全部发布者，汇总错误
func (m *MultiPublisher) Publish(ctx context.Context, evt *Event) error {
	var errs []error
	for _, p := range m.publishers {
		if err := p.Publish(ctx, evt); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Close 关闭全部发布者
func (m *MultiPublisher) Close() error {
	var errs []error
	for _, p := range m.publishers {
		if err := p.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// PublishQuietly 发布事件，失败只记录日志
func PublishQuietly(ctx context.Context, p Publisher, evt *Event) {
	if p == nil || evt == nil {
		return
	}
	if err := p.Publish(ctx, evt); err != nil {
		slog.Warn("事件发布失败", "type", evt.Type, "period", evt.Period, "error", err)
	}
}
