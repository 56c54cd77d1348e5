/*
 * @module service/event/hub
 * @description SSE订阅中心，向已连接的看板推送排行榜事件
 * @architecture 事件驱动架构 - 进程内广播
 * @stateFlow Subscribe -> 接收事件 -> Unsubscribe
 * @rules 订阅者队列满时丢弃事件，不阻塞发布方
 * @dependencies github.com/google/uuid
 * @refs api/controllers/event_controller.go
 */

package event

import (
	"context"
	"log/slog"
	"sync"

	"github.com/google/uuid"
)

// Subscriber SSE订阅者
type Subscriber struct {
	ID       string
	ClientIP string
	Events   chan *Event
	Done     chan struct{}
}

// Hub SSE订阅中心
type Hub struct {
	mu          sync.RWMutex
	subscribers map[string]*Subscriber
	bufferSize  int
}

// NewHub 创建订阅中心
func NewHub(bufferSize int) *Hub {
	if bufferSize <= 0 {
		bufferSize = 16
	}
	return &Hub{subscribers: make(map[string]*Subscriber), bufferSize: bufferSize}
}

// Subscribe 添加订阅者
func (h *Hub) Subscribe(clientIP string) *Subscriber {
	sub := &Subscriber{
		ID:       uuid.New().String(),
		ClientIP: clientIP,
		Events:   make(chan *Event, h.bufferSize),
		Done:     make(chan struct{}),
	}

	h.mu.Lock()
	h.subscribers[sub.ID] = sub
	h.mu.Unlock()

	slog.Info("SSE连接已建立", "connection_id", sub.ID, "client_ip", clientIP)
	return sub
}

// Unsubscribe 移除订阅者
func (h *Hub) Unsubscribe(id string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if sub, ok := h.subscribers[id]; ok {
		close(sub.Done)
		delete(h.subscribers, id)
		slog.Info("SSE连接已断开", "connection_id", id)
	}
}

// Count 当前订阅者数量
func (h *Hub) Count() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subscribers)
}

// Publish 广播事件
func (h *Hub) Publish(ctx context.Context, evt *Event) error {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for id, sub := range h.subscribers {
		select {
		case sub.Events <- evt:
		default:
			slog.Warn("SSE连接事件队列已满，跳过发送", "connection_id", id, "type", evt.Type)
		}
	}
	return nil
}

// Close 断开全部订阅者
func (h *Hub) Close() error {
	h.mu.Lock()
	defer h.mu.Unlock()

	for id, sub := range h.subscribers {
		close(sub.Done)
		delete(h.subscribers, id)
	}
	return nil
}
