/*
 * @module api/controllers/event_controller
 * @description 排行榜事件SSE推送，看板通过长连接接收刷新与评分变更通知
 * @architecture RESTful API架构 - 控制器层
 * @stateFlow 建立连接 -> 订阅 -> 推送事件 -> 断开时取消订阅
 * @rules 连接建立后立即发送 connected 事件；定期发送心跳注释保持连接
 * @dependencies service/event
 * @refs service/event/hub.go
 */

package controllers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"ra-leaderboard-service/api/middleware"
	"ra-leaderboard-service/service/event"
)

// EventController 事件推送控制器
type EventController struct {
	hub       *event.Hub
	heartbeat time.Duration
}

// NewEventController 创建事件控制器实例
func NewEventController(hub *event.Hub) *EventController {
	return &EventController{hub: hub, heartbeat: 30 * time.Second}
}

// HandleSSE 处理SSE连接
// @Summary 订阅排行榜事件
// @Description 通过SSE接收 leaderboard.refreshed、scores.updated、scores.reset 事件
// @Tags 事件
// @Produce text/event-stream
// @Success 200 {string} string "SSE事件流"
// @Router /events [get]
func (c *EventController) HandleSSE(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "不支持流式响应", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	sub := c.hub.Subscribe(middleware.ClientIP(r))
	defer c.hub.Unsubscribe(sub.ID)

	fmt.Fprintf(w, "event: connected\ndata: {\"connection_id\":\"%s\",\"timestamp\":\"%s\"}\n\n",
		sub.ID, time.Now().Format(time.RFC3339))
	flusher.Flush()

	ticker := time.NewTicker(c.heartbeat)
	defer ticker.Stop()

	for {
		select {
		case evt := <-sub.Events:
			data, err := json.Marshal(evt)
			if err != nil {
				continue
			}
			fmt.Fprintf(w, "id: %s\nevent: %s\ndata: %s\n\n", evt.ID, evt.Type, data)
			flusher.Flush()

		case <-ticker.C:
			fmt.Fprint(w, ": heartbeat\n\n")
			flusher.Flush()

		case <-sub.Done:
			return

		case <-r.Context().Done():
			return
		}
	}
}
