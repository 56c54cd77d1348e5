/*
 * @module service/event/kafka_publisher
 * @description Kafka事件发布者，以周期为消息键写入单一主题
 * @architecture 事件驱动架构 - 生产者
 * @stateFlow 事件 -> JSON -> kafka.Message(key=period) -> WriteMessages
 * @rules 同一周期的事件使用相同消息键，保证分区内有序
 * @dependencies github.com/segmentio/kafka-go
 * @refs event.go
 */

package event

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/segmentio/kafka-go"
)

// messageWriter kafka.Writer 的最小接口
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaPublisher Kafka发布者
type KafkaPublisher struct {
	writer  messageWriter
	topic   string
	timeout time.Duration
}

// NewKafkaPublisher 创建Kafka发布者
func NewKafkaPublisher(brokers []string, topic string) *KafkaPublisher {
	writer := &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireOne,
	}
	slog.Info("Kafka事件发布已启用", "brokers", brokers, "topic", topic)
	return &KafkaPublisher{writer: writer, topic: topic, timeout: 5 * time.Second}
}

// Publish 发送事件
func (p *KafkaPublisher) Publish(ctx context.Context, evt *Event) error {
	payload, err := evt.Payload()
	if err != nil {
		return fmt.Errorf("序列化事件失败: %w", err)
	}

	msg := kafka.Message{
		Key:   []byte(evt.Period),
		Value: payload,
		Time:  evt.CreatedAt,
		Headers: []kafka.Header{
			{Key: "event_type", Value: []byte(evt.Type)},
		},
	}

	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("发送Kafka消息失败: %w", err)
	}
	slog.Debug("事件已发送到Kafka", "topic", p.topic, "type", evt.Type, "period", evt.Period)
	return nil
}

// Close 关闭生产者
func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}
