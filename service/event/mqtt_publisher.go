/*
 * @module service/event/mqtt_publisher
 * @description MQTT事件发布者，按事件类型发布到子主题
 * @architecture 事件驱动架构 - 发布者
 * @stateFlow 连接broker -> 事件 -> JSON -> Publish(topic/type) -> 等待确认
 * @rules 发布等待有超时，断线自动重连
 * @dependencies github.com/eclipse/paho.mqtt.golang
 * @refs event.go
 */

package event

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
)

// mqttClient mqtt.Client 的最小接口
type mqttClient interface {
	Publish(topic string, qos byte, retained bool, payload interface{}) mqtt.Token
	Disconnect(quiesce uint)
}

// MQTTOptions MQTT连接参数
type MQTTOptions struct {
	Broker   string
	ClientID string
	Topic    string
	QoS      byte
	Username string
	Password string
}

// MQTTPublisher MQTT发布者
type MQTTPublisher struct {
	client  mqttClient
	topic   string
	qos     byte
	timeout time.Duration
}

// NewMQTTPublisher 连接broker并创建发布者
func NewMQTTPublisher(opts MQTTOptions) (*MQTTPublisher, error) {
	clientOpts := mqtt.NewClientOptions()
	clientOpts.AddBroker(opts.Broker)
	clientOpts.SetClientID(opts.ClientID)
	clientOpts.SetConnectTimeout(10 * time.Second)
	clientOpts.SetAutoReconnect(true)
	if opts.Username != "" {
		clientOpts.SetUsername(opts.Username)
	}
	if opts.Password != "" {
		clientOpts.SetPassword(opts.Password)
	}
	clientOpts.SetConnectionLostHandler(func(_ mqtt.Client, err error) {
		slog.Warn("MQTT连接断开", "broker", opts.Broker, "error", err)
	})

	client := mqtt.NewClient(clientOpts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		return nil, fmt.Errorf("连接MQTT broker失败: %w", token.Error())
	}

	slog.Info("MQTT事件发布已启用", "broker", opts.Broker, "topic", opts.Topic)
	return newMQTTPublisher(client, opts.Topic, opts.QoS), nil
}

func newMQTTPublisher(client mqttClient, topic string, qos byte) *MQTTPublisher {
	return &MQTTPublisher{client: client, topic: topic, qos: qos, timeout: 5 * time.Second}
}

// TopicFor 事件对应的主题
func (p *MQTTPublisher) TopicFor(evt *Event) string {
	return p.topic + "/" + evt.Type
}

// Publish 发布事件
func (p *MQTTPublisher) Publish(ctx context.Context, evt *Event) error {
	payload, err := evt.Payload()
	if err != nil {
		return fmt.Errorf("序列化事件失败: %w", err)
	}

	token := p.client.Publish(p.TopicFor(evt), p.qos, false, payload)
	select {
	case <-token.Done():
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(p.timeout):
		return fmt.Errorf("MQTT发布超时: %s", p.TopicFor(evt))
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("MQTT发布失败: %w", err)
	}
	return nil
}

// Close 断开连接
func (p *MQTTPublisher) Close() error {
	p.client.Disconnect(250)
	return nil
}
