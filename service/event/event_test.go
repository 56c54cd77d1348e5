package event

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// mockWriter kafka 写入 mock
type mockWriter struct {
	mock.Mock
}

func (m *mockWriter) WriteMessages(ctx context.Context, msgs ...kafka.Message) error {
	args := m.Called(msgs)
	return args.Error(0)
}

func (m *mockWriter) Close() error {
	return m.Called().Error(0)
}

// doneToken 已完成的 MQTT token
type doneToken struct {
	err error
}

func (t *doneToken) Wait() bool                     { return true }
func (t *doneToken) WaitTimeout(time.Duration) bool { return true }
func (t *doneToken) Error() error                   { return t.err }
func (t *doneToken) Done() <-chan struct{} {
	ch := make(chan struct{})
	close(ch)
	return ch
}

type fakeMQTTClient struct {
	topics   []string
	payloads [][]byte
	err      error
	closed   bool
}

func (c *fakeMQTTClient) Publish(topic string, qos byte, retained bool, payload interface{}) mqtt.Token {
	c.topics = append(c.topics, topic)
	c.payloads = append(c.payloads, payload.([]byte))
	return &doneToken{err: c.err}
}

func (c *fakeMQTTClient) Disconnect(quiesce uint) { c.closed = true }

func TestKafkaPublisher_Publish(t *testing.T) {
	w := new(mockWriter)
	w.On("WriteMessages", mock.MatchedBy(func(msgs []kafka.Message) bool {
		if len(msgs) != 1 {
			return false
		}
		var evt Event
		if err := json.Unmarshal(msgs[0].Value, &evt); err != nil {
			return false
		}
		return string(msgs[0].Key) == "2025_01" && evt.Type == TypeLeaderboardRefreshed
	})).Return(nil).Once()

	p := &KafkaPublisher{writer: w, topic: "events", timeout: time.Second}
	err := p.Publish(context.Background(), NewEvent(TypeLeaderboardRefreshed, "2025_01", map[string]interface{}{"rows": 3}))
	require.NoError(t, err)
	w.AssertExpectations(t)
}

func TestKafkaPublisher_WriteError(t *testing.T) {
	w := new(mockWriter)
	w.On("WriteMessages", mock.Anything).Return(errors.New("broker down"))

	p := &KafkaPublisher{writer: w, topic: "events", timeout: time.Second}
	err := p.Publish(context.Background(), NewEvent(TypeScoresUpdated, "2025_01", nil))
	assert.Error(t, err)
}

func TestMQTTPublisher_Publish(t *testing.T) {
	client := &fakeMQTTClient{}
	p := newMQTTPublisher(client, "raotm", 1)

	evt := NewEvent(TypeScoresReset, "2025_02", nil)
	require.NoError(t, p.Publish(context.Background(), evt))
	assert.Equal(t, []string{"raotm/scores.reset"}, client.topics)

	var decoded Event
	require.NoError(t, json.Unmarshal(client.payloads[0], &decoded))
	assert.Equal(t, evt.ID, decoded.ID)

	client.err = errors.New("not connected")
	assert.Error(t, p.Publish(context.Background(), evt))

	require.NoError(t, p.Close())
	assert.True(t, client.closed)
}

func TestHub_Broadcast(t *testing.T) {
	h := NewHub(1)
	a := h.Subscribe("10.0.0.1")
	b := h.Subscribe("10.0.0.2")
	assert.Equal(t, 2, h.Count())

	first := NewEvent(TypeScoresUpdated, "2025_01", nil)
	require.NoError(t, h.Publish(context.Background(), first))
	assert.Same(t, first, <-a.Events)

	// b 的队列已满，第二个事件被丢弃而不阻塞
	second := NewEvent(TypeScoresUpdated, "2025_01", nil)
	require.NoError(t, h.Publish(context.Background(), second))
	assert.Same(t, first, <-b.Events)
	assert.Same(t, second, <-a.Events)
	assert.Len(t, b.Events, 0)

	h.Unsubscribe(a.ID)
	_, open := <-a.Done
	assert.False(t, open)
	assert.Equal(t, 1, h.Count())

	require.NoError(t, h.Close())
	assert.Equal(t, 0, h.Count())
}

func TestMultiPublisher(t *testing.T) {
	hub := NewHub(4)
	sub := hub.Subscribe("local")

	w := new(mockWriter)
	w.On("WriteMessages", mock.Anything).Return(errors.New("broker down"))
	w.On("Close").Return(nil)
	kp := &KafkaPublisher{writer: w, topic: "events", timeout: time.Second}

	m := NewMultiPublisher(hub, nil, kp, NoopPublisher{})
	err := m.Publish(context.Background(), NewEvent(TypeLeaderboardRefreshed, "2025_01", nil))
	assert.Error(t, err, "Kafka失败需要汇总返回")
	assert.Len(t, sub.Events, 1, "其他发布者不受影响")

	assert.NoError(t, m.Close())
	w.AssertCalled(t, "Close")
}
