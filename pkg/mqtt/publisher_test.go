package mqtt

import (
	"context"
	"effisense-go/internal/config"
	"effisense-go/internal/model"
	"encoding/json"
	"errors"
	"testing"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type doneToken struct {
	err  error
	done chan struct{}
}

func newDoneToken(err error) *doneToken {
	t := &doneToken{err: err, done: make(chan struct{})}
	close(t.done)
	return t
}

func (t *doneToken) Wait() bool                     { return true }
func (t *doneToken) WaitTimeout(time.Duration) bool { return true }
func (t *doneToken) Done() <-chan struct{}          { return t.done }
func (t *doneToken) Error() error                   { return t.err }

type fakeClient struct {
	topic   string
	qos     byte
	payload []byte
	err     error
}

func (f *fakeClient) Publish(topic string, qos byte, _ bool, payload interface{}) mqtt.Token {
	f.topic = topic
	f.qos = qos
	f.payload = payload.([]byte)
	return newDoneToken(f.err)
}

func (f *fakeClient) IsConnected() bool { return true }
func (f *fakeClient) Disconnect(uint)   {}

func TestNew_Disabled(t *testing.T) {
	p, err := New(config.MQTTConfig{Enabled: false})
	require.NoError(t, err)
	assert.Nil(t, p)
}

func TestNew_MissingBroker(t *testing.T) {
	_, err := New(config.MQTTConfig{Enabled: true})
	assert.Error(t, err)
}

func TestNew_UnreachableBrokerReturnsError(t *testing.T) {
	prev := connectTimeout
	connectTimeout = 2 * time.Second
	t.Cleanup(func() { connectTimeout = prev })

	type result struct {
		p   *Publisher
		err error
	}
	done := make(chan result, 1)
	go func() {
		p, err := New(config.MQTTConfig{Enabled: true, Broker: "127.0.0.1:1"})
		done <- result{p, err}
	}()

	select {
	case r := <-done:
		assert.Nil(t, r.p)
		assert.Error(t, r.err)
	case <-time.After(10 * time.Second):
		t.Fatal("New did not return for an unreachable broker")
	}
}

func TestPublishUsageCreated(t *testing.T) {
	fc := &fakeClient{}
	p := &Publisher{client: fc, topicPrefix: "house"}

	event := model.UsageEvent{UsageID: 7, ApplianceName: "Oven", EnergyUsed: 3.5}
	require.NoError(t, p.PublishUsageCreated(context.Background(), event))

	assert.Equal(t, "house/usage/created", fc.topic)
	assert.Equal(t, byte(1), fc.qos)
	var decoded model.UsageEvent
	require.NoError(t, json.Unmarshal(fc.payload, &decoded))
	assert.Equal(t, uint(7), decoded.UsageID)
}

func TestPublishUsageCreated_BrokerError(t *testing.T) {
	boom := errors.New("not authorized")
	p := &Publisher{client: &fakeClient{err: boom}, topicPrefix: "house"}

	err := p.PublishUsageCreated(context.Background(), model.UsageEvent{UsageID: 1})
	assert.ErrorIs(t, err, boom)
}
