package kafka

import (
	"context"
	"effisense-go/internal/config"
	"effisense-go/internal/model"
	"encoding/json"
	"errors"
	"testing"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeWriter struct {
	msgs []kafka.Message
	err  error
}

func (f *fakeWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	if f.err != nil {
		return f.err
	}
	f.msgs = append(f.msgs, msgs...)
	return nil
}

func (f *fakeWriter) Close() error { return nil }

func TestNewUsageEventWriter_NoBrokers(t *testing.T) {
	assert.Nil(t, NewUsageEventWriter(config.KafkaConfig{Brokers: "  ", Topic: "usages"}))
}

func TestPublishUsageCreated_KeyAndPayload(t *testing.T) {
	fw := &fakeWriter{}
	w := &UsageEventWriter{writer: fw, topic: "usages"}

	event := model.UsageEvent{UsageID: 42, ApplianceName: "Kettle", HomeName: "Flat", EnergyUsed: 1.25, UsageFrequency: model.FrequencyOften}
	require.NoError(t, w.PublishUsageCreated(context.Background(), event))
	require.Len(t, fw.msgs, 1)

	assert.Equal(t, "42", string(fw.msgs[0].Key))
	var decoded model.UsageEvent
	require.NoError(t, json.Unmarshal(fw.msgs[0].Value, &decoded))
	assert.Equal(t, event, decoded)
}

func TestPublishUsageCreated_WrapsError(t *testing.T) {
	boom := errors.New("broker down")
	w := &UsageEventWriter{writer: &fakeWriter{err: boom}, topic: "usages"}

	err := w.PublishUsageCreated(context.Background(), model.UsageEvent{UsageID: 1})
	assert.ErrorIs(t, err, boom)
}
