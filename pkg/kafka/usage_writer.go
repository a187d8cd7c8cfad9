// Package kafka streams usage events to a Kafka topic for downstream consumers.
package kafka

import (
	"context"
	"effisense-go/internal/config"
	"effisense-go/internal/model"
	"effisense-go/pkg/log"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/segmentio/kafka-go"
)

// messageWriter is the part of *kafka.Writer the sink needs.
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// UsageEventWriter publishes "usage created" events, keyed by usage id.
type UsageEventWriter struct {
	writer messageWriter
	topic  string
}

// NewUsageEventWriter returns nil when no brokers are configured.
func NewUsageEventWriter(cfg config.KafkaConfig) *UsageEventWriter {
	if strings.TrimSpace(cfg.Brokers) == "" {
		return nil
	}
	brokers := strings.Split(cfg.Brokers, ",")
	for i := range brokers {
		brokers[i] = strings.TrimSpace(brokers[i])
	}
	w := &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        cfg.Topic,
		Balancer:     &kafka.Hash{},
		BatchTimeout: 50 * time.Millisecond,
		RequiredAcks: kafka.RequireOne,
	}
	log.Infof("kafka usage event writer ready, topic '%s'", cfg.Topic)
	return &UsageEventWriter{writer: w, topic: cfg.Topic}
}

// PublishUsageCreated writes event as JSON.
func (w *UsageEventWriter) PublishUsageCreated(ctx context.Context, event model.UsageEvent) error {
	value, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("encode usage event: %w", err)
	}
	err = w.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(strconv.FormatUint(uint64(event.UsageID), 10)),
		Value: value,
		Headers: []kafka.Header{
			{Key: "type", Value: []byte("usage.created")},
		},
	})
	if err != nil {
		return fmt.Errorf("kafka write to %s: %w", w.topic, err)
	}
	return nil
}

// Close flushes pending messages and releases the connection.
func (w *UsageEventWriter) Close() error {
	return w.writer.Close()
}
