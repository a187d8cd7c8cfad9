package live

import (
	"context"
	"effisense-go/internal/model"
	"effisense-go/pkg/log"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/go-redis/redis/v8"
)

// RedisRelay publishes events on a Redis channel and forwards everything received
// on that channel to the local hub, so sessions on every instance see every event.
type RedisRelay struct {
	rdb     *redis.Client
	channel string
	hub     *Hub
}

// NewRedisRelay creates a relay for channel.
func NewRedisRelay(rdb *redis.Client, channel string, hub *Hub) *RedisRelay {
	return &RedisRelay{rdb: rdb, channel: channel, hub: hub}
}

// PublishUsageCreated implements Publisher.
func (r *RedisRelay) PublishUsageCreated(ctx context.Context, event model.UsageEvent) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("encode usage event: %w", err)
	}
	if err := r.rdb.Publish(ctx, r.channel, payload).Err(); err != nil {
		return fmt.Errorf("redis publish: %w", err)
	}
	return nil
}

// Serve subscribes to the channel until ctx is cancelled. It satisfies suture.Service.
func (r *RedisRelay) Serve(ctx context.Context) error {
	sub := r.rdb.Subscribe(ctx, r.channel)
	defer sub.Close()

	if _, err := sub.Receive(ctx); err != nil {
		return fmt.Errorf("redis subscribe %q: %w", r.channel, err)
	}
	log.Infof("live relay subscribed to redis channel %s", r.channel)

	ch := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case msg, ok := <-ch:
			if !ok {
				return errors.New("redis subscription closed")
			}
			if err := r.deliver(msg.Payload); err != nil {
				log.Warnw("live relay: dropping malformed event", "error", err)
			}
		}
	}
}

func (r *RedisRelay) deliver(payload string) error {
	var event model.UsageEvent
	if err := json.Unmarshal([]byte(payload), &event); err != nil {
		return err
	}
	r.hub.Broadcast(Message{Type: MessageTypeUsageUpdate, Data: event})
	return nil
}

func (r *RedisRelay) String() string {
	return "live-redis-relay:" + r.channel
}
