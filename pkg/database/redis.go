package database

import (
	"context"
	"effisense-go/internal/config"
	"effisense-go/pkg/log"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
)

// RDB backs the session blacklist and the live relay. It stays nil when Redis is not configured.
var RDB *redis.Client

const redisPingTimeout = 5 * time.Second

// OpenRedis creates a client for cfg and checks it answers PING.
func OpenRedis(ctx context.Context, cfg config.RedisConfig) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, redisPingTimeout)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis at %s: %w", cfg.Addr, err)
	}
	return client, nil
}

// InitRedis sets RDB or exits when Redis does not answer.
func InitRedis(cfg config.RedisConfig) {
	client, err := OpenRedis(context.Background(), cfg)
	if err != nil {
		log.Fatal("failed to connect to redis", err)
	}
	RDB = client
	log.Infow("redis connected", "addr", cfg.Addr, "db", cfg.DB)
}
