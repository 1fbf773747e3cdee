package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/zhouzirui/shopmate/backend/internal/config"
)

// HandoffPayload is the pub/sub message sent when a visitor asks for a human
// agent. The support desk subscribes to the configured channel and pulls the
// transcript through the dashboard API.
type HandoffPayload struct {
	SessionID   string    `json:"sessionId"`
	Page        string    `json:"page,omitempty"`
	RequestedAt time.Time `json:"requestedAt"`
}

// RedisNotifier publishes handoff requests on a Redis channel.
type RedisNotifier struct {
	rdb     *redis.Client
	channel string
}

// NewRedisNotifier connects to Redis and verifies the connection.
func NewRedisNotifier(ctx context.Context, cfg config.NotifyConfig) (*RedisNotifier, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		return nil, fmt.Errorf("failed to ping redis: %w", err)
	}

	return &RedisNotifier{rdb: rdb, channel: cfg.Channel}, nil
}

// PublishHandoff notifies the support desk that a session wants a human.
func (n *RedisNotifier) PublishHandoff(ctx context.Context, payload HandoffPayload) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal handoff payload: %w", err)
	}
	if err := n.rdb.Publish(ctx, n.channel, data).Err(); err != nil {
		return fmt.Errorf("failed to publish handoff: %w", err)
	}
	return nil
}

// Close releases the Redis connection.
func (n *RedisNotifier) Close() error {
	return n.rdb.Close()
}
