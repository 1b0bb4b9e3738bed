package scheduler

import (
	"context"
	"fmt"

	"trashtrack_backend/platform/config"

	"github.com/redis/go-redis/v9"
)

// RedisHealth pings the queue's Redis for the API health endpoint.
type RedisHealth struct {
	client *redis.Client
}

func NewRedisHealth(cfg config.SchedulerConfig) (*RedisHealth, error) {
	opt, err := redis.ParseURL(cfg.GetRedisURL())
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	if cfg.GetRedisTLSInsecure() && opt.TLSConfig != nil {
		opt.TLSConfig.InsecureSkipVerify = true
	}
	return &RedisHealth{client: redis.NewClient(opt)}, nil
}

func (h *RedisHealth) Name() string {
	return "redis"
}

func (h *RedisHealth) Ping(ctx context.Context) error {
	return h.client.Ping(ctx).Err()
}

func (h *RedisHealth) Close() error {
	return h.client.Close()
}
