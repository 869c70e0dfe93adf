package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/Rrens/smart-assistant/internal/config"
	"github.com/redis/go-redis/v9"
)

// RedisBackend stores values in Redis under a key prefix
type RedisBackend struct {
	rdb    *redis.Client
	prefix string
}

// NewRedisBackend connects to Redis and verifies the connection
func NewRedisBackend(cfg config.RedisConfig) (*RedisBackend, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr(),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	if err := rdb.Ping(context.Background()).Err(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return NewRedisBackendFromClient(rdb, cfg.Prefix), nil
}

// NewRedisBackendFromClient wraps an existing client
func NewRedisBackendFromClient(rdb *redis.Client, prefix string) *RedisBackend {
	return &RedisBackend{rdb: rdb, prefix: prefix}
}

func (b *RedisBackend) Get(ctx context.Context, key string) (string, bool, error) {
	value, err := b.rdb.Get(ctx, b.prefix+key).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to get key: %w", err)
	}
	return value, true, nil
}

func (b *RedisBackend) Set(ctx context.Context, key, value string) error {
	if err := b.rdb.Set(ctx, b.prefix+key, value, 0).Err(); err != nil {
		return fmt.Errorf("failed to set key: %w", err)
	}
	return nil
}

func (b *RedisBackend) Remove(ctx context.Context, key string) error {
	if err := b.rdb.Del(ctx, b.prefix+key).Err(); err != nil {
		return fmt.Errorf("failed to remove key: %w", err)
	}
	return nil
}

// Close closes the Redis connection
func (b *RedisBackend) Close() error {
	return b.rdb.Close()
}
