package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/VK-RED/clobby/internal/domain"
	"github.com/VK-RED/clobby/internal/port"
)

var _ port.Cache = (*RedisCache)(nil)

// RedisCache serves depth snapshots so read traffic stays off the engine.
type RedisCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisCache(addr, password string, db int, ttl time.Duration) *RedisCache {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	return &RedisCache{
		client: rdb,
		ttl:    ttl,
	}
}

func key(market string) string { return "depth:" + market }

func (c *RedisCache) SetDepth(ctx context.Context, market string, snap *domain.DepthSnapshot) error {
	b, err := json.Marshal(snap)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, key(market), b, c.ttl).Err()
}

func (c *RedisCache) GetDepth(ctx context.Context, market string) (*domain.DepthSnapshot, error) {
	b, err := c.client.Get(ctx, key(market)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var snap domain.DepthSnapshot
	if err := json.Unmarshal(b, &snap); err != nil {
		return nil, err
	}
	return &snap, nil
}

func (c *RedisCache) Invalidate(ctx context.Context, market string) error {
	return c.client.Del(ctx, key(market)).Err()
}
