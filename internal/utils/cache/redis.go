package cache

import (
	"Go-Receipt-Vault/internal/utils"
	"context"
	"encoding/json"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/rs/zerolog/log"
)

type (
	// Cache is a best-effort JSON cache. Every method degrades to a no-op
	// when Redis is not configured so callers never branch on availability.
	Cache interface {
		Get(ctx context.Context, key string, dest interface{}) bool
		Set(ctx context.Context, key string, value interface{}, ttl time.Duration)
	}

	redisCache struct {
		client *redis.Client
	}
)

func NewRedisCache() Cache {
	addr := utils.GetConfig("REDIS_ADDR")
	if addr == "" {
		return &redisCache{}
	}
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: utils.GetConfig("REDIS_PASSWORD"),
	})
	return &redisCache{client: client}
}

func (c *redisCache) Get(ctx context.Context, key string, dest interface{}) bool {
	if c.client == nil {
		return false
	}
	payload, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		return false
	}
	if err := json.Unmarshal(payload, dest); err != nil {
		log.Warn().Err(err).Str("key", key).Msg("cache entry unreadable, ignoring")
		return false
	}
	return true
}

func (c *redisCache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) {
	if c.client == nil {
		return
	}
	payload, err := json.Marshal(value)
	if err != nil {
		return
	}
	if err := c.client.Set(ctx, key, payload, ttl).Err(); err != nil {
		log.Warn().Err(err).Str("key", key).Msg("cache write failed")
	}
}
