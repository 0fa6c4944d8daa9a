package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/nikolayk812/storefront/internal/domain"
	"github.com/nikolayk812/storefront/internal/port"
	"github.com/redis/go-redis/v9"
)

const (
	DefaultTTL = 15 * time.Minute
	maxJitter  = 5 * time.Minute
)

// RedisCartCache keeps cart summaries under cart:{ownerID}.
// Entries expire after the base TTL plus up to five minutes of jitter.
type RedisCartCache struct {
	client  redis.Cmdable
	baseTTL time.Duration
}

func NewRedisCartCache(client redis.Cmdable, baseTTL time.Duration) *RedisCartCache {
	if baseTTL <= 0 {
		baseTTL = DefaultTTL
	}

	return &RedisCartCache{
		client:  client,
		baseTTL: baseTTL,
	}
}

func (c *RedisCartCache) Get(ctx context.Context, ownerID string) (domain.CartSummary, error) {
	data, err := c.client.Get(ctx, cacheKey(ownerID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return domain.CartSummary{}, port.ErrCacheMiss
	}
	if err != nil {
		return domain.CartSummary{}, fmt.Errorf("client.Get: %w", err)
	}

	var summary domain.CartSummary
	if err := json.Unmarshal(data, &summary); err != nil {
		return domain.CartSummary{}, fmt.Errorf("json.Unmarshal: %w", err)
	}

	return summary, nil
}

func (c *RedisCartCache) Set(ctx context.Context, ownerID string, summary domain.CartSummary) error {
	data, err := json.Marshal(summary)
	if err != nil {
		return fmt.Errorf("json.Marshal: %w", err)
	}

	ttl := c.baseTTL + rand.N(maxJitter)
	if err := c.client.Set(ctx, cacheKey(ownerID), data, ttl).Err(); err != nil {
		return fmt.Errorf("client.Set: %w", err)
	}

	return nil
}

func (c *RedisCartCache) Delete(ctx context.Context, ownerID string) error {
	if err := c.client.Del(ctx, cacheKey(ownerID)).Err(); err != nil {
		return fmt.Errorf("client.Del: %w", err)
	}

	return nil
}

func cacheKey(ownerID string) string {
	return fmt.Sprintf("cart:%s", ownerID)
}
