// Package summary stores materialized dashboard summaries in Redis.
// Summaries stay until a lifecycle write invalidates them; a TTL bounds
// staleness when an invalidation is lost.
package summary

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/lllypuk/gigwork/internal/domain/uuid"
)

const (
	defaultKeyPrefix = "gigwork:summary:"
	defaultTTL       = 24 * time.Hour
)

// RedisCache is a Redis-backed summary cache. It serves the dashboard
// read path and the invalidation hook on status changes.
type RedisCache struct {
	client    *redis.Client
	keyPrefix string
	ttl       time.Duration
}

// Config contains configuration for RedisCache.
type Config struct {
	Client    *redis.Client
	KeyPrefix string
	TTL       time.Duration
}

// NewRedisCache creates a Redis-backed summary cache.
func NewRedisCache(cfg Config) *RedisCache {
	keyPrefix := cfg.KeyPrefix
	if keyPrefix == "" {
		keyPrefix = defaultKeyPrefix
	}
	ttl := cfg.TTL
	if ttl == 0 {
		ttl = defaultTTL
	}

	return &RedisCache{
		client:    cfg.Client,
		keyPrefix: keyPrefix,
		ttl:       ttl,
	}
}

func (c *RedisCache) clientKey(userID uuid.UUID) string {
	return c.keyPrefix + "client:" + userID.String()
}

func (c *RedisCache) freelancerKey(userID uuid.UUID) string {
	return c.keyPrefix + "freelancer:" + userID.String()
}

// GetClient returns the cached client summary payload, or nil when absent.
func (c *RedisCache) GetClient(ctx context.Context, userID uuid.UUID) ([]byte, error) {
	return c.get(ctx, c.clientKey(userID))
}

// SetClient stores the client summary payload.
func (c *RedisCache) SetClient(ctx context.Context, userID uuid.UUID, payload []byte) error {
	return c.set(ctx, c.clientKey(userID), payload)
}

// GetFreelancer returns the cached freelancer summary payload, or nil when
// absent.
func (c *RedisCache) GetFreelancer(ctx context.Context, userID uuid.UUID) ([]byte, error) {
	return c.get(ctx, c.freelancerKey(userID))
}

// SetFreelancer stores the freelancer summary payload.
func (c *RedisCache) SetFreelancer(ctx context.Context, userID uuid.UUID, payload []byte) error {
	return c.set(ctx, c.freelancerKey(userID), payload)
}

// Invalidate drops both summaries for a user. Lifecycle writes don't know
// which side of the marketplace the user is on, so both keys go.
func (c *RedisCache) Invalidate(ctx context.Context, userID uuid.UUID) error {
	if userID.IsZero() {
		return errors.New("userID is required")
	}

	err := c.client.Del(ctx, c.clientKey(userID), c.freelancerKey(userID)).Err()
	if err != nil {
		return fmt.Errorf("failed to invalidate summary: %w", err)
	}

	return nil
}

func (c *RedisCache) get(ctx context.Context, key string) ([]byte, error) {
	payload, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get summary: %w", err)
	}
	return payload, nil
}

func (c *RedisCache) set(ctx context.Context, key string, payload []byte) error {
	if err := c.client.Set(ctx, key, payload, c.ttl).Err(); err != nil {
		return fmt.Errorf("failed to set summary: %w", err)
	}
	return nil
}
