package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"chatgraph/internal/domain/user"

	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"
)

// Cache key patterns:
// - user:{user_id} - profile cache, invalidated on profile update

// CacheConfig contains configuration for caching
type CacheConfig struct {
	UserTTL time.Duration // TTL for user cache (default 5m)
}

// DefaultCacheConfig returns sensible defaults
func DefaultCacheConfig() CacheConfig {
	return CacheConfig{
		UserTTL: 5 * time.Minute,
	}
}

// CacheStore handles caching in Redis
type CacheStore struct {
	client *goredis.Client
	config CacheConfig
}

// NewCacheStore creates a new cache store
func NewCacheStore(client *goredis.Client, config CacheConfig) *CacheStore {
	if config.UserTTL <= 0 {
		config.UserTTL = DefaultCacheConfig().UserTTL
	}
	return &CacheStore{
		client: client,
		config: config,
	}
}

func userKey(id uuid.UUID) string {
	return fmt.Sprintf("user:%s", id.String())
}

// GetUser retrieves a user profile. A cache miss returns (nil, nil).
func (c *CacheStore) GetUser(ctx context.Context, id uuid.UUID) (*user.User, error) {
	data, err := c.client.Get(ctx, userKey(id)).Bytes()
	if errors.Is(err, goredis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var u user.User
	if err := json.Unmarshal(data, &u); err != nil {
		return nil, err
	}
	return &u, nil
}

func (c *CacheStore) SetUser(ctx context.Context, u user.User) error {
	data, err := json.Marshal(u)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, userKey(u.ID), data, c.config.UserTTL).Err()
}

func (c *CacheStore) InvalidateUser(ctx context.Context, id uuid.UUID) error {
	return c.client.Del(ctx, userKey(id)).Err()
}
