package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/microblog/user-api/internal/core/domain"
)

const detailTTL = 10 * time.Minute

// UserCache is a read-through cache for user detail lookups.
// Key format: user:detail:<id>. Entries expire after detailTTL; users are
// immutable once committed, so no invalidation path is needed.
type UserCache struct {
	client *redis.Client
}

// NewUserCache creates a UserCache wrapping the given Redis client.
func NewUserCache(client *redis.Client) *UserCache {
	return &UserCache{client: client}
}

// Get returns the cached user, or (nil, nil) on a miss.
func (c *UserCache) Get(ctx context.Context, id string) (*domain.User, error) {
	raw, err := c.client.Get(ctx, c.key(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("user cache get: %w", err)
	}

	user := &domain.User{}
	if err := json.Unmarshal(raw, user); err != nil {
		return nil, fmt.Errorf("user cache decode: %w", err)
	}
	return user, nil
}

// Set stores the user under its id (expires after detailTTL).
func (c *UserCache) Set(ctx context.Context, user *domain.User) error {
	raw, err := json.Marshal(user)
	if err != nil {
		return fmt.Errorf("user cache encode: %w", err)
	}
	if err := c.client.Set(ctx, c.key(user.ID), raw, detailTTL).Err(); err != nil {
		return fmt.Errorf("user cache set: %w", err)
	}
	return nil
}

func (c *UserCache) key(id string) string {
	return "user:detail:" + id
}
