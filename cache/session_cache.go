package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const sessionKey = "session:%s" // String: jti -> uid

// SessionCache stores live session token ids in Redis. An entry expires with
// its token, and deleting it revokes the token early.
type SessionCache struct {
	client *redis.Client
}

// NewSessionCache creates a session cache on client.
func NewSessionCache(client *redis.Client) *SessionCache {
	return &SessionCache{client: client}
}

// GetSessionKey returns the Redis key of a token id.
func GetSessionKey(jti string) string {
	return fmt.Sprintf(sessionKey, jti)
}

// Save records jti as live for ttl.
func (c *SessionCache) Save(ctx context.Context, jti, uid string, ttl time.Duration) error {
	if c.client == nil {
		return fmt.Errorf("Redis client not initialized")
	}
	if err := c.client.Set(ctx, GetSessionKey(jti), uid, ttl).Err(); err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}
	return nil
}

// Owner returns the uid a live jti belongs to, or "" when it is not live.
func (c *SessionCache) Owner(ctx context.Context, jti string) (string, error) {
	if c.client == nil {
		return "", fmt.Errorf("Redis client not initialized")
	}
	uid, err := c.client.Get(ctx, GetSessionKey(jti)).Result()
	if errors.Is(err, redis.Nil) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to get session: %w", err)
	}
	return uid, nil
}

// Revoke deletes jti. Revoking an unknown jti is not an error.
func (c *SessionCache) Revoke(ctx context.Context, jti string) error {
	if c.client == nil {
		return fmt.Errorf("Redis client not initialized")
	}
	if err := c.client.Del(ctx, GetSessionKey(jti)).Err(); err != nil {
		return fmt.Errorf("failed to revoke session: %w", err)
	}
	return nil
}
