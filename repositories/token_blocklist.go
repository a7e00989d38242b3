package repositories

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

type RedisTokenBlocklist struct {
	redis *redis.Client
}

func NewRedisTokenBlocklist(redisClient *redis.Client) *RedisTokenBlocklist {
	return &RedisTokenBlocklist{redis: redisClient}
}

func revokedTokenKey(tokenID string) string {
	return fmt.Sprintf("auth:revoked:%s", tokenID)
}

func (r *RedisTokenBlocklist) Revoke(ctx context.Context, tokenID string, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	return r.redis.Set(ctx, revokedTokenKey(tokenID), 1, ttl).Err()
}

func (r *RedisTokenBlocklist) IsRevoked(ctx context.Context, tokenID string) (bool, error) {
	err := r.redis.Get(ctx, revokedTokenKey(tokenID)).Err()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// MemoryTokenBlocklist is used when no redis is configured (single instance only).
type MemoryTokenBlocklist struct {
	mu      sync.Mutex
	expires map[string]time.Time
	now     func() time.Time
}

func NewMemoryTokenBlocklist() *MemoryTokenBlocklist {
	return &MemoryTokenBlocklist{expires: map[string]time.Time{}, now: time.Now}
}

func (m *MemoryTokenBlocklist) Revoke(_ context.Context, tokenID string, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	now := m.now()
	for id, exp := range m.expires {
		if !exp.After(now) {
			delete(m.expires, id)
		}
	}
	m.expires[tokenID] = now.Add(ttl)
	return nil
}

func (m *MemoryTokenBlocklist) IsRevoked(_ context.Context, tokenID string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	exp, ok := m.expires[tokenID]
	return ok && exp.After(m.now()), nil
}
