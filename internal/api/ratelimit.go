package api

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// RateLimitStore counts requests per client and endpoint inside a fixed
// window. The store is injected into the middleware rather than held in
// package scope so tests and deployments choose their own backend.
type RateLimitStore interface {
	// Incr increments the counter for key within the window and returns
	// the new count.
	Incr(ctx context.Context, key string, window time.Duration) (int, error)
}

// MemoryRateLimitStore is the in-process RateLimitStore.
type MemoryRateLimitStore struct {
	mu      sync.Mutex
	entries map[string]*rateEntry
	now     func() time.Time
}

type rateEntry struct {
	count     int
	windowEnd time.Time
}

// NewMemoryRateLimitStore creates an empty in-memory store.
func NewMemoryRateLimitStore() *MemoryRateLimitStore {
	return &MemoryRateLimitStore{
		entries: make(map[string]*rateEntry),
		now:     time.Now,
	}
}

// Incr increments the counter for key, resetting it when its window has
// passed. Stale entries are dropped opportunistically.
func (s *MemoryRateLimitStore) Incr(ctx context.Context, key string, window time.Duration) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	entry, ok := s.entries[key]
	if !ok || now.After(entry.windowEnd) {
		s.entries[key] = &rateEntry{count: 1, windowEnd: now.Add(window)}
		if len(s.entries) > 10000 {
			for k, e := range s.entries {
				if now.After(e.windowEnd) {
					delete(s.entries, k)
				}
			}
		}
		return 1, nil
	}
	entry.count++
	return entry.count, nil
}

// RedisRateLimitStore is the shared RateLimitStore for multi-instance
// deployments.
type RedisRateLimitStore struct {
	client *redis.Client
}

// NewRedisRateLimitStore creates a Redis-backed store.
func NewRedisRateLimitStore(client *redis.Client) *RedisRateLimitStore {
	return &RedisRateLimitStore{client: client}
}

// Incr increments the counter, setting the expiry when the key is new.
func (s *RedisRateLimitStore) Incr(ctx context.Context, key string, window time.Duration) (int, error) {
	redisKey := "ratelimit:" + key
	count, err := s.client.Incr(ctx, redisKey).Result()
	if err != nil {
		return 0, fmt.Errorf("rate limit incr: %w", err)
	}
	if count == 1 {
		if err := s.client.Expire(ctx, redisKey, window).Err(); err != nil {
			return 0, fmt.Errorf("rate limit expire: %w", err)
		}
	}
	return int(count), nil
}
