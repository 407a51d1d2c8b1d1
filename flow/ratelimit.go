package flow

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// RateLimiter limits how often a key may act within a window. Used to
// throttle magic-link issuance per recipient.
type RateLimiter interface {
	// Allow reports whether the action under key is within limit for the
	// window, recording the attempt if so.
	Allow(ctx context.Context, key string, limit int, window time.Duration) (bool, error)

	// Reset clears the counter for key.
	Reset(ctx context.Context, key string) error
}

// MemoryRateLimiter is a sliding-window limiter for single-process
// deployments.
type MemoryRateLimiter struct {
	mu       sync.Mutex
	attempts map[string][]time.Time
}

func NewMemoryRateLimiter() *MemoryRateLimiter {
	return &MemoryRateLimiter{attempts: make(map[string][]time.Time)}
}

func (m *MemoryRateLimiter) Allow(ctx context.Context, key string, limit int, window time.Duration) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := time.Now()
	cutoff := now.Add(-window)
	m.prune(cutoff)

	kept := m.attempts[key][:0]
	for _, t := range m.attempts[key] {
		if t.After(cutoff) {
			kept = append(kept, t)
		}
	}

	if len(kept) >= limit {
		m.attempts[key] = kept
		return false, nil
	}

	m.attempts[key] = append(kept, now)
	return true, nil
}

// prune drops keys whose attempts have all aged out of the window, so the
// map does not retain every recipient ever seen. Attempts are appended in
// order, so the newest one is last.
func (m *MemoryRateLimiter) prune(cutoff time.Time) {
	for key, attempts := range m.attempts {
		if len(attempts) == 0 || !attempts[len(attempts)-1].After(cutoff) {
			delete(m.attempts, key)
		}
	}
}

func (m *MemoryRateLimiter) Reset(ctx context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.attempts, key)
	return nil
}

// RedisRateLimiter is a sliding-window limiter backed by Redis, for
// deployments with more than one process.
type RedisRateLimiter struct {
	client *redis.Client
	prefix string
}

func NewRedisRateLimiter(client *redis.Client, prefix string) *RedisRateLimiter {
	if prefix == "" {
		prefix = "journal:ratelimit:"
	}
	return &RedisRateLimiter{client: client, prefix: prefix}
}

// Lua keeps the remove-count-add sequence atomic across clients.
var allowScript = redis.NewScript(`
	local key = KEYS[1]
	local now = tonumber(ARGV[1])
	local window_start = tonumber(ARGV[2])
	local limit = tonumber(ARGV[3])
	local window_ms = tonumber(ARGV[4])

	redis.call('ZREMRANGEBYSCORE', key, '-inf', window_start)
	local count = redis.call('ZCARD', key)
	if count >= limit then
		return 0
	end
	redis.call('ZADD', key, now, now)
	redis.call('PEXPIRE', key, window_ms)
	return 1
`)

func (r *RedisRateLimiter) Allow(ctx context.Context, key string, limit int, window time.Duration) (bool, error) {
	now := time.Now()
	result, err := allowScript.Run(ctx, r.client, []string{r.prefix + key},
		now.UnixMilli(),
		now.Add(-window).UnixMilli(),
		limit,
		window.Milliseconds(),
	).Result()
	if err != nil {
		return false, fmt.Errorf("redis ratelimit: %w", err)
	}
	allowed, ok := result.(int64)
	if !ok {
		return false, fmt.Errorf("redis ratelimit: unexpected result type %T", result)
	}
	return allowed == 1, nil
}

func (r *RedisRateLimiter) Reset(ctx context.Context, key string) error {
	if err := r.client.Del(ctx, r.prefix+key).Err(); err != nil {
		return fmt.Errorf("redis ratelimit: reset: %w", err)
	}
	return nil
}
