package middleware

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	apierrors "github.com/kdt5-3rd/kdt5-3rd-back/internal/errors"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

// RateLimitStore counts hits per key inside fixed windows.
type RateLimitStore interface {
	// Hit increments the counter for key and returns the new count and the
	// time left in the current window.
	Hit(ctx context.Context, key string, window time.Duration) (int64, time.Duration, error)
}

type memoryCounter struct {
	count   int64
	resetAt time.Time
}

// MemoryStore keeps counters in process memory.
type MemoryStore struct {
	mu       sync.Mutex
	counters map[string]*memoryCounter
	now      func() time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{counters: make(map[string]*memoryCounter), now: time.Now}
}

func (s *MemoryStore) Hit(_ context.Context, key string, window time.Duration) (int64, time.Duration, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	counter, ok := s.counters[key]
	if !ok || !now.Before(counter.resetAt) {
		counter = &memoryCounter{resetAt: now.Add(window)}
		s.counters[key] = counter
		s.sweep(now)
	}
	counter.count++
	return counter.count, counter.resetAt.Sub(now), nil
}

// sweep drops expired counters so idle clients do not accumulate.
func (s *MemoryStore) sweep(now time.Time) {
	for key, counter := range s.counters {
		if !now.Before(counter.resetAt) {
			delete(s.counters, key)
		}
	}
}

// RedisStore shares counters between instances.
type RedisStore struct {
	client redis.Cmdable
	prefix string
}

func NewRedisStore(client redis.Cmdable) *RedisStore {
	return &RedisStore{client: client, prefix: "ratelimit:"}
}

func (s *RedisStore) Hit(ctx context.Context, key string, window time.Duration) (int64, time.Duration, error) {
	redisKey := s.prefix + key

	count, err := s.client.Incr(ctx, redisKey).Result()
	if err != nil {
		return 0, 0, fmt.Errorf("failed to increment rate counter: %w", err)
	}
	if count == 1 {
		if err := s.client.Expire(ctx, redisKey, window).Err(); err != nil {
			return 0, 0, fmt.Errorf("failed to set rate window: %w", err)
		}
		return count, window, nil
	}

	ttl, err := s.client.TTL(ctx, redisKey).Result()
	if err != nil {
		return 0, 0, fmt.Errorf("failed to read rate window: %w", err)
	}
	if ttl < 0 {
		// key lost its expiry; start a new window
		if err := s.client.Expire(ctx, redisKey, window).Err(); err != nil {
			return 0, 0, fmt.Errorf("failed to set rate window: %w", err)
		}
		ttl = window
	}
	return count, ttl, nil
}

// RateLimit allows max requests per client IP per window. Store failures let
// the request through.
func RateLimit(store RateLimitStore, max int, window time.Duration, log logrus.FieldLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		count, ttl, err := store.Hit(c.Request.Context(), c.ClientIP(), window)
		if err != nil {
			log.WithError(err).Warn("rate limit store unavailable")
			c.Next()
			return
		}

		remaining := int64(max) - count
		if remaining < 0 {
			remaining = 0
		}
		c.Header("X-RateLimit-Limit", strconv.Itoa(max))
		c.Header("X-RateLimit-Remaining", strconv.FormatInt(remaining, 10))

		if count > int64(max) {
			c.Header("Retry-After", strconv.Itoa(int((ttl+time.Second-1)/time.Second)))
			apierrors.TooManyRequests(c, "")
			return
		}
		c.Next()
	}
}
