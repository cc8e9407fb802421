package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Keys are namespaced under the widget API so counters never collide with the
// OTP keys sharing the same Redis instance.
const rateLimitPrefix = "widget:rl:"

// RateLimiter is a fixed-window counter backed by Redis. Each caller gets one
// counter per window; keys carry the window start so a counter can never leak
// into the next window even if its expiry is delayed.
type RateLimiter struct {
	client *Client
	limit  int64
	window time.Duration
}

// NewRateLimiter creates a limiter allowing requestsPerMinute plus burst
// requests in any one-minute window.
func NewRateLimiter(client *Client, requestsPerMinute, burst int) *RateLimiter {
	return &RateLimiter{
		client: client,
		limit:  int64(requestsPerMinute + burst),
		window: time.Minute,
	}
}

// Allow checks if a request should be allowed based on rate limits
// Returns (allowed, remaining, resetTime, error)
func (r *RateLimiter) Allow(ctx context.Context, key string) (bool, int, time.Time, error) {
	windowStart := time.Now().Truncate(r.window)
	windowEnd := windowStart.Add(r.window)
	fullKey := r.windowKey(key, windowStart)

	pipe := r.client.rdb.Pipeline()
	incrCmd := pipe.Incr(ctx, fullKey)
	// Twice the window so the counter survives long enough to serve reads
	// near the boundary, then disappears on its own.
	pipe.Expire(ctx, fullKey, 2*r.window)

	_, err := pipe.Exec(ctx)
	if err != nil && err != redis.Nil {
		return false, 0, time.Time{}, fmt.Errorf("failed to execute rate limit check: %w", err)
	}

	count := incrCmd.Val()
	remaining := int(r.limit - count)
	if remaining < 0 {
		remaining = 0
	}

	return count <= r.limit, remaining, windowEnd, nil
}

// Reset drops the counter for the current window.
func (r *RateLimiter) Reset(ctx context.Context, key string) error {
	windowStart := time.Now().Truncate(r.window)
	return r.client.rdb.Del(ctx, r.windowKey(key, windowStart)).Err()
}

func (r *RateLimiter) windowKey(key string, windowStart time.Time) string {
	return fmt.Sprintf("%s%s:%d", rateLimitPrefix, key, windowStart.Unix())
}
