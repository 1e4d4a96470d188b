package redis

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

const rateLimitPrefix = "chat-with-data:ratelimit:"

// Decision is the outcome of one rate limit check
type Decision struct {
	Allowed   bool
	Remaining int
	ResetAt   time.Time
}

// RateLimiter is a fixed one-minute window counter per key
type RateLimiter struct {
	client            *Client
	requestsPerMinute int
	burst             int
}

// NewRateLimiter creates a new rate limiter
func NewRateLimiter(client *Client, requestsPerMinute, burst int) *RateLimiter {
	return &RateLimiter{
		client:            client,
		requestsPerMinute: requestsPerMinute,
		burst:             burst,
	}
}

// Allow counts a request against key and reports whether it fits the
// current wall-clock minute
func (r *RateLimiter) Allow(ctx context.Context, key string) (Decision, error) {
	fullKey, windowEnd := windowKey(key, time.Now())

	pipe := r.client.rdb.Pipeline()
	incrCmd := pipe.Incr(ctx, fullKey)
	pipe.ExpireAt(ctx, fullKey, windowEnd)

	if _, err := pipe.Exec(ctx); err != nil && err != redis.Nil {
		return Decision{}, fmt.Errorf("failed to execute rate limit check: %w", err)
	}

	return decide(incrCmd.Val(), r.requestsPerMinute+r.burst, windowEnd), nil
}

// windowKey buckets key by the minute containing now and returns when that
// bucket closes
func windowKey(key string, now time.Time) (string, time.Time) {
	start := now.Truncate(time.Minute)
	return rateLimitPrefix + key + ":" + strconv.FormatInt(start.Unix(), 10), start.Add(time.Minute)
}

func decide(count int64, limit int, resetAt time.Time) Decision {
	remaining := limit - int(count)
	if remaining < 0 {
		remaining = 0
	}
	return Decision{
		Allowed:   count <= int64(limit),
		Remaining: remaining,
		ResetAt:   resetAt,
	}
}
