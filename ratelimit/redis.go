package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Redis is a fixed-window counter shared across every DA process pointed
// at the same instance: INCR the window's key, set its expiry the first
// time it is created, reject once the window's count exceeds limit.
type Redis struct {
	client  *redis.Client
	limit   int64
	window  time.Duration
	timeout time.Duration
	prefix  string
}

func NewRedis(client *redis.Client, limit int, window time.Duration) *Redis {
	return &Redis{client: client, limit: int64(limit), window: window, timeout: 2 * time.Second, prefix: "slpd:ratelimit:"}
}

// AllowCtx reports whether key may proceed in the current window.
func (r *Redis) AllowCtx(ctx context.Context, key string) (bool, error) {
	redisKey := r.prefix + key
	count, err := r.client.Incr(ctx, redisKey).Result()
	if err != nil {
		return false, fmt.Errorf("ratelimit: redis incr: %w", err)
	}
	if count == 1 {
		if err := r.client.Expire(ctx, redisKey, r.window).Err(); err != nil {
			return false, fmt.Errorf("ratelimit: redis expire: %w", err)
		}
	}
	return count <= r.limit, nil
}

// Fallback tries primary first; any Redis error (including an unreachable
// server) falls through to secondary rather than failing the request
// closed or open outright.
type Fallback struct {
	primary   *Redis
	secondary *Memory
	onError   func(error)
}

func NewFallback(primary *Redis, secondary *Memory, onError func(error)) *Fallback {
	return &Fallback{primary: primary, secondary: secondary, onError: onError}
}

func (f *Fallback) Allow(key string, now time.Time) bool {
	ctx, cancel := context.WithTimeout(context.Background(), f.primary.timeout)
	defer cancel()
	ok, err := f.primary.AllowCtx(ctx, key)
	if err != nil {
		if f.onError != nil {
			f.onError(err)
		}
		return f.secondary.Allow(key, now)
	}
	return ok
}
