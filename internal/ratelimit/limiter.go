package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	defaultLimit  = 10
	defaultWindow = time.Minute
)

// Limiter is a fixed-window per-IP rate limiter backed by Redis. Keys are
// scoped by purpose so login and signup count separately.
type Limiter struct {
	client *redis.Client
	limit  int64
	window time.Duration
}

func NewLimiter(client *redis.Client) *Limiter {
	return &Limiter{
		client: client,
		limit:  defaultLimit,
		window: defaultWindow,
	}
}

// Allow records one request for the ip/purpose pair and reports whether it
// is still within the window's budget.
func (l *Limiter) Allow(ctx context.Context, ip, purpose string) (bool, error) {
	key := fmt.Sprintf("ratelimit:%s:%s", purpose, ip)

	count, err := l.client.Incr(ctx, key).Result()
	if err != nil {
		return false, fmt.Errorf("failed to increment rate limit counter: %w", err)
	}

	// First hit opens the window
	if count == 1 {
		if err := l.client.Expire(ctx, key, l.window).Err(); err != nil {
			return false, fmt.Errorf("failed to set rate limit window: %w", err)
		}
	}

	return count <= l.limit, nil
}
