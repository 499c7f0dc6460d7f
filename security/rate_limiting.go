package security

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/pocketbase/pocketbase/core"
	"github.com/redis/go-redis/v9"
)

type RateLimiter struct {
	redis  *redis.Client
	limit  int
	window time.Duration
}

func NewRateLimiter(redisClient *redis.Client, limit int, window time.Duration) *RateLimiter {
	return &RateLimiter{redis: redisClient, limit: limit, window: window}
}

// hit counts one request for the identifier and reports whether it is
// still inside the limit. Redis being down never blocks traffic; the
// limiter fails open.
func (r *RateLimiter) hit(ctx context.Context, identifier string) bool {
	key := fmt.Sprintf("ratelimit:%s", identifier)

	count, err := r.redis.Incr(ctx, key).Result()
	if err != nil {
		return true
	}
	if count == 1 {
		r.redis.Expire(ctx, key, r.window)
	}
	return count <= int64(r.limit)
}

// Middleware rate limits by client IP across all portal routes.
func (r *RateLimiter) Middleware() func(e *core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		if !r.hit(e.Request.Context(), e.RealIP()) {
			return e.JSON(http.StatusTooManyRequests, map[string]string{
				"error": "Rate limit exceeded. Please try again later.",
			})
		}
		return e.Next()
	}
}
