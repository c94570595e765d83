package middleware

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisRateLimiter is a fixed one-minute window limiter shared by every
// instance that points at the same Redis. Redis failures fail open.
type RedisRateLimiter struct {
	client *redis.Client
	prefix string
	log    *slog.Logger
	now    func() time.Time
}

// NewRedisRateLimiter creates a limiter storing counters under prefix.
func NewRedisRateLimiter(client *redis.Client, prefix string, logger *slog.Logger) *RedisRateLimiter {
	return &RedisRateLimiter{
		client: client,
		prefix: prefix,
		log:    logger.With("adapter", "redis_ratelimit"),
		now:    time.Now,
	}
}

// Limit returns middleware that rate-limits requests to maxPerMinute per IP.
func (rl *RedisRateLimiter) Limit(maxPerMinute int) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			allowed, err := rl.allow(r.Context(), limitKey(r), maxPerMinute)
			if err != nil {
				rl.log.WarnContext(r.Context(), "rate limit check failed, allowing request",
					slog.String("error", err.Error()))
				next.ServeHTTP(w, r)
				return
			}
			if !allowed {
				window := rl.now().Truncate(time.Minute).Add(time.Minute)
				rejectRateLimited(w, window.Sub(rl.now()))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func (rl *RedisRateLimiter) allow(ctx context.Context, ip string, maxPerMinute int) (bool, error) {
	window := rl.now().Unix() / 60
	key := fmt.Sprintf("%s:%s:%d", rl.prefix, ip, window)

	var incr *redis.IntCmd
	_, err := rl.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		incr = pipe.Incr(ctx, key)
		pipe.Expire(ctx, key, 2*time.Minute)
		return nil
	})
	if err != nil {
		return false, fmt.Errorf("redis incr %s: %w", key, err)
	}

	return incr.Val() <= int64(maxPerMinute), nil
}
