package ratelimiter

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

type redisRateLimiter struct {
	client redis.Cmdable
	logger *zerolog.Logger
	now    func() time.Time
}

// NewRedis creates a fixed-window RateLimiter backed by Redis counters.
// Redis failures are logged and the call is allowed.
func NewRedis(client redis.Cmdable, logger *zerolog.Logger, now func() time.Time) RateLimiter {
	return &redisRateLimiter{
		client: client,
		logger: logger,
		now:    now,
	}
}

func (r *redisRateLimiter) Allow(ctx context.Context, key string, limit Limit) bool {
	if limit.Value <= 0 || limit.Interval <= 0 {
		return true
	}

	k := windowKey(key, r.now(), limit.Interval)

	cmds, err := r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Incr(ctx, k)
		pipe.Expire(ctx, k, limit.Interval)
		return nil
	})
	if errors.Is(err, context.Canceled) {
		return false
	}
	if err != nil {
		r.logger.Error().Err(err).Str("key", key).Msg("failed to check rate limit")
		return true
	}

	count := cmds[0].(*redis.IntCmd).Val()

	return count <= limit.Value
}

func windowKey(key string, now time.Time, interval time.Duration) string {
	window := now.UnixNano() / int64(interval)
	return fmt.Sprintf("ratelimit::%s::%d", key, window)
}
