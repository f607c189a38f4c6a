package ratelimiter

import (
	"context"
	"errors"
	"time"
)

var ErrRateLimitExceeded = errors.New("rate limit exceeded")

// Limit allows Value calls per key within each fixed Interval window.
type Limit struct {
	Value    int64
	Interval time.Duration
}

// RateLimiter counts calls per key.
type RateLimiter interface {
	// Allow records a call for key and reports whether it is within the limit.
	Allow(ctx context.Context, key string, limit Limit) bool
}

type noopRateLimiter struct{}

// NewNoop returns a RateLimiter that allows every call.
func NewNoop() RateLimiter {
	return noopRateLimiter{}
}

func (noopRateLimiter) Allow(context.Context, string, Limit) bool {
	return true
}
