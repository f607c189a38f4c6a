package usecase

import (
	"context"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/vasapolrittideah/account-api/shared/ratelimiter"
)

type rateLimitedPasswordResetUsecase struct {
	PasswordResetUsecase
	logger      *zerolog.Logger
	rateLimiter ratelimiter.RateLimiter
	limit       ratelimiter.Limit
}

// WithPasswordResetRateLimit limits RequestPasswordReset to perHour calls per email.
// The other methods are passed through unchanged.
func WithPasswordResetRateLimit(
	inner PasswordResetUsecase,
	logger *zerolog.Logger,
	rateLimiter ratelimiter.RateLimiter,
	perHour int64,
) PasswordResetUsecase {
	return &rateLimitedPasswordResetUsecase{
		PasswordResetUsecase: inner,
		logger:               logger,
		rateLimiter:          rateLimiter,
		limit:                ratelimiter.Limit{Value: perHour, Interval: time.Hour},
	}
}

func (u *rateLimitedPasswordResetUsecase) RequestPasswordReset(ctx context.Context, email string) error {
	key := "forgot-password::" + strings.ToLower(email)
	if !u.rateLimiter.Allow(ctx, key, u.limit) {
		u.logger.Warn().Str("key", key).Msg("password reset rate limit exceeded")
		return ratelimiter.ErrRateLimitExceeded
	}

	return u.PasswordResetUsecase.RequestPasswordReset(ctx, email)
}
