package config

import (
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/caarlos0/env/v11"

	"github.com/vasapolrittideah/account-api/shared/logger"
)

// AuthServiceConfig holds the configuration of the auth service.
type AuthServiceConfig struct {
	HTTPAddr            string        `env:"HTTP_ADDR"            envDefault:":5000"`
	ShutdownTimeout     time.Duration `env:"SHUTDOWN_TIMEOUT"     envDefault:"10s"`
	AppHomeURL          string        `env:"APP_HOME_URL"         envDefault:"http://localhost:5173/"`
	AppPasswordResetURL string        `env:"PASSWORD_RESET_URL"   envDefault:"http://localhost:5000/api/reset-password"`
	CORSAllowedOrigins  []string      `env:"CORS_ALLOWED_ORIGINS" envDefault:"*" envSeparator:","`

	Mongo     MongoConfig
	Redis     RedisConfig
	Token     TokenConfig
	RateLimit RateLimitConfig
	Log       logger.Config
}

// MongoConfig holds the document store connection settings.
type MongoConfig struct {
	URI      string `env:"MONGODB_URI"`
	Database string `env:"MONGODB_DATABASE" envDefault:"account"`
}

// RedisConfig holds the optional Redis connection used for rate limiting.
// Rate limiting is disabled when URL is empty.
type RedisConfig struct {
	URL string `env:"REDIS_URL"`
}

// TokenConfig holds the password reset token settings.
type TokenConfig struct {
	PasswordResetTokenExpiresIn time.Duration `env:"PASSWORD_RESET_TOKEN_EXPIRES_IN"      envDefault:"60s"`
	PasswordResetTokenLength    int           `env:"PASSWORD_RESET_TOKEN_LENGTH"          envDefault:"32"`
	CheckExpiryOnReset          bool          `env:"PASSWORD_RESET_CHECK_EXPIRY_ON_RESET" envDefault:"true"`
}

// RateLimitConfig holds request limits.
type RateLimitConfig struct {
	PasswordResetPerHour int64 `env:"PASSWORD_RESET_RATE_LIMIT_PER_HOUR" envDefault:"3"`
}

// NewAuthServiceConfig creates an AuthServiceConfig from environment variables.
func NewAuthServiceConfig() (*AuthServiceConfig, error) {
	cfg, err := env.ParseAs[AuthServiceConfig]()
	if err != nil {
		return nil, fmt.Errorf("failed to parse environment variables: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate checks if the configuration is valid.
func (c *AuthServiceConfig) Validate() error {
	if c.Mongo.URI == "" {
		return errors.New("missing MONGODB_URI environment variable")
	}
	if c.Mongo.Database == "" {
		return errors.New("missing MONGODB_DATABASE environment variable")
	}
	if c.Token.PasswordResetTokenExpiresIn <= 0 {
		return errors.New("PASSWORD_RESET_TOKEN_EXPIRES_IN must be positive")
	}
	if c.Token.PasswordResetTokenLength < 6 {
		return errors.New("PASSWORD_RESET_TOKEN_LENGTH must be at least 6")
	}
	if c.RateLimit.PasswordResetPerHour < 0 {
		return errors.New("PASSWORD_RESET_RATE_LIMIT_PER_HOUR must not be negative")
	}
	if _, err := url.ParseRequestURI(c.AppPasswordResetURL); err != nil {
		return fmt.Errorf("invalid PASSWORD_RESET_URL: %w", err)
	}
	if _, err := url.ParseRequestURI(c.AppHomeURL); err != nil {
		return fmt.Errorf("invalid APP_HOME_URL: %w", err)
	}

	return nil
}
