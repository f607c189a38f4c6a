package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
	"go.mongodb.org/mongo-driver/v2/mongo/readpref"

	"github.com/vasapolrittideah/account-api/services/auth-service/internal/config"
	"github.com/vasapolrittideah/account-api/services/auth-service/internal/handler"
	"github.com/vasapolrittideah/account-api/services/auth-service/internal/repository"
	"github.com/vasapolrittideah/account-api/services/auth-service/internal/usecase"
	"github.com/vasapolrittideah/account-api/shared/logger"
	"github.com/vasapolrittideah/account-api/shared/mailer"
	"github.com/vasapolrittideah/account-api/shared/ratelimiter"
	"github.com/vasapolrittideah/account-api/shared/validator"
)

func main() {
	// A missing .env file is fine; the environment may already be populated.
	_ = godotenv.Load()

	bootLogger := zerolog.New(os.Stderr).With().Timestamp().Logger()

	cfg, err := config.NewAuthServiceConfig()
	if err != nil {
		bootLogger.Fatal().Err(err).Msg("failed to load auth service configuration")
	}

	log, err := logger.New(cfg.Log, os.Stdout)
	if err != nil {
		bootLogger.Fatal().Err(err).Msg("failed to create logger")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	mongoClient, err := mongo.Connect(options.Client().ApplyURI(cfg.Mongo.URI))
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to MongoDB")
	}
	defer func() {
		if err := mongoClient.Disconnect(context.Background()); err != nil {
			log.Error().Err(err).Msg("failed to disconnect from MongoDB")
		}
	}()

	if err := mongoClient.Ping(ctx, readpref.Primary()); err != nil {
		log.Fatal().Err(err).Msg("failed to ping MongoDB")
	}
	log.Info().Str("database", cfg.Mongo.Database).Msg("connected to MongoDB")

	db := mongoClient.Database(cfg.Mongo.Database)
	userRepo := repository.NewUserMongoRepository(ctx, log, db)

	mailerCfg, err := mailer.NewConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load mailer configuration")
	}
	mail := mailer.NewMailer(mailerCfg, log)

	rateLimiter := newRateLimiter(cfg, log)

	payloadValidator, err := validator.New()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create validator")
	}

	authUsecase := usecase.NewAuthUsecase(userRepo)
	passwordResetUsecase := usecase.WithPasswordResetRateLimit(
		usecase.NewPasswordResetUsecase(userRepo, mail, cfg, time.Now),
		log,
		rateLimiter,
		cfg.RateLimit.PasswordResetPerHour,
	)

	router := handler.NewRouter(
		log,
		cfg.CORSAllowedOrigins,
		handler.NewAuthHTTPHandler(log, authUsecase, passwordResetUsecase, payloadValidator, cfg),
		handler.NewHealthHTTPHandler(log, handler.PingerFunc(func(ctx context.Context) error {
			return mongoClient.Ping(ctx, readpref.Primary())
		})),
	)

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		log.Info().Str("address", cfg.HTTPAddr).Msg("auth service is running")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("failed to serve HTTP")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down auth service")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("failed to shut down HTTP server gracefully")
	}
}

func newRateLimiter(cfg *config.AuthServiceConfig, log *zerolog.Logger) ratelimiter.RateLimiter {
	if cfg.Redis.URL == "" {
		log.Info().Msg("REDIS_URL is not set, password reset rate limiting is disabled")
		return ratelimiter.NewNoop()
	}

	opts, err := redis.ParseURL(cfg.Redis.URL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to parse REDIS_URL")
	}

	return ratelimiter.NewRedis(redis.NewClient(opts), log, time.Now)
}
