package usecase

import (
	"context"
	"time"

	"github.com/vasapolrittideah/account-api/services/auth-service/internal/config"
	"github.com/vasapolrittideah/account-api/services/auth-service/internal/model"
	"github.com/vasapolrittideah/account-api/services/auth-service/internal/repository"
	"github.com/vasapolrittideah/account-api/shared/mailer"
	"github.com/vasapolrittideah/account-api/shared/ratelimiter"
)

// fakeUserRepository adds error injection on top of the in-memory repository.
type fakeUserRepository struct {
	*repository.UserMemoryRepository

	getErr     error
	createErr  error
	setErr     error
	consumeErr error
}

func newFakeUserRepository() *fakeUserRepository {
	return &fakeUserRepository{UserMemoryRepository: repository.NewUserMemoryRepository()}
}

func (r *fakeUserRepository) CreateUser(ctx context.Context, user *model.User) (*model.User, error) {
	if r.createErr != nil {
		return nil, r.createErr
	}
	return r.UserMemoryRepository.CreateUser(ctx, user)
}

func (r *fakeUserRepository) GetUserByEmail(ctx context.Context, email string) (*model.User, error) {
	if r.getErr != nil {
		return nil, r.getErr
	}
	return r.UserMemoryRepository.GetUserByEmail(ctx, email)
}

func (r *fakeUserRepository) GetUserByResetToken(ctx context.Context, token string) (*model.User, error) {
	if r.getErr != nil {
		return nil, r.getErr
	}
	return r.UserMemoryRepository.GetUserByResetToken(ctx, token)
}

func (r *fakeUserRepository) SetResetToken(
	ctx context.Context,
	id string,
	token string,
	issuedAt time.Time,
) (*model.User, error) {
	if r.setErr != nil {
		return nil, r.setErr
	}
	return r.UserMemoryRepository.SetResetToken(ctx, id, token, issuedAt)
}

func (r *fakeUserRepository) ConsumeResetToken(ctx context.Context, token, passwordHash string) (*model.User, error) {
	if r.consumeErr != nil {
		return nil, r.consumeErr
	}
	return r.UserMemoryRepository.ConsumeResetToken(ctx, token, passwordHash)
}

func (r *fakeUserRepository) mustGetByEmail(email string) *model.User {
	u, err := r.UserMemoryRepository.GetUserByEmail(context.Background(), email)
	if err != nil {
		panic(err)
	}
	return u
}

type fakeMailer struct {
	sent []mailer.Email
	err  error
}

func (m *fakeMailer) Send(email mailer.Email) error {
	if m.err != nil {
		return m.err
	}
	m.sent = append(m.sent, email)
	return nil
}

type fakeRateLimiter struct {
	allowed bool
	keys    []string
}

func (l *fakeRateLimiter) Allow(_ context.Context, key string, _ ratelimiter.Limit) bool {
	l.keys = append(l.keys, key)
	return l.allowed
}

type fakeClock struct {
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.now = c.now.Add(d)
}

func newTestConfig() *config.AuthServiceConfig {
	return &config.AuthServiceConfig{
		AppPasswordResetURL: "http://localhost:5000/api/reset-password",
		AppHomeURL:          "http://localhost:5173/",
		Token: config.TokenConfig{
			PasswordResetTokenExpiresIn: 60 * time.Second,
			PasswordResetTokenLength:    32,
			CheckExpiryOnReset:          true,
		},
	}
}
