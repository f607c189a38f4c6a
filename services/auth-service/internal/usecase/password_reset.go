package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/v2/mongo"

	"github.com/vasapolrittideah/account-api/services/auth-service/internal/config"
	"github.com/vasapolrittideah/account-api/services/auth-service/internal/model"
	"github.com/vasapolrittideah/account-api/services/auth-service/internal/repository"
	"github.com/vasapolrittideah/account-api/shared/mailer"
	"github.com/vasapolrittideah/account-api/shared/security"
)

// PasswordResetUsecase defines the business logic of the password reset flow.
type PasswordResetUsecase interface {
	// RequestPasswordReset issues a new reset token for the user with the given email and
	// mails a reset link. It returns after the mail relay has answered.
	RequestPasswordReset(ctx context.Context, email string) error

	// ValidatePasswordResetToken checks that the token is held by a user and still within its window.
	ValidatePasswordResetToken(ctx context.Context, token string) error

	// ResetPassword replaces the password of the user holding the token and clears the token.
	ResetPassword(ctx context.Context, token, newPassword string) error
}

var (
	ErrUserNotFound  = errors.New("user not found")
	ErrTokenNotFound = errors.New("password reset token not found")
	ErrTokenExpired  = errors.New("password reset token has expired")
	ErrMailDelivery  = errors.New("failed to deliver password reset email")
)

const passwordResetSubject = "Password Reset"

type passwordResetUsecase struct {
	userRepo       repository.UserRepository
	mailer         mailer.Sender
	authServiceCfg *config.AuthServiceConfig
	now            func() time.Time
}

// NewPasswordResetUsecase creates a new instance of PasswordResetUsecase.
func NewPasswordResetUsecase(
	userRepo repository.UserRepository,
	mailer mailer.Sender,
	authServiceCfg *config.AuthServiceConfig,
	now func() time.Time,
) PasswordResetUsecase {
	return &passwordResetUsecase{
		userRepo:       userRepo,
		mailer:         mailer,
		authServiceCfg: authServiceCfg,
		now:            now,
	}
}

func (u *passwordResetUsecase) RequestPasswordReset(ctx context.Context, email string) error {
	user, err := u.userRepo.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return ErrUserNotFound
		}
		return fmt.Errorf("%w: %w", ErrStorage, err)
	}

	token, err := security.GenerateToken(u.authServiceCfg.Token.PasswordResetTokenLength)
	if err != nil {
		return err
	}

	// Overwrites any token issued earlier, which invalidates it.
	if _, err := u.userRepo.SetResetToken(ctx, user.ID.Hex(), token, u.now()); err != nil {
		return fmt.Errorf("%w: %w", ErrStorage, err)
	}

	if err := u.mailer.Send(u.passwordResetEmail(user.Email, token)); err != nil {
		return fmt.Errorf("%w: %w", ErrMailDelivery, err)
	}

	return nil
}

func (u *passwordResetUsecase) ValidatePasswordResetToken(ctx context.Context, token string) error {
	user, err := u.getUserByResetToken(ctx, token)
	if err != nil {
		return err
	}

	if u.isExpired(user) {
		return ErrTokenExpired
	}

	return nil
}

func (u *passwordResetUsecase) ResetPassword(ctx context.Context, token, newPassword string) error {
	user, err := u.getUserByResetToken(ctx, token)
	if err != nil {
		return err
	}

	if u.authServiceCfg.Token.CheckExpiryOnReset && u.isExpired(user) {
		return ErrTokenExpired
	}

	passwordHash, err := security.HashPassword(newPassword)
	if err != nil {
		return err
	}

	if _, err := u.userRepo.ConsumeResetToken(ctx, token, passwordHash); err != nil {
		// Another request consumed or replaced the token after the lookup above.
		if errors.Is(err, mongo.ErrNoDocuments) {
			return ErrTokenNotFound
		}
		return fmt.Errorf("%w: %w", ErrStorage, err)
	}

	return nil
}

func (u *passwordResetUsecase) getUserByResetToken(ctx context.Context, token string) (*model.User, error) {
	if token == "" {
		return nil, ErrTokenNotFound
	}

	user, err := u.userRepo.GetUserByResetToken(ctx, token)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrTokenNotFound
		}
		return nil, fmt.Errorf("%w: %w", ErrStorage, err)
	}

	return user, nil
}

func (u *passwordResetUsecase) isExpired(user *model.User) bool {
	if user.ResetTokenIssuedAt == nil {
		return true
	}

	return u.now().Sub(*user.ResetTokenIssuedAt) > u.authServiceCfg.Token.PasswordResetTokenExpiresIn
}

func (u *passwordResetUsecase) passwordResetEmail(to, token string) mailer.Email {
	resetLink := fmt.Sprintf("%s/%s", strings.TrimRight(u.authServiceCfg.AppPasswordResetURL, "/"), token)
	expiresIn := u.authServiceCfg.Token.PasswordResetTokenExpiresIn

	return mailer.Email{
		To:      []string{to},
		Subject: passwordResetSubject,
		Body:    fmt.Sprintf("Click the following link to reset your password: %s", resetLink),
		HTMLBody: fmt.Sprintf(`
		<p>Hi,</p>
		<p>We received a request to reset the password for your account.</p>
		<p>If you made this request, please click the link below to create a new password:</p>

		<p><a href="%s">%s</a></p>

		<p>This link will expire in %s.</p>
		<p>If you did not request a password reset, you can safely ignore this email.</p>
	`, resetLink, resetLink, expiresIn),
	}
}
