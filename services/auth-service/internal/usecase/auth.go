package usecase

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/v2/mongo"

	"github.com/vasapolrittideah/account-api/services/auth-service/internal/model"
	"github.com/vasapolrittideah/account-api/services/auth-service/internal/repository"
	"github.com/vasapolrittideah/account-api/shared/security"
)

// AuthUsecase defines the interface for account registration.
type AuthUsecase interface {
	Register(ctx context.Context, params RegisterParams) error
}

// RegisterParams defines the parameters for user registration.
type RegisterParams struct {
	Email    string
	Password string

	// DisplayToken is stored verbatim and never read back by the service.
	DisplayToken string
}

var (
	ErrUserAlreadyExists = errors.New("user already exists")
	ErrStorage           = errors.New("storage error")
)

type authUsecase struct {
	userRepo repository.UserRepository
}

func NewAuthUsecase(userRepo repository.UserRepository) AuthUsecase {
	return &authUsecase{userRepo: userRepo}
}

func (u *authUsecase) Register(ctx context.Context, params RegisterParams) error {
	_, err := u.userRepo.GetUserByEmail(ctx, params.Email)
	switch {
	case err == nil:
		return ErrUserAlreadyExists
	case !errors.Is(err, mongo.ErrNoDocuments):
		return fmt.Errorf("%w: %w", ErrStorage, err)
	}

	passwordHash, err := security.HashPassword(params.Password)
	if err != nil {
		return err
	}

	if _, err := u.userRepo.CreateUser(ctx, &model.User{
		Email:        params.Email,
		PasswordHash: passwordHash,
		DisplayToken: params.DisplayToken,
	}); err != nil {
		// The unique index catches a concurrent registration that passed the check above.
		if mongo.IsDuplicateKeyError(err) {
			return ErrUserAlreadyExists
		}

		return fmt.Errorf("%w: %w", ErrStorage, err)
	}

	return nil
}
