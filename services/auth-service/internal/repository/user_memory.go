package repository

import (
	"context"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"

	"github.com/vasapolrittideah/account-api/services/auth-service/internal/model"
)

const duplicateKeyErrorCode = 11000

// UserMemoryRepository is an in-process UserRepository with the same error contract as the
// MongoDB implementation: mongo.ErrNoDocuments for misses and a duplicate key write exception
// for an existing email.
type UserMemoryRepository struct {
	mu    sync.RWMutex
	users map[bson.ObjectID]model.User
}

func NewUserMemoryRepository() *UserMemoryRepository {
	return &UserMemoryRepository{users: make(map[bson.ObjectID]model.User)}
}

func (r *UserMemoryRepository) CreateUser(_ context.Context, user *model.User) (*model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, existing := range r.users {
		if existing.Email == user.Email {
			return nil, mongo.WriteException{
				WriteErrors: []mongo.WriteError{{Code: duplicateKeyErrorCode, Message: "duplicate key: email"}},
			}
		}
	}

	now := time.Now()
	user.ID = bson.NewObjectID()
	user.CreatedAt = now
	user.UpdatedAt = now
	r.users[user.ID] = *user

	return user, nil
}

func (r *UserMemoryRepository) GetUserByEmail(_ context.Context, email string) (*model.User, error) {
	return r.find(func(u model.User) bool { return u.Email == email })
}

func (r *UserMemoryRepository) GetUserByResetToken(_ context.Context, token string) (*model.User, error) {
	return r.find(func(u model.User) bool { return u.ResetToken != nil && *u.ResetToken == token })
}

func (r *UserMemoryRepository) SetResetToken(
	_ context.Context,
	id string,
	token string,
	issuedAt time.Time,
) (*model.User, error) {
	objectID, err := bson.ObjectIDFromHex(id)
	if err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	user, ok := r.users[objectID]
	if !ok {
		return nil, mongo.ErrNoDocuments
	}

	user.ResetToken = &token
	user.ResetTokenIssuedAt = &issuedAt
	user.UpdatedAt = time.Now()
	r.users[objectID] = user

	return &user, nil
}

func (r *UserMemoryRepository) ConsumeResetToken(
	_ context.Context,
	token string,
	passwordHash string,
) (*model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for id, user := range r.users {
		if user.ResetToken == nil || *user.ResetToken != token {
			continue
		}

		user.PasswordHash = passwordHash
		user.ResetToken = nil
		user.ResetTokenIssuedAt = nil
		user.UpdatedAt = time.Now()
		r.users[id] = user

		return &user, nil
	}

	return nil, mongo.ErrNoDocuments
}

func (r *UserMemoryRepository) find(match func(u model.User) bool) (*model.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, user := range r.users {
		if match(user) {
			return &user, nil
		}
	}

	return nil, mongo.ErrNoDocuments
}
