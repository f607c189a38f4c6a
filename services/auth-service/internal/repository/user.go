package repository

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/vasapolrittideah/account-api/services/auth-service/internal/model"
)

// UserRepository defines the interface for user-related database operations.
type UserRepository interface {
	CreateUser(ctx context.Context, user *model.User) (*model.User, error)
	GetUserByEmail(ctx context.Context, email string) (*model.User, error)
	GetUserByResetToken(ctx context.Context, token string) (*model.User, error)

	// SetResetToken stores a freshly issued reset token on the user, replacing any previous one.
	SetResetToken(ctx context.Context, id string, token string, issuedAt time.Time) (*model.User, error)

	// ConsumeResetToken replaces the password of the user holding the token and removes the
	// token in one atomic update. It returns mongo.ErrNoDocuments when no user holds the token.
	ConsumeResetToken(ctx context.Context, token string, passwordHash string) (*model.User, error)
}

const userCollection = "users"

type userMongoRepository struct {
	db *mongo.Database
}

func NewUserMongoRepository(ctx context.Context, logger *zerolog.Logger, db *mongo.Database) UserRepository {
	collection := db.Collection(userCollection)

	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "email", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys:    bson.D{{Key: "reset_token", Value: 1}},
			Options: options.Index().SetUnique(true).SetSparse(true),
		},
	}

	_, err := collection.Indexes().CreateMany(ctx, indexes)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to create user indexes")
	}

	return &userMongoRepository{db: db}
}

func (r *userMongoRepository) CreateUser(ctx context.Context, user *model.User) (*model.User, error) {
	now := time.Now()
	user.CreatedAt = now
	user.UpdatedAt = now

	result, err := r.db.Collection(userCollection).InsertOne(ctx, user)
	if err != nil {
		return nil, err
	}

	if objectID, ok := result.InsertedID.(bson.ObjectID); ok {
		user.ID = objectID
	} else {
		return nil, errors.New("failed to convert inserted ID to ObjectID")
	}

	return user, nil
}

func (r *userMongoRepository) GetUserByEmail(ctx context.Context, email string) (*model.User, error) {
	return r.findOne(ctx, bson.M{"email": email})
}

func (r *userMongoRepository) GetUserByResetToken(ctx context.Context, token string) (*model.User, error) {
	return r.findOne(ctx, bson.M{"reset_token": token})
}

func (r *userMongoRepository) SetResetToken(
	ctx context.Context,
	id string,
	token string,
	issuedAt time.Time,
) (*model.User, error) {
	objectID, err := bson.ObjectIDFromHex(id)
	if err != nil {
		return nil, err
	}

	update := bson.M{
		"$set": bson.M{
			"reset_token":           token,
			"reset_token_issued_at": issuedAt,
			"updated_at":            time.Now(),
		},
	}

	return r.findOneAndUpdate(ctx, bson.M{"_id": objectID}, update)
}

func (r *userMongoRepository) ConsumeResetToken(
	ctx context.Context,
	token string,
	passwordHash string,
) (*model.User, error) {
	update := bson.M{
		"$set": bson.M{
			"password_hash": passwordHash,
			"updated_at":    time.Now(),
		},
		"$unset": bson.M{
			"reset_token":           "",
			"reset_token_issued_at": "",
		},
	}

	return r.findOneAndUpdate(ctx, bson.M{"reset_token": token}, update)
}

func (r *userMongoRepository) findOne(ctx context.Context, filter bson.M) (*model.User, error) {
	result := r.db.Collection(userCollection).FindOne(ctx, filter)
	if result.Err() != nil {
		return nil, result.Err()
	}

	var user model.User
	if err := result.Decode(&user); err != nil {
		return nil, err
	}

	return &user, nil
}

func (r *userMongoRepository) findOneAndUpdate(ctx context.Context, filter, update bson.M) (*model.User, error) {
	result := r.db.Collection(userCollection).FindOneAndUpdate(
		ctx,
		filter,
		update,
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	)
	if result.Err() != nil {
		return nil, result.Err()
	}

	var user model.User
	if err := result.Decode(&user); err != nil {
		return nil, err
	}

	return &user, nil
}
