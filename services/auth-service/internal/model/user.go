package model

import (
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
)

// User represents an account in the credential store.
//
// ResetToken and ResetTokenIssuedAt are set together while a password reset is pending
// and removed together once the reset has been consumed.
type User struct {
	ID                 bson.ObjectID `bson:"_id,omitempty"`
	Email              string        `bson:"email"`
	PasswordHash       string        `bson:"password_hash"`
	DisplayToken       string        `bson:"display_token,omitempty"`
	ResetToken         *string       `bson:"reset_token,omitempty"`
	ResetTokenIssuedAt *time.Time    `bson:"reset_token_issued_at,omitempty"`
	CreatedAt          time.Time     `bson:"created_at"`
	UpdatedAt          time.Time     `bson:"updated_at"`
}

// HasPendingReset reports whether a password reset token is currently held by the user.
func (u *User) HasPendingReset() bool {
	return u.ResetToken != nil && u.ResetTokenIssuedAt != nil
}
