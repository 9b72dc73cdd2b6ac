package models

import (
	"kost/src/types"
	"time"

	"github.com/google/uuid"
)

// UserToken is the one-time login token issued when an application is
// approved, so the new tenant can sign in without typing a password.
type UserToken struct {
	ID        uuid.UUID `gorm:"primarykey;type:uuid;default:gen_random_uuid()" json:"-"`
	Email     string    `json:"email"`
	Token     string    `gorm:"uniqueIndex" json:"-"`
	ExpiresAt time.Time `json:"expires_at"`

	types.Timestamps
}

func (UserToken) TableName() string { return "user_tokens" }
