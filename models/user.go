package models

import (
	"time"

	"github.com/google/uuid"
)

// User is a storefront account. Credentials are verified locally before the
// OAuth token exchange; PasswordHash is a bcrypt digest.
type User struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	CreatedAt time.Time
	UpdatedAt time.Time

	Name         string `gorm:"not null"`
	Email        string `gorm:"uniqueIndex;not null"`
	PasswordHash string `gorm:"not null"`
}

func (u *User) TableName() string {
	return "users"
}
