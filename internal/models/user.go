package models

import (
	"time"

	"github.com/google/uuid"
)

type UserStatus string

const (
	UserActive    UserStatus = "ACTIVE"
	UserSuspended UserStatus = "SUSPENDED"
)

// ValidUserStatus reports whether s is a status an admin may assign.
func ValidUserStatus(s UserStatus) bool {
	return s == UserActive || s == UserSuspended
}

// User is a Google OAuth identity. Passwordless: authentication always goes
// through the OAuth flow.
type User struct {
	ID             uuid.UUID  `gorm:"type:uuid;primaryKey" json:"user_id"`
	GoogleID       *string    `gorm:"size:255;uniqueIndex" json:"-"`
	Name           string     `gorm:"size:100;not null" json:"name"`
	Email          string     `gorm:"size:255;not null;uniqueIndex" json:"email"`
	ProfilePicture string     `gorm:"size:500" json:"profile_picture,omitempty"`
	Status         UserStatus `gorm:"size:20;not null;default:'ACTIVE';index" json:"status"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}
