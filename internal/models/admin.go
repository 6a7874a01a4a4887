package models

import (
	"time"

	"github.com/google/uuid"
)

type AdminRole string

const (
	RoleModerator  AdminRole = "MODERATOR"
	RoleSuperAdmin AdminRole = "SUPER_ADMIN"
)

func ValidAdminRole(r AdminRole) bool {
	return r == RoleModerator || r == RoleSuperAdmin
}

type Admin struct {
	ID           uuid.UUID  `gorm:"type:uuid;primaryKey" json:"admin_id"`
	Username     string     `gorm:"size:50;not null;uniqueIndex" json:"username"`
	PasswordHash string     `gorm:"not null" json:"-"`
	Role         AdminRole  `gorm:"size:20;not null;default:'MODERATOR'" json:"role"`
	LastLoginAt  *time.Time `json:"last_login_at,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}
