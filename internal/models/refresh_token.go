package models

import (
	"time"

	"github.com/google/uuid"
)

// SubjectKind discriminates who a refresh token belongs to. Users and admins
// share the table; the (subject_id, subject_kind) pair identifies the owner.
type SubjectKind string

const (
	SubjectUser  SubjectKind = "user"
	SubjectAdmin SubjectKind = "admin"
)

// RefreshToken stores a SHA-256 hash of the opaque token value; the raw value
// only ever exists client-side. A row is deleted when rotated, revoked, or
// swept after expiry.
type RefreshToken struct {
	ID          uuid.UUID   `gorm:"type:uuid;primaryKey" json:"id"`
	SubjectID   uuid.UUID   `gorm:"type:uuid;not null;index:idx_refresh_subject" json:"subject_id"`
	SubjectKind SubjectKind `gorm:"size:10;not null;index:idx_refresh_subject" json:"subject_kind"`
	TokenHash   string      `gorm:"size:64;not null;uniqueIndex" json:"-"`
	ExpiresAt   time.Time   `gorm:"not null;index" json:"expires_at"`
	CreatedAt   time.Time   `json:"created_at"`
}
