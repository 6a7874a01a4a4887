package models

import (
	"time"

	"github.com/google/uuid"
)

type ReportStatus string

const (
	ReportPending  ReportStatus = "PENDING"
	ReportApproved ReportStatus = "APPROVED"
	ReportRejected ReportStatus = "REJECTED"
)

func ValidReportStatus(s ReportStatus) bool {
	return s == ReportPending || s == ReportApproved || s == ReportRejected
}

// FraudReport names up to three target identities. At least one of Email,
// Phone, FacebookID must be set; the service layer enforces that a user never
// holds two reports sharing any identity value.
type FraudReport struct {
	ID              uuid.UUID    `gorm:"type:uuid;primaryKey" json:"report_id"`
	UserID          uuid.UUID    `gorm:"type:uuid;not null;index" json:"user_id"`
	Email           *string      `gorm:"size:255;index" json:"email,omitempty"`
	Phone           *string      `gorm:"size:20;index" json:"phone,omitempty"`
	FacebookID      *string      `gorm:"size:255;index" json:"facebook_id,omitempty"`
	Description     string       `gorm:"type:text;not null" json:"description"`
	Status          ReportStatus `gorm:"size:20;not null;default:'PENDING';index" json:"status"`
	ReviewedBy      *uuid.UUID   `gorm:"type:uuid" json:"reviewed_by,omitempty"`
	ReviewedAt      *time.Time   `json:"reviewed_at,omitempty"`
	RejectionReason *string      `gorm:"size:500" json:"rejection_reason,omitempty"`
	CreatedAt       time.Time    `gorm:"index" json:"created_at"`
	UpdatedAt       time.Time    `json:"updated_at"`

	User   *User         `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Images []ReportImage `gorm:"foreignKey:ReportID;constraint:OnDelete:CASCADE" json:"images,omitempty"`
}
