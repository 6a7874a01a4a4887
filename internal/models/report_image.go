package models

import (
	"time"

	"github.com/google/uuid"
)

// ReportImage is evidence attached to a report while it is still PENDING.
// Rows cascade with their report; the file on disk is removed by the service.
type ReportImage struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey" json:"image_id"`
	ReportID   uuid.UUID `gorm:"type:uuid;not null;index" json:"report_id"`
	Filename   string    `gorm:"size:255;not null" json:"filename"`
	Path       string    `gorm:"size:500;not null" json:"-"`
	Size       int64     `gorm:"not null" json:"size"`
	UploadedAt time.Time `gorm:"autoCreateTime" json:"uploaded_at"`
}
