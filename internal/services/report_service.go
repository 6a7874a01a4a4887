package services

import (
	"fmt"
	"log/slog"
	"math"
	"strings"
	"time"

	"github.com/fraudshield/backend/internal/apperr"
	"github.com/fraudshield/backend/internal/dto"
	"github.com/fraudshield/backend/internal/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// FileRemover deletes stored evidence files. Satisfied by *FileService.
type FileRemover interface {
	Delete(path string) error
}

type ReportService struct {
	db    *gorm.DB
	files FileRemover
}

func NewReportService(db *gorm.DB, files FileRemover) *ReportService {
	return &ReportService{db: db, files: files}
}

// Submit validates and persists a new fraud report. The duplicate-identity
// check and the insert run in one transaction so two racing submissions by
// the same user cannot both pass the guard.
func (s *ReportService) Submit(userID uuid.UUID, req *dto.SubmitReportRequest) (*models.FraudReport, error) {
	email := normalizeIdentity(req.Email)
	phone := normalizeIdentity(req.Phone)
	facebookID := normalizeIdentity(req.FacebookID)

	if email == nil && phone == nil && facebookID == nil {
		return nil, apperr.Validation("at least one identity field (email, phone, or facebook_id) must be provided")
	}
	if len(req.Description) < 10 || len(req.Description) > 2000 {
		return nil, apperr.Validation("description must be between 10 and 2000 characters")
	}

	report := models.FraudReport{
		ID:          uuid.New(),
		UserID:      userID,
		Email:       email,
		Phone:       phone,
		FacebookID:  facebookID,
		Description: req.Description,
		Status:      models.ReportPending,
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		dup, err := findDuplicate(tx, userID, email, phone, facebookID)
		if err != nil {
			return err
		}
		if dup {
			return apperr.DuplicateReport()
		}
		return tx.Create(&report).Error
	})
	if err != nil {
		return nil, err
	}
	return &report, nil
}

// findDuplicate reports whether the user already holds a report sharing any
// of the populated identity values. Nil fields never match.
func findDuplicate(tx *gorm.DB, userID uuid.UUID, email, phone, facebookID *string) (bool, error) {
	conditions := tx.Session(&gorm.Session{NewDB: true})
	matched := false
	if email != nil {
		conditions = conditions.Or("email = ?", *email)
		matched = true
	}
	if phone != nil {
		conditions = conditions.Or("phone = ?", *phone)
		matched = true
	}
	if facebookID != nil {
		conditions = conditions.Or("facebook_id = ?", *facebookID)
		matched = true
	}
	if !matched {
		return false, nil
	}

	var count int64
	err := tx.Model(&models.FraudReport{}).
		Where("user_id = ?", userID).
		Where(conditions).
		Count(&count).Error
	return count > 0, err
}

// StoredFile is the result of a processed upload, produced by FileService.
type StoredFile struct {
	Filename string
	Path     string
	Size     int64
}

// AttachImages records evidence for a report. Only the owner may attach, and
// only while the report is still PENDING.
func (s *ReportService) AttachImages(userID, reportID uuid.UUID, files []StoredFile) ([]models.ReportImage, error) {
	report, err := s.ownedReport(userID, reportID)
	if err != nil {
		return nil, err
	}
	if report.Status != models.ReportPending {
		return nil, apperr.ReportProcessed()
	}

	images := make([]models.ReportImage, 0, len(files))
	for _, f := range files {
		images = append(images, models.ReportImage{
			ID:       uuid.New(),
			ReportID: report.ID,
			Filename: f.Filename,
			Path:     f.Path,
			Size:     f.Size,
		})
	}
	if err := s.db.Create(&images).Error; err != nil {
		return nil, fmt.Errorf("failed to save report images: %w", err)
	}
	return images, nil
}

// UserReports lists the caller's own reports, newest first by default.
func (s *ReportService) UserReports(userID uuid.UUID, opts dto.ListOptions) ([]models.FraudReport, *dto.Pagination, error) {
	query := s.db.Model(&models.FraudReport{}).Where("user_id = ?", userID)
	return s.paginate(query, opts, "Images")
}

// UserReport loads one report owned by the caller, with its images.
func (s *ReportService) UserReport(userID, reportID uuid.UUID) (*models.FraudReport, error) {
	var report models.FraudReport
	err := s.db.Preload("Images").
		Where("id = ? AND user_id = ?", reportID, userID).
		First(&report).Error
	if err != nil {
		return nil, apperr.NotFound("Report not found")
	}
	return &report, nil
}

// UpdateOwnStatus lets the owner toggle between PENDING and REJECTED.
// APPROVED reports are immutable to their owner.
func (s *ReportService) UpdateOwnStatus(userID, reportID uuid.UUID, status models.ReportStatus) (*models.FraudReport, error) {
	if status != models.ReportPending && status != models.ReportRejected {
		return nil, apperr.Validation("status must be PENDING or REJECTED")
	}

	report, err := s.ownedReport(userID, reportID)
	if err != nil {
		return nil, err
	}
	if report.Status == models.ReportApproved {
		return nil, apperr.CannotUpdateApproved()
	}

	if err := s.db.Model(report).Update("status", status).Error; err != nil {
		return nil, fmt.Errorf("failed to update report status: %w", err)
	}
	report.Status = status
	return report, nil
}

// DeleteOwn removes a PENDING report along with its image rows and files.
func (s *ReportService) DeleteOwn(userID, reportID uuid.UUID) error {
	report, err := s.ownedReport(userID, reportID)
	if err != nil {
		return err
	}
	if report.Status != models.ReportPending {
		return apperr.ReportProcessed()
	}

	var images []models.ReportImage
	if err := s.db.Where("report_id = ?", report.ID).Find(&images).Error; err != nil {
		return fmt.Errorf("failed to load report images: %w", err)
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("report_id = ?", report.ID).Delete(&models.ReportImage{}).Error; err != nil {
			return err
		}
		return tx.Delete(report).Error
	})
	if err != nil {
		return fmt.Errorf("failed to delete report: %w", err)
	}

	for _, img := range images {
		if err := s.files.Delete(img.Path); err != nil {
			slog.Error("failed to delete report image file", "path", img.Path, "error", err)
		}
	}
	return nil
}

// List is the admin listing with status, identity-type and date filters.
func (s *ReportService) List(filters dto.ReportFilters, opts dto.ListOptions) ([]models.FraudReport, *dto.Pagination, error) {
	query := s.db.Model(&models.FraudReport{})

	if filters.Status != "" {
		query = query.Where("status = ?", strings.ToUpper(filters.Status))
	}
	if filters.UserID != "" {
		query = query.Where("user_id = ?", filters.UserID)
	}
	switch strings.ToUpper(filters.IdentityType) {
	case "EMAIL":
		query = query.Where("email IS NOT NULL")
	case "PHONE":
		query = query.Where("phone IS NOT NULL")
	case "FACEBOOK":
		query = query.Where("facebook_id IS NOT NULL")
	}
	if filters.DateFrom != "" {
		if from, err := time.Parse(time.RFC3339, filters.DateFrom); err == nil {
			query = query.Where("created_at >= ?", from)
		}
	}
	if filters.DateTo != "" {
		if to, err := time.Parse(time.RFC3339, filters.DateTo); err == nil {
			query = query.Where("created_at <= ?", to)
		}
	}

	return s.paginate(query, opts, "User")
}

// Pending lists PENDING reports oldest first, for the review queue.
func (s *ReportService) Pending(opts dto.ListOptions) ([]models.FraudReport, *dto.Pagination, error) {
	opts.SortBy = "created_at"
	opts.SortOrder = "asc"
	query := s.db.Model(&models.FraudReport{}).Where("status = ?", models.ReportPending)
	return s.paginate(query, opts, "User")
}

// Get loads a report for the admin detail view.
func (s *ReportService) Get(reportID uuid.UUID) (*models.FraudReport, error) {
	var report models.FraudReport
	err := s.db.Preload("User").Preload("Images").
		First(&report, "id = ?", reportID).Error
	if err != nil {
		return nil, apperr.NotFound("Report not found")
	}
	return &report, nil
}

// Review applies an admin decision. Rejection requires a reason. Admins may
// also re-review an already processed report (override privilege).
func (s *ReportService) Review(reportID, adminID uuid.UUID, status models.ReportStatus, rejectionReason string) (*models.FraudReport, error) {
	if status != models.ReportApproved && status != models.ReportRejected {
		return nil, apperr.Validation("status must be APPROVED or REJECTED")
	}
	if status == models.ReportRejected && strings.TrimSpace(rejectionReason) == "" {
		return nil, apperr.Validation("rejection_reason is required when rejecting a report")
	}

	var report models.FraudReport
	if err := s.db.First(&report, "id = ?", reportID).Error; err != nil {
		return nil, apperr.NotFound("Report not found")
	}

	now := time.Now()
	updates := map[string]interface{}{
		"status":      status,
		"reviewed_by": adminID,
		"reviewed_at": now,
	}
	if status == models.ReportRejected {
		updates["rejection_reason"] = rejectionReason
	} else {
		updates["rejection_reason"] = nil
	}

	if err := s.db.Model(&report).Updates(updates).Error; err != nil {
		return nil, fmt.Errorf("failed to update report status: %w", err)
	}

	report.Status = status
	report.ReviewedBy = &adminID
	report.ReviewedAt = &now
	if status == models.ReportRejected {
		report.RejectionReason = &rejectionReason
	} else {
		report.RejectionReason = nil
	}
	return &report, nil
}

// Search matches approved reports against description and the requested
// identity fields. Results are capped.
func (s *ReportService) Search(query string, fields []string) ([]models.FraudReport, error) {
	if len(fields) == 0 {
		fields = []string{"email", "phone", "facebook_id"}
	}

	pattern := "%" + query + "%"
	conditions := s.db.Session(&gorm.Session{NewDB: true}).
		Or("description LIKE ?", pattern)
	for _, f := range fields {
		switch f {
		case "email":
			conditions = conditions.Or("email LIKE ?", pattern)
		case "phone":
			conditions = conditions.Or("phone LIKE ?", pattern)
		case "facebook_id":
			conditions = conditions.Or("facebook_id LIKE ?", pattern)
		}
	}

	var reports []models.FraudReport
	err := s.db.Preload("Images").
		Where("status = ?", models.ReportApproved).
		Where(conditions).
		Order("created_at DESC").
		Limit(50).
		Find(&reports).Error
	if err != nil {
		return nil, fmt.Errorf("failed to search reports: %w", err)
	}
	return reports, nil
}

// Recent returns the newest approved reports for the public feed.
func (s *ReportService) Recent(limit int) ([]models.FraudReport, error) {
	if limit <= 0 || limit > 50 {
		limit = 10
	}
	var reports []models.FraudReport
	err := s.db.Preload("Images").
		Where("status = ?", models.ReportApproved).
		Order("created_at DESC").
		Limit(limit).
		Find(&reports).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load recent reports: %w", err)
	}
	return reports, nil
}

// PublicReport exposes a single report only once approved.
func (s *ReportService) PublicReport(reportID uuid.UUID) (*models.FraudReport, error) {
	var report models.FraudReport
	err := s.db.Preload("Images").
		Where("id = ? AND status = ?", reportID, models.ReportApproved).
		First(&report).Error
	if err != nil {
		return nil, apperr.NotFound("Report not found")
	}
	return &report, nil
}

// SiteStats aggregates the public counters.
func (s *ReportService) SiteStats() (*dto.SiteStatsResponse, error) {
	var approved, pending, users, recent int64

	if err := s.db.Model(&models.FraudReport{}).Where("status = ?", models.ReportApproved).Count(&approved).Error; err != nil {
		return nil, err
	}
	if err := s.db.Model(&models.FraudReport{}).Where("status = ?", models.ReportPending).Count(&pending).Error; err != nil {
		return nil, err
	}
	if err := s.db.Model(&models.User{}).Where("status = ?", models.UserActive).Count(&users).Error; err != nil {
		return nil, err
	}
	cutoff := time.Now().AddDate(0, 0, -30)
	if err := s.db.Model(&models.FraudReport{}).
		Where("status = ? AND created_at >= ?", models.ReportApproved, cutoff).
		Count(&recent).Error; err != nil {
		return nil, err
	}

	return &dto.SiteStatsResponse{
		TotalReports:   approved,
		PendingReports: pending,
		TotalUsers:     users,
		RecentReports:  recent,
		LastUpdated:    time.Now().UTC().Format(time.RFC3339),
	}, nil
}

func (s *ReportService) ownedReport(userID, reportID uuid.UUID) (*models.FraudReport, error) {
	var report models.FraudReport
	err := s.db.Where("id = ? AND user_id = ?", reportID, userID).First(&report).Error
	if err != nil {
		return nil, apperr.NotFound("Report not found")
	}
	return &report, nil
}

func (s *ReportService) paginate(query *gorm.DB, opts dto.ListOptions, preload string) ([]models.FraudReport, *dto.Pagination, error) {
	page, limit := normalizePagination(opts.Page, opts.Limit)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, nil, err
	}

	var reports []models.FraudReport
	q := query.Order(orderClause(opts.SortBy, opts.SortOrder)).
		Offset((page - 1) * limit).
		Limit(limit)
	if preload != "" {
		q = q.Preload(preload)
	}
	if err := q.Find(&reports).Error; err != nil {
		return nil, nil, err
	}

	return reports, &dto.Pagination{
		Page:  page,
		Limit: limit,
		Total: total,
		Pages: int(math.Ceil(float64(total) / float64(limit))),
	}, nil
}

func normalizePagination(page, limit int) (int, int) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 10
	}
	if limit > 100 {
		limit = 100
	}
	return page, limit
}

// orderClause whitelists sortable columns so request input never reaches the
// ORDER BY raw.
func orderClause(sortBy, sortOrder string) string {
	switch sortBy {
	case "created_at", "updated_at", "status":
	default:
		sortBy = "created_at"
	}
	if strings.ToLower(sortOrder) != "asc" {
		sortOrder = "desc"
	}
	return sortBy + " " + sortOrder
}

func normalizeIdentity(v string) *string {
	trimmed := strings.TrimSpace(v)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}
