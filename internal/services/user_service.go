package services

import (
	"fmt"
	"log/slog"
	"math"
	"strings"

	"github.com/fraudshield/backend/internal/apperr"
	"github.com/fraudshield/backend/internal/dto"
	"github.com/fraudshield/backend/internal/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type UserService struct {
	db     *gorm.DB
	tokens *TokenStore
	files  FileRemover
}

func NewUserService(db *gorm.DB, tokens *TokenStore, files FileRemover) *UserService {
	return &UserService{db: db, tokens: tokens, files: files}
}

func (s *UserService) Get(userID uuid.UUID) (*models.User, error) {
	var user models.User
	if err := s.db.First(&user, "id = ?", userID).Error; err != nil {
		return nil, apperr.NotFound("User not found")
	}
	return &user, nil
}

// UpdateProfile changes only the self-editable fields. Email and Google ID
// stay bound to the OAuth identity.
func (s *UserService) UpdateProfile(userID uuid.UUID, req *dto.UpdateProfileRequest) (*models.User, error) {
	user, err := s.Get(userID)
	if err != nil {
		return nil, err
	}

	updates := map[string]interface{}{}
	if name := strings.TrimSpace(req.Name); name != "" {
		if len(name) > 100 {
			return nil, apperr.Validation("name must be at most 100 characters")
		}
		updates["name"] = name
	}
	if req.ProfilePicture != "" {
		updates["profile_picture"] = req.ProfilePicture
	}
	if len(updates) == 0 {
		return user, nil
	}

	if err := s.db.Model(user).Updates(updates).Error; err != nil {
		return nil, fmt.Errorf("failed to update profile: %w", err)
	}
	return s.Get(userID)
}

// List is the admin user listing with status filter and name/email search.
func (s *UserService) List(filters dto.UserFilters, opts dto.ListOptions) ([]models.User, *dto.Pagination, error) {
	query := s.db.Model(&models.User{})

	if filters.Status != "" {
		query = query.Where("status = ?", strings.ToUpper(filters.Status))
	}
	if search := strings.TrimSpace(filters.Search); search != "" {
		pattern := "%" + search + "%"
		query = query.Where("name LIKE ? OR email LIKE ?", pattern, pattern)
	}

	page, limit := normalizePagination(opts.Page, opts.Limit)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, nil, err
	}

	var users []models.User
	err := query.Order(orderClause(opts.SortBy, opts.SortOrder)).
		Offset((page - 1) * limit).
		Limit(limit).
		Find(&users).Error
	if err != nil {
		return nil, nil, err
	}

	return users, &dto.Pagination{
		Page:  page,
		Limit: limit,
		Total: total,
		Pages: int(math.Ceil(float64(total) / float64(limit))),
	}, nil
}

// UpdateStatus switches a user between ACTIVE and SUSPENDED. Suspension also
// revokes every refresh token the user holds, so no device can mint new
// access tokens afterwards.
func (s *UserService) UpdateStatus(userID uuid.UUID, status models.UserStatus) (*models.User, error) {
	if !models.ValidUserStatus(status) {
		return nil, apperr.Validation("status must be ACTIVE or SUSPENDED")
	}

	user, err := s.Get(userID)
	if err != nil {
		return nil, err
	}

	if err := s.db.Model(user).Update("status", status).Error; err != nil {
		return nil, fmt.Errorf("failed to update user status: %w", err)
	}
	user.Status = status

	if status == models.UserSuspended {
		if err := s.tokens.RevokeAll(user.ID, models.SubjectUser); err != nil {
			slog.Error("failed to revoke tokens for suspended user", "user_id", user.ID.String(), "error", err)
		}
	}
	return user, nil
}

// Delete removes a user together with their reports, report images and
// refresh tokens. Row deletion runs in one transaction; files are removed
// from disk afterwards.
func (s *UserService) Delete(userID uuid.UUID) error {
	if _, err := s.Get(userID); err != nil {
		return err
	}

	var images []models.ReportImage
	err := s.db.
		Joins("JOIN fraud_reports ON fraud_reports.id = report_images.report_id").
		Where("fraud_reports.user_id = ?", userID).
		Find(&images).Error
	if err != nil {
		return fmt.Errorf("failed to load user report images: %w", err)
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		var reportIDs []uuid.UUID
		if err := tx.Model(&models.FraudReport{}).
			Where("user_id = ?", userID).
			Pluck("id", &reportIDs).Error; err != nil {
			return err
		}
		if len(reportIDs) > 0 {
			if err := tx.Where("report_id IN ?", reportIDs).Delete(&models.ReportImage{}).Error; err != nil {
				return err
			}
			if err := tx.Where("id IN ?", reportIDs).Delete(&models.FraudReport{}).Error; err != nil {
				return err
			}
		}
		if err := tx.Where("subject_id = ? AND subject_kind = ?", userID, models.SubjectUser).
			Delete(&models.RefreshToken{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.User{}, "id = ?", userID).Error
	})
	if err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}

	for _, img := range images {
		if err := s.files.Delete(img.Path); err != nil {
			slog.Error("failed to delete report image file", "path", img.Path, "error", err)
		}
	}
	return nil
}
