package services

import (
	"crypto/sha256"
	"fmt"
	"time"

	"github.com/fraudshield/backend/internal/apperr"
	"github.com/fraudshield/backend/internal/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// TokenStore persists refresh tokens. Only the SHA-256 hash of a token is
// stored; every lookup hashes the presented value first.
type TokenStore struct {
	db *gorm.DB
}

func NewTokenStore(db *gorm.DB) *TokenStore {
	return &TokenStore{db: db}
}

// Issue persists a new refresh token row for a subject.
func (s *TokenStore) Issue(subjectID uuid.UUID, kind models.SubjectKind, token string, expiresAt time.Time) error {
	record := models.RefreshToken{
		ID:          uuid.New(),
		SubjectID:   subjectID,
		SubjectKind: kind,
		TokenHash:   hashToken(token),
		ExpiresAt:   expiresAt,
	}
	if err := s.db.Create(&record).Error; err != nil {
		return fmt.Errorf("failed to store refresh token: %w", err)
	}
	return nil
}

// Resolve returns the row matching a raw token value. Unknown and expired
// tokens both fail TOKEN_INVALID; expired rows are deleted on sight so a
// replayed stale token cannot linger.
func (s *TokenStore) Resolve(token string) (*models.RefreshToken, error) {
	var record models.RefreshToken
	if err := s.db.Where("token_hash = ?", hashToken(token)).First(&record).Error; err != nil {
		return nil, apperr.TokenInvalid()
	}
	if time.Now().After(record.ExpiresAt) {
		s.db.Delete(&record)
		return nil, apperr.TokenInvalid()
	}
	return &record, nil
}

// Rotate atomically swaps oldToken for newToken. The DELETE on the old hash
// is the claim: exactly one of two concurrent refresh calls presenting the
// same token gets RowsAffected == 1, the other fails TOKEN_INVALID.
func (s *TokenStore) Rotate(oldToken, newToken string, newExpiry time.Time) (*models.RefreshToken, error) {
	old, err := s.Resolve(oldToken)
	if err != nil {
		return nil, err
	}

	res := s.db.Where("token_hash = ?", old.TokenHash).Delete(&models.RefreshToken{})
	if res.Error != nil {
		return nil, fmt.Errorf("failed to rotate refresh token: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		// Lost the race to a concurrent refresh with the same token.
		return nil, apperr.TokenInvalid()
	}

	record := models.RefreshToken{
		ID:          uuid.New(),
		SubjectID:   old.SubjectID,
		SubjectKind: old.SubjectKind,
		TokenHash:   hashToken(newToken),
		ExpiresAt:   newExpiry,
	}
	if err := s.db.Create(&record).Error; err != nil {
		return nil, fmt.Errorf("failed to store rotated refresh token: %w", err)
	}
	return &record, nil
}

// Revoke deletes a single token (logout). Deleting a token that is already
// gone is not an error.
func (s *TokenStore) Revoke(token string) error {
	return s.db.Where("token_hash = ?", hashToken(token)).Delete(&models.RefreshToken{}).Error
}

// RevokeAll deletes every token held by a subject, e.g. on suspension.
func (s *TokenStore) RevokeAll(subjectID uuid.UUID, kind models.SubjectKind) error {
	return s.db.Where("subject_id = ? AND subject_kind = ?", subjectID, kind).
		Delete(&models.RefreshToken{}).Error
}

// SweepExpired deletes all rows past expiry. Idempotent and safe to run
// concurrently with issuance.
func (s *TokenStore) SweepExpired() (int64, error) {
	res := s.db.Where("expires_at < ?", time.Now()).Delete(&models.RefreshToken{})
	return res.RowsAffected, res.Error
}

// PruneExcess keeps only the `keep` newest tokens for a subject and deletes
// the rest, bounding the multi-device set.
func (s *TokenStore) PruneExcess(subjectID uuid.UUID, kind models.SubjectKind, keep int) (int64, error) {
	var keepIDs []uuid.UUID
	err := s.db.Model(&models.RefreshToken{}).
		Where("subject_id = ? AND subject_kind = ?", subjectID, kind).
		Order("created_at DESC").
		Limit(keep).
		Pluck("id", &keepIDs).Error
	if err != nil {
		return 0, err
	}

	query := s.db.Where("subject_id = ? AND subject_kind = ?", subjectID, kind)
	if len(keepIDs) > 0 {
		query = query.Where("id NOT IN ?", keepIDs)
	}
	res := query.Delete(&models.RefreshToken{})
	return res.RowsAffected, res.Error
}

// CountForSubject returns the number of live rows for a subject.
func (s *TokenStore) CountForSubject(subjectID uuid.UUID, kind models.SubjectKind) (int64, error) {
	var count int64
	err := s.db.Model(&models.RefreshToken{}).
		Where("subject_id = ? AND subject_kind = ?", subjectID, kind).
		Count(&count).Error
	return count, err
}

func hashToken(token string) string {
	h := sha256.Sum256([]byte(token))
	return fmt.Sprintf("%x", h)
}
