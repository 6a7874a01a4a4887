package services

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/fraudshield/backend/internal/apperr"
	"github.com/fraudshield/backend/internal/config"
	"github.com/fraudshield/backend/internal/dto"
	"github.com/fraudshield/backend/internal/models"
	"github.com/fraudshield/backend/internal/token"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type AuthService struct {
	db     *gorm.DB
	cfg    *config.Config
	issuer *token.Issuer
	tokens *TokenStore
}

func NewAuthService(db *gorm.DB, cfg *config.Config, issuer *token.Issuer, tokens *TokenStore) *AuthService {
	return &AuthService{db: db, cfg: cfg, issuer: issuer, tokens: tokens}
}

// GoogleAuth signs a user in from a verified Google profile, creating the
// account on first login and backfilling the Google ID on accounts that were
// matched by email.
func (s *AuthService) GoogleAuth(profile *GoogleProfile) (*dto.AuthResponse, error) {
	var user models.User
	err := s.db.Where("google_id = ? OR email = ?", profile.ID, profile.Email).First(&user).Error
	if err != nil {
		user = models.User{
			ID:             uuid.New(),
			GoogleID:       &profile.ID,
			Name:           profile.Name,
			Email:          profile.Email,
			ProfilePicture: profile.Picture,
			Status:         models.UserActive,
		}
		if err := s.db.Create(&user).Error; err != nil {
			return nil, fmt.Errorf("failed to create user: %w", err)
		}
		slog.Info("user created via google oauth", "user_id", user.ID.String())
	} else if user.GoogleID == nil || *user.GoogleID == "" {
		updates := map[string]interface{}{"google_id": profile.ID}
		if user.ProfilePicture == "" && profile.Picture != "" {
			updates["profile_picture"] = profile.Picture
		}
		if err := s.db.Model(&user).Updates(updates).Error; err != nil {
			return nil, fmt.Errorf("failed to link google account: %w", err)
		}
		user.GoogleID = &profile.ID
	}

	if user.Status == models.UserSuspended {
		return nil, apperr.AccountSuspended()
	}

	pair, err := s.issueFor(user.ID, models.SubjectUser, user.Email, "")
	if err != nil {
		return nil, err
	}

	return &dto.AuthResponse{
		TokenType:    "Bearer",
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
		ExpiresAt:    pair.RefreshExpiresAt,
		User: &dto.UserResponse{
			ID:             user.ID,
			Name:           user.Name,
			Email:          user.Email,
			ProfilePicture: user.ProfilePicture,
		},
	}, nil
}

// AdminLogin authenticates an admin. Unknown username and wrong password
// return the identical error so usernames cannot be enumerated.
func (s *AuthService) AdminLogin(username, password string) (*dto.AuthResponse, error) {
	var admin models.Admin
	if err := s.db.Where("username = ?", username).First(&admin).Error; err != nil {
		return nil, apperr.InvalidCredentials()
	}

	if err := bcrypt.CompareHashAndPassword([]byte(admin.PasswordHash), []byte(password)); err != nil {
		return nil, apperr.InvalidCredentials()
	}

	now := time.Now()
	if err := s.db.Model(&admin).Update("last_login_at", now).Error; err != nil {
		return nil, fmt.Errorf("failed to update last login: %w", err)
	}

	pair, err := s.issueFor(admin.ID, models.SubjectAdmin, admin.Username, string(admin.Role))
	if err != nil {
		return nil, err
	}

	return &dto.AuthResponse{
		TokenType:    "Bearer",
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
		ExpiresAt:    pair.RefreshExpiresAt,
		Admin: &dto.AdminResponse{
			ID:       admin.ID,
			Username: admin.Username,
			Role:     string(admin.Role),
		},
	}, nil
}

// Refresh swaps a refresh token for a new pair. The old token is claimed by
// a compare-and-delete, so presenting the same token twice cannot yield two
// live sessions. The subject's current status is re-checked: a suspended or
// deleted subject fails closed even with a valid token.
func (s *AuthService) Refresh(refreshToken string) (*dto.TokenPairResponse, error) {
	claims, err := s.issuer.VerifyRefresh(refreshToken)
	if err != nil {
		return nil, err
	}

	record, err := s.tokens.Resolve(refreshToken)
	if err != nil {
		return nil, err
	}
	if claims.Subject != record.SubjectID.String() || claims.Kind != record.SubjectKind {
		return nil, apperr.TokenInvalid()
	}

	identity, role, err := s.resolveSubject(record.SubjectID, record.SubjectKind)
	if err != nil {
		return nil, err
	}

	pair, err := s.issuer.IssuePair(record.SubjectID, record.SubjectKind, identity, role)
	if err != nil {
		return nil, fmt.Errorf("failed to issue token pair: %w", err)
	}

	if _, err := s.tokens.Rotate(refreshToken, pair.RefreshToken, pair.RefreshExpiresAt); err != nil {
		return nil, err
	}

	return &dto.TokenPairResponse{
		TokenType:    "Bearer",
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
		ExpiresAt:    pair.RefreshExpiresAt,
	}, nil
}

// Logout revokes a refresh token. Idempotent: revoking an unknown token
// still succeeds.
func (s *AuthService) Logout(refreshToken string) error {
	if refreshToken == "" {
		return nil
	}
	return s.tokens.Revoke(refreshToken)
}

// VerifyUserAccess is the session validator for user routes: signature and
// expiry via the issuer, then a fresh DB load so suspension takes effect on
// the next request rather than at token expiry.
func (s *AuthService) VerifyUserAccess(accessToken string) (*models.User, error) {
	claims, err := s.issuer.VerifyAccess(accessToken)
	if err != nil {
		return nil, err
	}
	if claims.Kind != models.SubjectUser {
		return nil, apperr.TokenInvalid()
	}

	subjectID, err := claims.SubjectID()
	if err != nil {
		return nil, apperr.TokenInvalid()
	}

	return s.LoadActiveUser(subjectID)
}

// LoadActiveUser re-resolves a user and fails closed when the row is gone or
// the account is suspended.
func (s *AuthService) LoadActiveUser(userID uuid.UUID) (*models.User, error) {
	var user models.User
	if err := s.db.First(&user, "id = ?", userID).Error; err != nil {
		return nil, apperr.SubjectNotFound()
	}
	if user.Status != models.UserActive {
		return nil, apperr.AccountSuspended()
	}
	return &user, nil
}

// VerifyAdminAccess is the session validator for admin routes.
func (s *AuthService) VerifyAdminAccess(accessToken string) (*models.Admin, error) {
	claims, err := s.issuer.VerifyAccess(accessToken)
	if err != nil {
		return nil, err
	}
	if claims.Kind != models.SubjectAdmin {
		return nil, apperr.TokenInvalid()
	}

	subjectID, err := claims.SubjectID()
	if err != nil {
		return nil, apperr.TokenInvalid()
	}

	return s.LoadAdmin(subjectID)
}

func (s *AuthService) LoadAdmin(adminID uuid.UUID) (*models.Admin, error) {
	var admin models.Admin
	if err := s.db.First(&admin, "id = ?", adminID).Error; err != nil {
		return nil, apperr.SubjectNotFound()
	}
	return &admin, nil
}

// CreateAdmin enrolls a new admin account. Callers gate this behind the
// SUPER_ADMIN check.
func (s *AuthService) CreateAdmin(username, password string, role models.AdminRole) (*models.Admin, error) {
	if !models.ValidAdminRole(role) {
		return nil, apperr.Validation("role must be MODERATOR or SUPER_ADMIN")
	}

	var existing models.Admin
	if err := s.db.Where("username = ?", username).First(&existing).Error; err == nil {
		return nil, apperr.Conflict("Admin with this username already exists")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cfg.BcryptCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	admin := models.Admin{
		ID:           uuid.New(),
		Username:     username,
		PasswordHash: string(hash),
		Role:         role,
	}
	if err := s.db.Create(&admin).Error; err != nil {
		return nil, fmt.Errorf("failed to create admin: %w", err)
	}
	return &admin, nil
}

// issueFor mints a pair, persists the refresh half and prunes the subject's
// token set down to the configured bound.
func (s *AuthService) issueFor(subjectID uuid.UUID, kind models.SubjectKind, identity, role string) (*token.Pair, error) {
	pair, err := s.issuer.IssuePair(subjectID, kind, identity, role)
	if err != nil {
		return nil, fmt.Errorf("failed to issue token pair: %w", err)
	}

	if err := s.tokens.Issue(subjectID, kind, pair.RefreshToken, pair.RefreshExpiresAt); err != nil {
		return nil, err
	}

	if _, err := s.tokens.PruneExcess(subjectID, kind, s.cfg.RefreshTokensPerSubject); err != nil {
		slog.Error("failed to prune refresh tokens", "subject_id", subjectID.String(), "error", err)
	}

	return pair, nil
}

// resolveSubject re-loads the token's owner and enforces its current status.
func (s *AuthService) resolveSubject(subjectID uuid.UUID, kind models.SubjectKind) (identity, role string, err error) {
	switch kind {
	case models.SubjectUser:
		user, err := s.LoadActiveUser(subjectID)
		if err != nil {
			return "", "", err
		}
		return user.Email, "", nil
	case models.SubjectAdmin:
		admin, err := s.LoadAdmin(subjectID)
		if err != nil {
			return "", "", err
		}
		return admin.Username, string(admin.Role), nil
	default:
		return "", "", apperr.TokenInvalid()
	}
}
