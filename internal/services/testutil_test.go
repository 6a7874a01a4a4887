package services

import (
	"errors"
	"testing"
	"time"

	"github.com/fraudshield/backend/internal/apperr"
	"github.com/fraudshield/backend/internal/config"
	"github.com/fraudshield/backend/internal/models"
	"github.com/fraudshield/backend/internal/token"
	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// newTestDB opens an isolated in-memory database. Max one open connection:
// each :memory: connection would otherwise be a separate database.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(
		&models.User{},
		&models.Admin{},
		&models.RefreshToken{},
		&models.FraudReport{},
		&models.ReportImage{},
	))
	return db
}

func testConfig() *config.Config {
	return &config.Config{
		JWTAccessSecret:         "test-access-secret",
		JWTRefreshSecret:        "test-refresh-secret",
		JWTAccessExpiry:         30 * time.Minute,
		JWTRefreshExpiry:        168 * time.Hour,
		BcryptCost:              bcrypt.MinCost,
		MaxFileSize:             5 * 1024 * 1024,
		MaxFiles:                5,
		AllowedImageTypes:       []string{"image/jpeg", "image/png", "image/webp"},
		RefreshTokensPerSubject: 5,
	}
}

func newTestIssuer(cfg *config.Config) *token.Issuer {
	return token.NewIssuer(cfg.JWTAccessSecret, cfg.JWTRefreshSecret, cfg.JWTAccessExpiry, cfg.JWTRefreshExpiry)
}

func newAuthFixture(t *testing.T) (*AuthService, *TokenStore, *gorm.DB) {
	t.Helper()
	db := newTestDB(t)
	cfg := testConfig()
	store := NewTokenStore(db)
	auth := NewAuthService(db, cfg, newTestIssuer(cfg), store)
	return auth, store, db
}

func createTestUser(t *testing.T, db *gorm.DB, status models.UserStatus) *models.User {
	t.Helper()
	googleID := uuid.New().String()
	user := &models.User{
		ID:       uuid.New(),
		GoogleID: &googleID,
		Name:     "Test User",
		Email:    uuid.New().String() + "@example.com",
		Status:   status,
	}
	require.NoError(t, db.Create(user).Error)
	return user
}

// discardFiles satisfies FileRemover without touching disk.
type discardFiles struct{}

func (discardFiles) Delete(string) error { return nil }

func requireCode(t *testing.T, err error, code string) {
	t.Helper()
	require.Error(t, err)
	var appErr *apperr.Error
	require.True(t, errors.As(err, &appErr), "expected *apperr.Error, got %T", err)
	require.Equal(t, code, appErr.Code)
}
