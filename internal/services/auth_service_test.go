package services

import (
	"testing"

	"github.com/fraudshield/backend/internal/apperr"
	"github.com/fraudshield/backend/internal/models"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGoogleAuthCreatesUserOnFirstLogin(t *testing.T) {
	auth, _, db := newAuthFixture(t)

	profile := &GoogleProfile{ID: "google-123", Email: "new@example.com", Name: "New User", Picture: "http://pic"}
	resp, err := auth.GoogleAuth(profile)
	require.NoError(t, err)
	require.NotNil(t, resp.User)
	assert.NotEmpty(t, resp.AccessToken)
	assert.NotEmpty(t, resp.RefreshToken)
	assert.Equal(t, "Bearer", resp.TokenType)

	var user models.User
	require.NoError(t, db.Where("email = ?", "new@example.com").First(&user).Error)
	require.NotNil(t, user.GoogleID)
	assert.Equal(t, "google-123", *user.GoogleID)
	assert.Equal(t, models.UserActive, user.Status)
}

func TestGoogleAuthLinksExistingEmailAccount(t *testing.T) {
	auth, _, db := newAuthFixture(t)

	existing := models.User{ID: uuid.New(), Name: "Old", Email: "old@example.com", Status: models.UserActive}
	require.NoError(t, db.Create(&existing).Error)

	resp, err := auth.GoogleAuth(&GoogleProfile{ID: "google-999", Email: "old@example.com", Name: "Old"})
	require.NoError(t, err)
	assert.Equal(t, existing.ID, resp.User.ID)

	var user models.User
	require.NoError(t, db.First(&user, "id = ?", existing.ID).Error)
	require.NotNil(t, user.GoogleID)
	assert.Equal(t, "google-999", *user.GoogleID)
}

func TestGoogleAuthSuspendedUser(t *testing.T) {
	auth, _, db := newAuthFixture(t)
	user := createTestUser(t, db, models.UserSuspended)

	_, err := auth.GoogleAuth(&GoogleProfile{ID: *user.GoogleID, Email: user.Email, Name: user.Name})
	requireCode(t, err, apperr.CodeAccountSuspended)
}

func TestAdminLoginRoundTrip(t *testing.T) {
	auth, _, _ := newAuthFixture(t)

	_, err := auth.CreateAdmin("root", "correct horse battery", models.RoleSuperAdmin)
	require.NoError(t, err)

	resp, err := auth.AdminLogin("root", "correct horse battery")
	require.NoError(t, err)
	require.NotNil(t, resp.Admin)
	assert.Equal(t, "root", resp.Admin.Username)
	assert.Equal(t, string(models.RoleSuperAdmin), resp.Admin.Role)

	admin, err := auth.VerifyAdminAccess(resp.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "root", admin.Username)
	require.NotNil(t, admin.LastLoginAt)
}

func TestAdminLoginUniformFailure(t *testing.T) {
	auth, _, _ := newAuthFixture(t)

	_, err := auth.CreateAdmin("root", "correct horse battery", models.RoleModerator)
	require.NoError(t, err)

	_, errWrongPass := auth.AdminLogin("root", "wrong")
	_, errNoUser := auth.AdminLogin("ghost", "wrong")

	requireCode(t, errWrongPass, apperr.CodeInvalidCredentials)
	requireCode(t, errNoUser, apperr.CodeInvalidCredentials)
	// Identical message: responses must not leak whether the username exists.
	assert.Equal(t, errWrongPass.Error(), errNoUser.Error())
}

func TestCreateAdminValidation(t *testing.T) {
	auth, _, _ := newAuthFixture(t)

	_, err := auth.CreateAdmin("root", "pw", models.AdminRole("OVERLORD"))
	requireCode(t, err, apperr.CodeValidationError)

	_, err = auth.CreateAdmin("root", "correct horse battery", models.RoleModerator)
	require.NoError(t, err)

	_, err = auth.CreateAdmin("root", "another password", models.RoleModerator)
	requireCode(t, err, apperr.CodeConflict)
}

func TestRefreshRotatesToken(t *testing.T) {
	auth, _, db := newAuthFixture(t)
	user := createTestUser(t, db, models.UserActive)

	resp, err := auth.GoogleAuth(&GoogleProfile{ID: *user.GoogleID, Email: user.Email, Name: user.Name})
	require.NoError(t, err)

	rotated, err := auth.Refresh(resp.RefreshToken)
	require.NoError(t, err)
	assert.NotEqual(t, resp.RefreshToken, rotated.RefreshToken)

	// Replaying the consumed token fails
	_, err = auth.Refresh(resp.RefreshToken)
	requireCode(t, err, apperr.CodeTokenInvalid)

	// The rotated token still works
	_, err = auth.Refresh(rotated.RefreshToken)
	require.NoError(t, err)
}

func TestRefreshFailsClosedForSuspendedUser(t *testing.T) {
	auth, _, db := newAuthFixture(t)
	user := createTestUser(t, db, models.UserActive)

	resp, err := auth.GoogleAuth(&GoogleProfile{ID: *user.GoogleID, Email: user.Email, Name: user.Name})
	require.NoError(t, err)

	require.NoError(t, db.Model(&models.User{}).Where("id = ?", user.ID).
		Update("status", models.UserSuspended).Error)

	_, err = auth.Refresh(resp.RefreshToken)
	requireCode(t, err, apperr.CodeAccountSuspended)
}

func TestRefreshFailsClosedForDeletedUser(t *testing.T) {
	auth, _, db := newAuthFixture(t)
	user := createTestUser(t, db, models.UserActive)

	resp, err := auth.GoogleAuth(&GoogleProfile{ID: *user.GoogleID, Email: user.Email, Name: user.Name})
	require.NoError(t, err)

	require.NoError(t, db.Delete(&models.User{}, "id = ?", user.ID).Error)

	_, err = auth.Refresh(resp.RefreshToken)
	requireCode(t, err, apperr.CodeSubjectNotFound)
}

func TestRefreshRejectsAccessToken(t *testing.T) {
	auth, _, db := newAuthFixture(t)
	user := createTestUser(t, db, models.UserActive)

	resp, err := auth.GoogleAuth(&GoogleProfile{ID: *user.GoogleID, Email: user.Email, Name: user.Name})
	require.NoError(t, err)

	_, err = auth.Refresh(resp.AccessToken)
	requireCode(t, err, apperr.CodeTokenInvalid)
}

func TestVerifyUserAccessChecksCurrentStatus(t *testing.T) {
	auth, _, db := newAuthFixture(t)
	user := createTestUser(t, db, models.UserActive)

	resp, err := auth.GoogleAuth(&GoogleProfile{ID: *user.GoogleID, Email: user.Email, Name: user.Name})
	require.NoError(t, err)

	loaded, err := auth.VerifyUserAccess(resp.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, user.ID, loaded.ID)

	// Suspension takes effect on the very next request, long before expiry
	require.NoError(t, db.Model(&models.User{}).Where("id = ?", user.ID).
		Update("status", models.UserSuspended).Error)
	_, err = auth.VerifyUserAccess(resp.AccessToken)
	requireCode(t, err, apperr.CodeAccountSuspended)

	require.NoError(t, db.Delete(&models.User{}, "id = ?", user.ID).Error)
	_, err = auth.VerifyUserAccess(resp.AccessToken)
	requireCode(t, err, apperr.CodeSubjectNotFound)
}

func TestVerifyUserAccessRejectsAdminToken(t *testing.T) {
	auth, _, _ := newAuthFixture(t)

	_, err := auth.CreateAdmin("root", "correct horse battery", models.RoleSuperAdmin)
	require.NoError(t, err)
	resp, err := auth.AdminLogin("root", "correct horse battery")
	require.NoError(t, err)

	_, err = auth.VerifyUserAccess(resp.AccessToken)
	requireCode(t, err, apperr.CodeTokenInvalid)
}

func TestLogoutIsIdempotent(t *testing.T) {
	auth, store, db := newAuthFixture(t)
	user := createTestUser(t, db, models.UserActive)

	resp, err := auth.GoogleAuth(&GoogleProfile{ID: *user.GoogleID, Email: user.Email, Name: user.Name})
	require.NoError(t, err)

	require.NoError(t, auth.Logout(resp.RefreshToken))
	require.NoError(t, auth.Logout(resp.RefreshToken))
	require.NoError(t, auth.Logout(""))

	count, err := store.CountForSubject(user.ID, models.SubjectUser)
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestLoginPrunesTokensToBound(t *testing.T) {
	auth, store, db := newAuthFixture(t)
	user := createTestUser(t, db, models.UserActive)

	for i := 0; i < 8; i++ {
		_, err := auth.GoogleAuth(&GoogleProfile{ID: *user.GoogleID, Email: user.Email, Name: user.Name})
		require.NoError(t, err)
	}

	count, err := store.CountForSubject(user.ID, models.SubjectUser)
	require.NoError(t, err)
	assert.EqualValues(t, 5, count)
}
