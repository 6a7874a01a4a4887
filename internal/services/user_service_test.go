package services

import (
	"testing"
	"time"

	"github.com/fraudshield/backend/internal/apperr"
	"github.com/fraudshield/backend/internal/dto"
	"github.com/fraudshield/backend/internal/models"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newUserFixture(t *testing.T) (*UserService, *TokenStore, *ReportService, *gorm.DB) {
	t.Helper()
	db := newTestDB(t)
	store := NewTokenStore(db)
	return NewUserService(db, store, discardFiles{}), store, NewReportService(db, discardFiles{}), db
}

func TestUpdateProfileOnlySelfEditableFields(t *testing.T) {
	svc, _, _, db := newUserFixture(t)
	user := createTestUser(t, db, models.UserActive)

	updated, err := svc.UpdateProfile(user.ID, &dto.UpdateProfileRequest{
		Name:           "New Name",
		ProfilePicture: "http://pic/new.png",
	})
	require.NoError(t, err)
	assert.Equal(t, "New Name", updated.Name)
	assert.Equal(t, "http://pic/new.png", updated.ProfilePicture)
	// Email stays bound to the OAuth identity
	assert.Equal(t, user.Email, updated.Email)

	// Empty request is a no-op, not an error
	unchanged, err := svc.UpdateProfile(user.ID, &dto.UpdateProfileRequest{})
	require.NoError(t, err)
	assert.Equal(t, "New Name", unchanged.Name)
}

func TestUpdateStatusValidatesValue(t *testing.T) {
	svc, _, _, db := newUserFixture(t)
	user := createTestUser(t, db, models.UserActive)

	_, err := svc.UpdateStatus(user.ID, models.UserStatus("BANNED"))
	requireCode(t, err, apperr.CodeValidationError)

	_, err = svc.UpdateStatus(uuid.New(), models.UserSuspended)
	requireCode(t, err, apperr.CodeNotFound)
}

func TestSuspensionRevokesAllTokens(t *testing.T) {
	svc, store, _, db := newUserFixture(t)
	user := createTestUser(t, db, models.UserActive)

	require.NoError(t, store.Issue(user.ID, models.SubjectUser, "device-a", time.Now().Add(time.Hour)))
	require.NoError(t, store.Issue(user.ID, models.SubjectUser, "device-b", time.Now().Add(time.Hour)))

	suspended, err := svc.UpdateStatus(user.ID, models.UserSuspended)
	require.NoError(t, err)
	assert.Equal(t, models.UserSuspended, suspended.Status)

	count, err := store.CountForSubject(user.ID, models.SubjectUser)
	require.NoError(t, err)
	assert.Zero(t, count)

	// Reactivation does not resurrect anything
	reactivated, err := svc.UpdateStatus(user.ID, models.UserActive)
	require.NoError(t, err)
	assert.Equal(t, models.UserActive, reactivated.Status)
}

func TestDeleteUserCascades(t *testing.T) {
	svc, store, reports, db := newUserFixture(t)
	user := createTestUser(t, db, models.UserActive)

	report, err := reports.Submit(user.ID, &dto.SubmitReportRequest{
		Email:       "scam@example.com",
		Description: "Sold a phone, took the money, never shipped anything.",
	})
	require.NoError(t, err)
	_, err = reports.AttachImages(user.ID, report.ID, []StoredFile{
		{Filename: "a.jpg", Path: "/tmp/a.jpg", Size: 10},
	})
	require.NoError(t, err)
	require.NoError(t, store.Issue(user.ID, models.SubjectUser, "device-a", time.Now().Add(time.Hour)))

	require.NoError(t, svc.Delete(user.ID))

	_, err = svc.Get(user.ID)
	requireCode(t, err, apperr.CodeNotFound)

	var reportCount, imageCount int64
	require.NoError(t, db.Model(&models.FraudReport{}).Where("user_id = ?", user.ID).Count(&reportCount).Error)
	require.NoError(t, db.Model(&models.ReportImage{}).Where("report_id = ?", report.ID).Count(&imageCount).Error)
	assert.Zero(t, reportCount)
	assert.Zero(t, imageCount)

	tokens, err := store.CountForSubject(user.ID, models.SubjectUser)
	require.NoError(t, err)
	assert.Zero(t, tokens)
}

func TestListUsersSearchAndFilter(t *testing.T) {
	svc, _, _, db := newUserFixture(t)

	alice := createTestUser(t, db, models.UserActive)
	require.NoError(t, db.Model(alice).Update("name", "Alice Example").Error)
	bob := createTestUser(t, db, models.UserSuspended)
	require.NoError(t, db.Model(bob).Update("name", "Bob Example").Error)

	suspended, pagination, err := svc.List(dto.UserFilters{Status: "suspended"}, dto.ListOptions{})
	require.NoError(t, err)
	require.Len(t, suspended, 1)
	assert.Equal(t, bob.ID, suspended[0].ID)
	assert.EqualValues(t, 1, pagination.Total)

	byName, _, err := svc.List(dto.UserFilters{Search: "Alice"}, dto.ListOptions{})
	require.NoError(t, err)
	require.Len(t, byName, 1)
	assert.Equal(t, alice.ID, byName[0].ID)
}
