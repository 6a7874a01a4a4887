package services

import (
	"testing"
	"time"

	"github.com/fraudshield/backend/internal/apperr"
	"github.com/fraudshield/backend/internal/models"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenStoreIssueAndResolve(t *testing.T) {
	store := NewTokenStore(newTestDB(t))
	subjectID := uuid.New()

	require.NoError(t, store.Issue(subjectID, models.SubjectUser, "raw-token", time.Now().Add(time.Hour)))

	record, err := store.Resolve("raw-token")
	require.NoError(t, err)
	assert.Equal(t, subjectID, record.SubjectID)
	assert.Equal(t, models.SubjectUser, record.SubjectKind)
	// Only the hash is at rest
	assert.NotContains(t, record.TokenHash, "raw-token")
	assert.Len(t, record.TokenHash, 64)
}

func TestTokenStoreResolveUnknown(t *testing.T) {
	store := NewTokenStore(newTestDB(t))
	_, err := store.Resolve("never-issued")
	requireCode(t, err, apperr.CodeTokenInvalid)
}

func TestTokenStoreResolveExpired(t *testing.T) {
	store := NewTokenStore(newTestDB(t))
	subjectID := uuid.New()

	require.NoError(t, store.Issue(subjectID, models.SubjectUser, "stale", time.Now().Add(-time.Minute)))

	_, err := store.Resolve("stale")
	requireCode(t, err, apperr.CodeTokenInvalid)

	// The expired row is gone, not just rejected
	count, err := store.CountForSubject(subjectID, models.SubjectUser)
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestTokenStoreRotateClaimsOldToken(t *testing.T) {
	store := NewTokenStore(newTestDB(t))
	subjectID := uuid.New()

	require.NoError(t, store.Issue(subjectID, models.SubjectUser, "first", time.Now().Add(time.Hour)))

	record, err := store.Rotate("first", "second", time.Now().Add(time.Hour))
	require.NoError(t, err)
	assert.Equal(t, subjectID, record.SubjectID)

	// The old token is dead: replaying it cannot mint another session.
	_, err = store.Resolve("first")
	requireCode(t, err, apperr.CodeTokenInvalid)
	_, err = store.Rotate("first", "third", time.Now().Add(time.Hour))
	requireCode(t, err, apperr.CodeTokenInvalid)

	_, err = store.Resolve("second")
	require.NoError(t, err)
}

func TestTokenStoreRevokeIdempotent(t *testing.T) {
	store := NewTokenStore(newTestDB(t))
	require.NoError(t, store.Issue(uuid.New(), models.SubjectAdmin, "tok", time.Now().Add(time.Hour)))

	require.NoError(t, store.Revoke("tok"))
	require.NoError(t, store.Revoke("tok"))

	_, err := store.Resolve("tok")
	requireCode(t, err, apperr.CodeTokenInvalid)
}

func TestTokenStoreRevokeAll(t *testing.T) {
	store := NewTokenStore(newTestDB(t))
	subjectID := uuid.New()

	require.NoError(t, store.Issue(subjectID, models.SubjectUser, "a", time.Now().Add(time.Hour)))
	require.NoError(t, store.Issue(subjectID, models.SubjectUser, "b", time.Now().Add(time.Hour)))
	// Same UUID as an admin subject is a different owner
	require.NoError(t, store.Issue(subjectID, models.SubjectAdmin, "c", time.Now().Add(time.Hour)))

	require.NoError(t, store.RevokeAll(subjectID, models.SubjectUser))

	userCount, err := store.CountForSubject(subjectID, models.SubjectUser)
	require.NoError(t, err)
	assert.Zero(t, userCount)

	adminCount, err := store.CountForSubject(subjectID, models.SubjectAdmin)
	require.NoError(t, err)
	assert.EqualValues(t, 1, adminCount)
}

func TestTokenStoreSweepExpired(t *testing.T) {
	store := NewTokenStore(newTestDB(t))
	subjectID := uuid.New()

	require.NoError(t, store.Issue(subjectID, models.SubjectUser, "live", time.Now().Add(time.Hour)))
	require.NoError(t, store.Issue(subjectID, models.SubjectUser, "dead1", time.Now().Add(-time.Hour)))
	require.NoError(t, store.Issue(subjectID, models.SubjectUser, "dead2", time.Now().Add(-time.Minute)))

	deleted, err := store.SweepExpired()
	require.NoError(t, err)
	assert.EqualValues(t, 2, deleted)

	// Second sweep is a no-op
	deleted, err = store.SweepExpired()
	require.NoError(t, err)
	assert.Zero(t, deleted)

	_, err = store.Resolve("live")
	require.NoError(t, err)
}

func TestTokenStorePruneExcess(t *testing.T) {
	store := NewTokenStore(newTestDB(t))
	subjectID := uuid.New()

	for i := 0; i < 8; i++ {
		require.NoError(t, store.Issue(subjectID, models.SubjectUser, "tok"+string(rune('a'+i)), time.Now().Add(time.Hour)))
		time.Sleep(2 * time.Millisecond)
	}

	deleted, err := store.PruneExcess(subjectID, models.SubjectUser, 5)
	require.NoError(t, err)
	assert.EqualValues(t, 3, deleted)

	count, err := store.CountForSubject(subjectID, models.SubjectUser)
	require.NoError(t, err)
	assert.EqualValues(t, 5, count)

	// Newest survives, oldest is pruned
	_, err = store.Resolve("tokh")
	require.NoError(t, err)
	_, err = store.Resolve("toka")
	requireCode(t, err, apperr.CodeTokenInvalid)
}
