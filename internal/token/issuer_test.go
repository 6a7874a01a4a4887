package token

import (
	"testing"
	"time"

	"github.com/fraudshield/backend/internal/apperr"
	"github.com/fraudshield/backend/internal/models"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testIssuer() *Issuer {
	return NewIssuer("access-secret", "refresh-secret", 30*time.Minute, 168*time.Hour)
}

func TestIssuePairRoundTrip(t *testing.T) {
	issuer := testIssuer()
	subjectID := uuid.New()

	pair, err := issuer.IssuePair(subjectID, models.SubjectUser, "user@example.com", "")
	require.NoError(t, err)
	require.NotEmpty(t, pair.AccessToken)
	require.NotEmpty(t, pair.RefreshToken)
	assert.NotEqual(t, pair.AccessToken, pair.RefreshToken)

	claims, err := issuer.VerifyAccess(pair.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, subjectID.String(), claims.Subject)
	assert.Equal(t, models.SubjectUser, claims.Kind)
	assert.Equal(t, "user@example.com", claims.Identity)
	assert.Equal(t, TypeAccess, claims.Typ)

	id, err := claims.SubjectID()
	require.NoError(t, err)
	assert.Equal(t, subjectID, id)

	refreshClaims, err := issuer.VerifyRefresh(pair.RefreshToken)
	require.NoError(t, err)
	assert.Equal(t, TypeRefresh, refreshClaims.Typ)
}

func TestVerifyRejectsWrongTokenType(t *testing.T) {
	issuer := testIssuer()
	pair, err := issuer.IssuePair(uuid.New(), models.SubjectAdmin, "root", "SUPER_ADMIN")
	require.NoError(t, err)

	// Tokens are signed with distinct secrets, so a refresh token can never
	// pass access verification and vice versa.
	_, err = issuer.VerifyAccess(pair.RefreshToken)
	assertCode(t, err, apperr.CodeTokenInvalid)

	_, err = issuer.VerifyRefresh(pair.AccessToken)
	assertCode(t, err, apperr.CodeTokenInvalid)
}

func TestVerifyExpiredAccessToken(t *testing.T) {
	issuer := NewIssuer("access-secret", "refresh-secret", -time.Minute, 168*time.Hour)
	pair, err := issuer.IssuePair(uuid.New(), models.SubjectUser, "user@example.com", "")
	require.NoError(t, err)

	_, err = issuer.VerifyAccess(pair.AccessToken)
	assertCode(t, err, apperr.CodeTokenExpired)
}

func TestVerifyTamperedToken(t *testing.T) {
	issuer := testIssuer()
	pair, err := issuer.IssuePair(uuid.New(), models.SubjectUser, "user@example.com", "")
	require.NoError(t, err)

	other := NewIssuer("different-secret", "refresh-secret", 30*time.Minute, 168*time.Hour)
	_, err = other.VerifyAccess(pair.AccessToken)
	assertCode(t, err, apperr.CodeTokenInvalid)

	_, err = issuer.VerifyAccess(pair.AccessToken + "x")
	assertCode(t, err, apperr.CodeTokenInvalid)
}

func assertCode(t *testing.T, err error, code string) {
	t.Helper()
	require.Error(t, err)
	appErr, ok := err.(*apperr.Error)
	require.True(t, ok, "expected *apperr.Error, got %T", err)
	assert.Equal(t, code, appErr.Code)
}
