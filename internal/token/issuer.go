// Package token mints and verifies the JWT pair. Access and refresh tokens
// are signed with distinct secrets: compromise of the access secret is not
// enough to mint new sessions.
package token

import (
	"errors"
	"time"

	"github.com/fraudshield/backend/internal/apperr"
	"github.com/fraudshield/backend/internal/models"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const (
	TypeAccess  = "access"
	TypeRefresh = "refresh"
)

// Claims is the payload carried by both token types. Identity is the user's
// email or the admin's username; Role is empty for users.
type Claims struct {
	Kind     models.SubjectKind `json:"kind"`
	Identity string             `json:"identity"`
	Role     string             `json:"role,omitempty"`
	Typ      string             `json:"typ"`
	jwt.RegisteredClaims
}

// Pair is one issued access+refresh token set.
type Pair struct {
	AccessToken      string
	RefreshToken     string
	RefreshExpiresAt time.Time
}

type Issuer struct {
	accessSecret  []byte
	refreshSecret []byte
	accessTTL     time.Duration
	refreshTTL    time.Duration
}

func NewIssuer(accessSecret, refreshSecret string, accessTTL, refreshTTL time.Duration) *Issuer {
	return &Issuer{
		accessSecret:  []byte(accessSecret),
		refreshSecret: []byte(refreshSecret),
		accessTTL:     accessTTL,
		refreshTTL:    refreshTTL,
	}
}

// IssuePair mints both tokens for a subject. Pure function of the claims and
// the configured secrets; persistence is the token store's concern.
func (i *Issuer) IssuePair(subjectID uuid.UUID, kind models.SubjectKind, identity, role string) (*Pair, error) {
	now := time.Now()
	refreshExpiry := now.Add(i.refreshTTL)

	access, err := i.sign(subjectID, kind, identity, role, TypeAccess, now, now.Add(i.accessTTL), i.accessSecret)
	if err != nil {
		return nil, err
	}

	refresh, err := i.sign(subjectID, kind, identity, role, TypeRefresh, now, refreshExpiry, i.refreshSecret)
	if err != nil {
		return nil, err
	}

	return &Pair{
		AccessToken:      access,
		RefreshToken:     refresh,
		RefreshExpiresAt: refreshExpiry,
	}, nil
}

func (i *Issuer) sign(subjectID uuid.UUID, kind models.SubjectKind, identity, role, typ string, issuedAt, expiresAt time.Time, secret []byte) (string, error) {
	claims := &Claims{
		Kind:     kind,
		Identity: identity,
		Role:     role,
		Typ:      typ,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subjectID.String(),
			ID:        uuid.New().String(),
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
}

// VerifyAccess validates signature and expiry of an access token.
func (i *Issuer) VerifyAccess(tokenString string) (*Claims, error) {
	return i.verify(tokenString, TypeAccess, i.accessSecret)
}

// VerifyRefresh validates signature and expiry of a refresh token.
func (i *Issuer) VerifyRefresh(tokenString string) (*Claims, error) {
	return i.verify(tokenString, TypeRefresh, i.refreshSecret)
}

func (i *Issuer) verify(tokenString, wantTyp string, secret []byte) (*Claims, error) {
	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, apperr.TokenExpired()
		}
		return nil, apperr.TokenInvalid()
	}
	if !parsed.Valid || claims.Typ != wantTyp {
		return nil, apperr.TokenInvalid()
	}
	return claims, nil
}

// SubjectID parses the sub claim.
func (c *Claims) SubjectID() (uuid.UUID, error) {
	return uuid.Parse(c.Subject)
}
