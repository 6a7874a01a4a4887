package middleware

import (
	"errors"

	"github.com/fraudshield/backend/internal/apperr"
	"github.com/fraudshield/backend/internal/config"
	"github.com/fraudshield/backend/internal/dto"
	"github.com/fraudshield/backend/internal/models"
	"github.com/fraudshield/backend/internal/services"
	"github.com/fraudshield/backend/internal/token"
	jwtware "github.com/gofiber/contrib/jwt"
	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
)

const (
	localsUser  = "currentUser"
	localsAdmin = "currentAdmin"
)

// JWTProtected verifies the access token's signature and expiry. Expired and
// malformed tokens get distinct codes so clients know when to refresh.
func JWTProtected(cfg *config.Config) fiber.Handler {
	return jwtware.New(jwtware.Config{
		SigningKey: jwtware.SigningKey{Key: []byte(cfg.JWTAccessSecret)},
		Claims:     &token.Claims{},
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			e := apperr.TokenInvalid()
			if errors.Is(err, jwt.ErrTokenExpired) {
				e = apperr.TokenExpired()
			}
			return fail(c, e)
		},
	})
}

// UserRequired resolves the token's subject against the database on every
// request. A user suspended or deleted after the token was minted fails
// closed here, long before the token expires.
func UserRequired(auth *services.AuthService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		claims, err := accessClaims(c)
		if err != nil {
			return fail(c, apperr.TokenInvalid())
		}
		if claims.Kind != models.SubjectUser {
			return fail(c, apperr.TokenInvalid())
		}

		subjectID, err := claims.SubjectID()
		if err != nil {
			return fail(c, apperr.TokenInvalid())
		}

		user, err := auth.LoadActiveUser(subjectID)
		if err != nil {
			var appErr *apperr.Error
			if errors.As(err, &appErr) {
				return fail(c, appErr)
			}
			return fail(c, apperr.TokenInvalid())
		}

		c.Locals(localsUser, user)
		return c.Next()
	}
}

// AdminRequired resolves the token's subject as an admin account.
func AdminRequired(auth *services.AuthService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		claims, err := accessClaims(c)
		if err != nil {
			return fail(c, apperr.TokenInvalid())
		}
		if claims.Kind != models.SubjectAdmin {
			return fail(c, apperr.TokenInvalid())
		}

		subjectID, err := claims.SubjectID()
		if err != nil {
			return fail(c, apperr.TokenInvalid())
		}

		admin, err := auth.LoadAdmin(subjectID)
		if err != nil {
			var appErr *apperr.Error
			if errors.As(err, &appErr) {
				return fail(c, appErr)
			}
			return fail(c, apperr.TokenInvalid())
		}

		c.Locals(localsAdmin, admin)
		return c.Next()
	}
}

// CurrentUser returns the user resolved by UserRequired.
func CurrentUser(c *fiber.Ctx) *models.User {
	user, _ := c.Locals(localsUser).(*models.User)
	return user
}

// CurrentAdmin returns the admin resolved by AdminRequired.
func CurrentAdmin(c *fiber.Ctx) *models.Admin {
	admin, _ := c.Locals(localsAdmin).(*models.Admin)
	return admin
}

func accessClaims(c *fiber.Ctx) (*token.Claims, error) {
	parsed, ok := c.Locals("user").(*jwt.Token)
	if !ok || parsed == nil {
		return nil, errors.New("missing token")
	}
	claims, ok := parsed.Claims.(*token.Claims)
	if !ok {
		return nil, errors.New("unexpected claims type")
	}
	if claims.Typ != token.TypeAccess {
		return nil, errors.New("not an access token")
	}
	return claims, nil
}

func fail(c *fiber.Ctx, e *apperr.Error) error {
	return c.Status(e.Status).JSON(dto.ErrorResponse{
		Success: false,
		Error:   e.Message,
		Code:    e.Code,
	})
}
