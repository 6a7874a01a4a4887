package middleware

import (
	"github.com/fraudshield/backend/internal/apperr"
	"github.com/fraudshield/backend/internal/models"
	"github.com/gofiber/fiber/v2"
)

// SuperAdminRequired gates admin management endpoints. Runs after
// AdminRequired, so the admin is already resolved.
func SuperAdminRequired() fiber.Handler {
	return func(c *fiber.Ctx) error {
		admin := CurrentAdmin(c)
		if admin == nil {
			return fail(c, apperr.TokenInvalid())
		}
		if admin.Role != models.RoleSuperAdmin {
			return fail(c, apperr.Forbidden("Super admin access required"))
		}
		return c.Next()
	}
}
