package handlers

import (
	"errors"
	"log/slog"

	"github.com/fraudshield/backend/internal/apperr"
	"github.com/fraudshield/backend/internal/dto"
	"github.com/gofiber/fiber/v2"
)

// fail maps a service error onto the wire. Domain errors carry their own
// status and code; anything else is a 500 with the detail kept server-side.
func fail(c *fiber.Ctx, err error) error {
	var appErr *apperr.Error
	if errors.As(err, &appErr) {
		return c.Status(appErr.Status).JSON(dto.ErrorResponse{
			Success: false,
			Error:   appErr.Message,
			Code:    appErr.Code,
		})
	}

	slog.Error("unhandled error", "path", c.Path(), "error", err)
	return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
		Success: false,
		Error:   "Internal server error",
	})
}

func ok(c *fiber.Ctx, status int, data interface{}) error {
	return c.Status(status).JSON(fiber.Map{
		"success": true,
		"data":    data,
	})
}

func okPaged(c *fiber.Ctx, data interface{}, pagination *dto.Pagination) error {
	return c.JSON(fiber.Map{
		"success":    true,
		"data":       data,
		"pagination": pagination,
	})
}

func badBody(c *fiber.Ctx) error {
	return fail(c, apperr.Validation("Invalid request body"))
}
