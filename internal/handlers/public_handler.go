package handlers

import (
	"strings"

	"github.com/fraudshield/backend/internal/apperr"
	"github.com/fraudshield/backend/internal/services"
	"github.com/gofiber/fiber/v2"
)

// PublicHandler serves the unauthenticated surface: only approved reports
// are ever visible here.
type PublicHandler struct {
	reports *services.ReportService
}

func NewPublicHandler(reports *services.ReportService) *PublicHandler {
	return &PublicHandler{reports: reports}
}

// Search looks up approved reports by identity or description fragment.
// Query params: q (required, min 3 chars), fields (csv of email,phone,facebook_id).
func (h *PublicHandler) Search(c *fiber.Ctx) error {
	query := strings.TrimSpace(c.Query("q"))
	if len(query) < 3 {
		return fail(c, apperr.Validation("query must be at least 3 characters"))
	}

	var fields []string
	if raw := c.Query("fields"); raw != "" {
		for _, f := range strings.Split(raw, ",") {
			if trimmed := strings.TrimSpace(f); trimmed != "" {
				fields = append(fields, trimmed)
			}
		}
	}

	reports, err := h.reports.Search(query, fields)
	if err != nil {
		return fail(c, err)
	}
	return ok(c, fiber.StatusOK, reports)
}

func (h *PublicHandler) Recent(c *fiber.Ctx) error {
	reports, err := h.reports.Recent(c.QueryInt("limit", 10))
	if err != nil {
		return fail(c, err)
	}
	return ok(c, fiber.StatusOK, reports)
}

func (h *PublicHandler) GetReport(c *fiber.Ctx) error {
	reportID, err := parseID(c, "id")
	if err != nil {
		return fail(c, err)
	}

	report, err := h.reports.PublicReport(reportID)
	if err != nil {
		return fail(c, err)
	}
	return ok(c, fiber.StatusOK, report)
}

func (h *PublicHandler) Stats(c *fiber.Ctx) error {
	stats, err := h.reports.SiteStats()
	if err != nil {
		return fail(c, err)
	}
	return ok(c, fiber.StatusOK, stats)
}
