package handlers

import (
	"github.com/fraudshield/backend/internal/dto"
	"github.com/fraudshield/backend/internal/middleware"
	"github.com/fraudshield/backend/internal/models"
	"github.com/fraudshield/backend/internal/services"
	"github.com/gofiber/fiber/v2"
)

// AdminHandler serves moderation: report review and user management.
type AdminHandler struct {
	reports *services.ReportService
	users   *services.UserService
}

func NewAdminHandler(reports *services.ReportService, users *services.UserService) *AdminHandler {
	return &AdminHandler{reports: reports, users: users}
}

func (h *AdminHandler) ListReports(c *fiber.Ctx) error {
	filters := dto.ReportFilters{
		Status:       c.Query("status"),
		IdentityType: c.Query("identity_type"),
		UserID:       c.Query("user_id"),
		DateFrom:     c.Query("date_from"),
		DateTo:       c.Query("date_to"),
	}

	reports, pagination, err := h.reports.List(filters, listOptions(c))
	if err != nil {
		return fail(c, err)
	}
	return okPaged(c, reports, pagination)
}

func (h *AdminHandler) PendingReports(c *fiber.Ctx) error {
	reports, pagination, err := h.reports.Pending(listOptions(c))
	if err != nil {
		return fail(c, err)
	}
	return okPaged(c, reports, pagination)
}

func (h *AdminHandler) GetReport(c *fiber.Ctx) error {
	reportID, err := parseID(c, "id")
	if err != nil {
		return fail(c, err)
	}

	report, err := h.reports.Get(reportID)
	if err != nil {
		return fail(c, err)
	}
	return ok(c, fiber.StatusOK, report)
}

func (h *AdminHandler) ReviewReport(c *fiber.Ctx) error {
	reportID, err := parseID(c, "id")
	if err != nil {
		return fail(c, err)
	}

	var req dto.ReviewReportRequest
	if err := c.BodyParser(&req); err != nil {
		return badBody(c)
	}

	admin := middleware.CurrentAdmin(c)
	report, err := h.reports.Review(reportID, admin.ID, models.ReportStatus(req.Status), req.RejectionReason)
	if err != nil {
		return fail(c, err)
	}
	return ok(c, fiber.StatusOK, report)
}

func (h *AdminHandler) ListUsers(c *fiber.Ctx) error {
	filters := dto.UserFilters{
		Status: c.Query("status"),
		Search: c.Query("search"),
	}

	users, pagination, err := h.users.List(filters, listOptions(c))
	if err != nil {
		return fail(c, err)
	}
	return okPaged(c, users, pagination)
}

func (h *AdminHandler) UpdateUserStatus(c *fiber.Ctx) error {
	userID, err := parseID(c, "id")
	if err != nil {
		return fail(c, err)
	}

	var req dto.UpdateUserStatusRequest
	if err := c.BodyParser(&req); err != nil {
		return badBody(c)
	}

	user, err := h.users.UpdateStatus(userID, models.UserStatus(req.Status))
	if err != nil {
		return fail(c, err)
	}
	return ok(c, fiber.StatusOK, user)
}

func (h *AdminHandler) DeleteUser(c *fiber.Ctx) error {
	userID, err := parseID(c, "id")
	if err != nil {
		return fail(c, err)
	}

	if err := h.users.Delete(userID); err != nil {
		return fail(c, err)
	}
	return ok(c, fiber.StatusOK, fiber.Map{"message": "User deleted"})
}
