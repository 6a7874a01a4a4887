package handlers

import (
	"github.com/fraudshield/backend/internal/apperr"
	"github.com/fraudshield/backend/internal/dto"
	"github.com/fraudshield/backend/internal/middleware"
	"github.com/fraudshield/backend/internal/models"
	"github.com/fraudshield/backend/internal/services"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// ReportHandler serves the report endpoints owned by the reporting user.
type ReportHandler struct {
	reports *services.ReportService
	files   *services.FileService
}

func NewReportHandler(reports *services.ReportService, files *services.FileService) *ReportHandler {
	return &ReportHandler{reports: reports, files: files}
}

func (h *ReportHandler) Submit(c *fiber.Ctx) error {
	var req dto.SubmitReportRequest
	if err := c.BodyParser(&req); err != nil {
		return badBody(c)
	}

	user := middleware.CurrentUser(c)
	report, err := h.reports.Submit(user.ID, &req)
	if err != nil {
		return fail(c, err)
	}
	return ok(c, fiber.StatusCreated, report)
}

// UploadImages attaches evidence files to a PENDING report the caller owns.
// Multipart form, field name "images".
func (h *ReportHandler) UploadImages(c *fiber.Ctx) error {
	reportID, err := parseID(c, "id")
	if err != nil {
		return fail(c, err)
	}

	form, err := c.MultipartForm()
	if err != nil {
		return fail(c, apperr.Validation("multipart form with an images field is required"))
	}
	files := form.File["images"]

	stored, err := h.files.StoreBatch(files)
	if err != nil {
		return fail(c, err)
	}

	user := middleware.CurrentUser(c)
	images, err := h.reports.AttachImages(user.ID, reportID, stored)
	if err != nil {
		// The report refused the images; drop the files just written.
		for _, sf := range stored {
			_ = h.files.Delete(sf.Path)
		}
		return fail(c, err)
	}

	resp := make([]dto.ImageResponse, 0, len(images))
	for _, img := range images {
		resp = append(resp, dto.ImageResponse{
			ImageID:  img.ID.String(),
			Filename: img.Filename,
			Size:     img.Size,
		})
	}
	return ok(c, fiber.StatusCreated, resp)
}

func (h *ReportHandler) List(c *fiber.Ctx) error {
	user := middleware.CurrentUser(c)
	reports, pagination, err := h.reports.UserReports(user.ID, listOptions(c))
	if err != nil {
		return fail(c, err)
	}
	return okPaged(c, reports, pagination)
}

func (h *ReportHandler) Get(c *fiber.Ctx) error {
	reportID, err := parseID(c, "id")
	if err != nil {
		return fail(c, err)
	}

	user := middleware.CurrentUser(c)
	report, err := h.reports.UserReport(user.ID, reportID)
	if err != nil {
		return fail(c, err)
	}
	return ok(c, fiber.StatusOK, report)
}

func (h *ReportHandler) UpdateStatus(c *fiber.Ctx) error {
	reportID, err := parseID(c, "id")
	if err != nil {
		return fail(c, err)
	}

	var req dto.UpdateOwnStatusRequest
	if err := c.BodyParser(&req); err != nil {
		return badBody(c)
	}

	user := middleware.CurrentUser(c)
	report, err := h.reports.UpdateOwnStatus(user.ID, reportID, models.ReportStatus(req.Status))
	if err != nil {
		return fail(c, err)
	}
	return ok(c, fiber.StatusOK, report)
}

func (h *ReportHandler) Delete(c *fiber.Ctx) error {
	reportID, err := parseID(c, "id")
	if err != nil {
		return fail(c, err)
	}

	user := middleware.CurrentUser(c)
	if err := h.reports.DeleteOwn(user.ID, reportID); err != nil {
		return fail(c, err)
	}
	return ok(c, fiber.StatusOK, fiber.Map{"message": "Report deleted"})
}

func parseID(c *fiber.Ctx, param string) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Params(param))
	if err != nil {
		return uuid.Nil, apperr.Validation("invalid id parameter")
	}
	return id, nil
}

func listOptions(c *fiber.Ctx) dto.ListOptions {
	return dto.ListOptions{
		Page:      c.QueryInt("page", 1),
		Limit:     c.QueryInt("limit", 10),
		SortBy:    c.Query("sort_by"),
		SortOrder: c.Query("sort_order"),
	}
}
