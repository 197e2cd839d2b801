package handlers

import (
	"fmt"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/passport-portal/internal/api/dto"
	"github.com/spec-kit/passport-portal/internal/api/flash"
	"github.com/spec-kit/passport-portal/internal/service"
)

// AdminHandler exposes the review endpoints.
type AdminHandler struct {
	service *service.ApplicationService
}

// NewAdminHandler constructs handler.
func NewAdminHandler(applicationService *service.ApplicationService) *AdminHandler {
	return &AdminHandler{service: applicationService}
}

// Dashboard handles GET /admin/dashboard: every application, newest first.
func (h *AdminHandler) Dashboard(c *fiber.Ctx) error {
	caller, principal, err := callerFrom(c)
	if err != nil {
		return err
	}

	apps, err := h.service.ListAll(c.Context(), caller)
	if err != nil {
		return err
	}

	view := fiber.Map{
		"page":         "admin_dashboard",
		"user":         userView(principal),
		"applications": dto.NewApplicationViews(apps),
	}
	if notice := flash.Pop(c); notice != nil {
		view["flash"] = notice
	}
	return c.JSON(view)
}

// ReviewForm handles GET /admin/application/:id.
func (h *AdminHandler) ReviewForm(c *fiber.Ctx) error {
	caller, principal, err := callerFrom(c)
	if err != nil {
		return err
	}
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}

	detail, err := h.service.GetDetail(c.Context(), caller, id)
	if err != nil {
		return err
	}

	view := fiber.Map{
		"page":        "admin_review",
		"user":        userView(principal),
		"application": dto.NewApplicationView(&detail.Application),
	}
	docs := make([]dto.DocumentView, 0, len(detail.Documents))
	for i := range detail.Documents {
		docs = append(docs, dto.NewDocumentView(&detail.Documents[i]))
	}
	view["documents"] = docs
	if detail.Appointment != nil {
		view["appointment"] = dto.NewAppointmentView(detail.Appointment)
	}
	if detail.Payment != nil {
		view["payment"] = dto.NewPaymentView(detail.Payment)
	}
	if notice := flash.Pop(c); notice != nil {
		view["flash"] = notice
	}
	return c.JSON(view)
}

// SetStatus handles POST /admin/application/:id: persists an arbitrary
// status string.
func (h *AdminHandler) SetStatus(c *fiber.Ctx) error {
	caller, _, err := callerFrom(c)
	if err != nil {
		return err
	}
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}

	var req dto.AdminStatusRequest
	if err := c.BodyParser(&req); err != nil {
		return flash.Redirect(c, fmt.Sprintf("/admin/application/%d", id), flash.CategoryDanger, "Invalid form submission")
	}

	if _, err := h.service.SetStatus(c.Context(), caller, id, req.Status); err != nil {
		return redirectRecoverable(c, err, fmt.Sprintf("/admin/application/%d", id))
	}

	return flash.Redirect(c, fmt.Sprintf("/admin/application/%d", id),
		flash.CategorySuccess, "Status updated")
}
