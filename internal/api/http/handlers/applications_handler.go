package handlers

import (
	"fmt"
	"mime/multipart"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/passport-portal/internal/api/dto"
	"github.com/spec-kit/passport-portal/internal/api/flash"
	"github.com/spec-kit/passport-portal/internal/service"
)

// ApplicationsHandler manages the applicant-facing lifecycle endpoints.
type ApplicationsHandler struct {
	service *service.ApplicationService
}

// NewApplicationsHandler constructs handler.
func NewApplicationsHandler(applicationService *service.ApplicationService) *ApplicationsHandler {
	return &ApplicationsHandler{service: applicationService}
}

// Dashboard handles GET /dashboard: the caller's latest application, if any.
func (h *ApplicationsHandler) Dashboard(c *fiber.Ctx) error {
	caller, principal, err := callerFrom(c)
	if err != nil {
		return err
	}

	app, err := h.service.Dashboard(c.Context(), caller)
	if err != nil {
		return err
	}

	view := fiber.Map{"page": "dashboard", "user": userView(principal)}
	if notice := flash.Pop(c); notice != nil {
		view["flash"] = notice
	}
	if app != nil {
		view["application"] = dto.NewApplicationView(app)
	}
	return c.JSON(view)
}

// ApplicationForm handles GET /application.
func (h *ApplicationsHandler) ApplicationForm(c *fiber.Ctx) error {
	_, principal, err := callerFrom(c)
	if err != nil {
		return err
	}
	view := fiber.Map{"page": "application_form", "user": userView(principal)}
	if notice := flash.Pop(c); notice != nil {
		view["flash"] = notice
	}
	return c.JSON(view)
}

// SubmitApplication handles POST /application: creates the application plus
// its documents, then moves the applicant to the appointment step.
func (h *ApplicationsHandler) SubmitApplication(c *fiber.Ctx) error {
	caller, _, err := callerFrom(c)
	if err != nil {
		return err
	}

	var req dto.SubmitApplicationRequest
	if err := c.BodyParser(&req); err != nil {
		return flash.Redirect(c, "/application", flash.CategoryDanger, "Invalid form submission")
	}

	var files []*multipart.FileHeader
	if form, err := c.MultipartForm(); err == nil && form != nil {
		files = form.File["documents"]
	}

	app, _, err := h.service.Submit(c.Context(), caller, service.SubmitInput{
		FullName:     req.FullName,
		DateOfBirth:  req.DateOfBirth,
		Address:      req.Address,
		Nationality:  req.Nationality,
		PassportType: req.PassportType,
		Files:        files,
	})
	if err != nil {
		return redirectRecoverable(c, err, "/application")
	}

	return flash.Redirect(c, fmt.Sprintf("/appointment/%d", app.ID),
		flash.CategorySuccess, "Application submitted successfully")
}

// AppointmentForm handles GET /appointment/:id.
func (h *ApplicationsHandler) AppointmentForm(c *fiber.Ctx) error {
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
		return redirectRecoverable(c, err, "/dashboard")
	}

	view := fiber.Map{
		"page":        "appointment",
		"user":        userView(principal),
		"application": dto.NewApplicationView(&detail.Application),
	}
	if detail.Appointment != nil {
		view["appointment"] = dto.NewAppointmentView(detail.Appointment)
	}
	if notice := flash.Pop(c); notice != nil {
		view["flash"] = notice
	}
	return c.JSON(view)
}

// ScheduleAppointment handles POST /appointment/:id: idempotent upsert, then
// on to the payment step.
func (h *ApplicationsHandler) ScheduleAppointment(c *fiber.Ctx) error {
	caller, _, err := callerFrom(c)
	if err != nil {
		return err
	}
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}

	var req dto.AppointmentRequest
	if err := c.BodyParser(&req); err != nil {
		return flash.Redirect(c, fmt.Sprintf("/appointment/%d", id), flash.CategoryDanger, "Invalid form submission")
	}

	if _, err := h.service.ScheduleAppointment(c.Context(), caller, id, service.AppointmentInput{
		Date:     req.Date,
		Time:     req.Time,
		Location: req.Location,
	}); err != nil {
		return redirectRecoverable(c, err, fmt.Sprintf("/appointment/%d", id))
	}

	return flash.Redirect(c, fmt.Sprintf("/payment/%d", id),
		flash.CategorySuccess, "Appointment scheduled")
}

// PaymentForm handles GET /payment/:id.
func (h *ApplicationsHandler) PaymentForm(c *fiber.Ctx) error {
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
		return redirectRecoverable(c, err, "/dashboard")
	}

	view := fiber.Map{
		"page":           "payment",
		"user":           userView(principal),
		"application":    dto.NewApplicationView(&detail.Application),
		"default_amount": service.DefaultFeeAmount,
	}
	if detail.Payment != nil {
		view["payment"] = dto.NewPaymentView(detail.Payment)
	}
	if notice := flash.Pop(c); notice != nil {
		view["flash"] = notice
	}
	return c.JSON(view)
}

// Pay handles POST /payment/:id: simulated gateway success, application
// status forced to Under Review.
func (h *ApplicationsHandler) Pay(c *fiber.Ctx) error {
	caller, _, err := callerFrom(c)
	if err != nil {
		return err
	}
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}

	var req dto.PaymentRequest
	if err := c.BodyParser(&req); err != nil {
		return flash.Redirect(c, fmt.Sprintf("/payment/%d", id), flash.CategoryDanger, "Invalid form submission")
	}

	if _, err := h.service.RecordPayment(c.Context(), caller, id, service.PaymentInput{
		Amount: req.Amount,
		Method: req.Method,
	}); err != nil {
		return redirectRecoverable(c, err, fmt.Sprintf("/payment/%d", id))
	}

	return flash.Redirect(c, fmt.Sprintf("/status/%d", id),
		flash.CategorySuccess, "Payment completed (simulated)")
}

// StatusList handles GET /status: the caller's applications, newest first.
func (h *ApplicationsHandler) StatusList(c *fiber.Ctx) error {
	caller, principal, err := callerFrom(c)
	if err != nil {
		return err
	}

	apps, err := h.service.ListForUser(c.Context(), caller)
	if err != nil {
		return err
	}

	view := fiber.Map{
		"page":         "status",
		"user":         userView(principal),
		"applications": dto.NewApplicationViews(apps),
	}
	if notice := flash.Pop(c); notice != nil {
		view["flash"] = notice
	}
	return c.JSON(view)
}

// StatusDetail handles GET /status/:id: one application with dependents.
func (h *ApplicationsHandler) StatusDetail(c *fiber.Ctx) error {
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
		return redirectRecoverable(c, err, "/status")
	}

	view := fiber.Map{
		"page":        "status",
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
