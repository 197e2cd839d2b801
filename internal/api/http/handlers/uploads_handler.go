package handlers

import (
	"fmt"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/passport-portal/internal/service"
	"github.com/spec-kit/passport-portal/internal/storage"
	apperrors "github.com/spec-kit/passport-portal/pkg/util/errorutil"
)

// UploadsHandler streams stored documents. The route is admin-gated.
type UploadsHandler struct {
	service *service.ApplicationService
	store   *storage.DocumentStore
}

// NewUploadsHandler constructs handler.
func NewUploadsHandler(applicationService *service.ApplicationService, store *storage.DocumentStore) *UploadsHandler {
	return &UploadsHandler{service: applicationService, store: store}
}

// Get handles GET /uploads/:filename. Only names with a persisted document
// record are served; the store refuses anything that does not survive
// sanitization unchanged.
func (h *UploadsHandler) Get(c *fiber.Ctx) error {
	caller, _, err := callerFrom(c)
	if err != nil {
		return err
	}

	storedName := c.Params("filename")
	doc, err := h.service.DocumentByStoredName(c.Context(), caller, storedName)
	if err != nil {
		return err
	}

	file, err := h.store.Open(doc.StoredName)
	if err != nil {
		return apperrors.NewNotFound("document", nil)
	}

	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", doc.OriginalName))
	return c.SendStream(file)
}
