package handlers

import (
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/passport-portal/internal/api/flash"
	"github.com/spec-kit/passport-portal/internal/auth"
	"github.com/spec-kit/passport-portal/internal/service"
	apperrors "github.com/spec-kit/passport-portal/pkg/util/errorutil"
)

func callerFrom(c *fiber.Ctx) (service.Caller, *auth.Principal, error) {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.User == nil {
		return service.Caller{}, nil, apperrors.NewUnauthorized("authentication required")
	}
	return service.Caller{UserID: principal.User.ID, Role: principal.Role}, principal, nil
}

func parseID(c *fiber.Ctx, name string) (int64, error) {
	id, err := strconv.ParseInt(c.Params(name), 10, 64)
	if err != nil || id <= 0 {
		return 0, apperrors.NewNotFound("application", nil)
	}
	return id, nil
}

// redirectRecoverable turns user-correctable errors into a flash-and-redirect
// back to the originating form. Everything else falls through to the error
// middleware.
func redirectRecoverable(c *fiber.Ctx, err error, backTo string) error {
	domainErr := apperrors.ToDomainError(err)
	switch domainErr.Code {
	case "VALIDATION_FAILED":
		return flash.Redirect(c, backTo, flash.CategoryDanger, domainErr.Message)
	case "CONFLICT":
		return flash.Redirect(c, backTo, flash.CategoryWarning, domainErr.Message)
	case "FORBIDDEN":
		return flash.Redirect(c, "/dashboard", flash.CategoryDanger, domainErr.Message)
	default:
		return err
	}
}
