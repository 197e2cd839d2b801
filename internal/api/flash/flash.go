package flash

import (
	"net/url"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
)

// Transient notices carried across a redirect in a short-lived cookie, the
// way the rendered views expect them. The cookie holds "category|message",
// URL-encoded.

const cookieName = "flash"

// Categories mirror the notice styles the views render.
const (
	CategorySuccess = "success"
	CategoryInfo    = "info"
	CategoryWarning = "warning"
	CategoryDanger  = "danger"
)

// Notice is a one-shot message shown after a redirect.
type Notice struct {
	Category string `json:"category"`
	Message  string `json:"message"`
}

// Set stores a notice for the next request.
func Set(c *fiber.Ctx, category, message string) {
	c.Cookie(&fiber.Cookie{
		Name:     cookieName,
		Value:    url.QueryEscape(category + "|" + message),
		Path:     "/",
		Expires:  time.Now().Add(time.Minute),
		HTTPOnly: true,
	})
}

// Pop reads and clears the pending notice, if any.
func Pop(c *fiber.Ctx) *Notice {
	raw := c.Cookies(cookieName)
	if raw == "" {
		return nil
	}
	c.Cookie(&fiber.Cookie{
		Name:     cookieName,
		Value:    "",
		Path:     "/",
		Expires:  time.Now().Add(-time.Hour),
		HTTPOnly: true,
	})

	decoded, err := url.QueryUnescape(raw)
	if err != nil {
		return nil
	}
	category, message, found := strings.Cut(decoded, "|")
	if !found {
		return &Notice{Category: CategoryInfo, Message: decoded}
	}
	return &Notice{Category: category, Message: message}
}

// Redirect sets a notice and redirects to the given location.
func Redirect(c *fiber.Ctx, location, category, message string) error {
	Set(c, category, message)
	return c.Redirect(location, fiber.StatusSeeOther)
}
