package auth

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/passport-portal/internal/api/flash"
	"github.com/spec-kit/passport-portal/internal/domain"
	"github.com/spec-kit/passport-portal/internal/repository"
)

const principalKey = "auth_principal"

// Principal represents the authenticated caller for the current request.
// The role comes from the session; the user row is loaded for display.
type Principal struct {
	User *domain.User
	Role domain.Role
}

// Middleware resolves session cookies and loads principals.
type Middleware struct {
	sessions *SessionManager
	users    repository.UserRepository
}

// NewMiddleware constructs middleware.
func NewMiddleware(sessions *SessionManager, users repository.UserRepository) *Middleware {
	return &Middleware{sessions: sessions, users: users}
}

// LoadSession resolves the session cookie when present. Anonymous requests
// pass through; the gates below decide what requires a principal.
func (m *Middleware) LoadSession(c *fiber.Ctx) error {
	cookie := c.Cookies(m.sessions.CookieName())
	if cookie == "" {
		return c.Next()
	}

	session, err := m.sessions.Resolve(c.Context(), cookie)
	if err != nil {
		if errors.Is(err, ErrNoSession) {
			return c.Next()
		}
		return err
	}

	user, err := m.users.GetByID(c.Context(), session.UserID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			_ = m.sessions.Destroy(c.Context(), cookie)
			return c.Next()
		}
		return err
	}

	c.Locals(principalKey, &Principal{User: user, Role: session.Role})
	return c.Next()
}

// PrincipalFromContext retrieves the authenticated entity.
func PrincipalFromContext(c *fiber.Ctx) (*Principal, bool) {
	val := c.Locals(principalKey)
	if val == nil {
		return nil, false
	}
	principal, ok := val.(*Principal)
	return principal, ok
}

// RequireUser redirects anonymous requests to the login form.
func RequireUser() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if _, ok := PrincipalFromContext(c); !ok {
			return flash.Redirect(c, "/login", flash.CategoryWarning, "Please log in to continue")
		}
		return c.Next()
	}
}

// RequireAdmin requires an authenticated session with the admin role. It
// subsumes the authentication check.
func RequireAdmin() fiber.Handler {
	return func(c *fiber.Ctx) error {
		principal, ok := PrincipalFromContext(c)
		if !ok || !principal.Role.IsAdmin() {
			return flash.Redirect(c, "/", flash.CategoryDanger, "Admin access required")
		}
		return c.Next()
	}
}
