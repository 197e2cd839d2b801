package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/passport-portal/internal/api/dto"
	"github.com/spec-kit/passport-portal/internal/api/flash"
	"github.com/spec-kit/passport-portal/internal/auth"
	"github.com/spec-kit/passport-portal/internal/service"
)

// AuthHandler exposes registration, login and logout endpoints.
type AuthHandler struct {
	auth *service.AuthService
}

// NewAuthHandler constructs handler.
func NewAuthHandler(authService *service.AuthService) *AuthHandler {
	return &AuthHandler{auth: authService}
}

// Landing handles GET /.
func (h *AuthHandler) Landing(c *fiber.Ctx) error {
	view := fiber.Map{"page": "index"}
	if notice := flash.Pop(c); notice != nil {
		view["flash"] = notice
	}
	if principal, ok := auth.PrincipalFromContext(c); ok {
		view["user"] = userView(principal)
	}
	return c.JSON(view)
}

// RegisterForm handles GET /register.
func (h *AuthHandler) RegisterForm(c *fiber.Ctx) error {
	view := fiber.Map{"page": "register"}
	if notice := flash.Pop(c); notice != nil {
		view["flash"] = notice
	}
	return c.JSON(view)
}

// Register handles POST /register.
func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var req dto.RegisterRequest
	if err := c.BodyParser(&req); err != nil {
		return flash.Redirect(c, "/register", flash.CategoryDanger, "Invalid form submission")
	}

	if _, err := h.auth.Register(c.Context(), service.RegisterInput{
		Name:            req.Name,
		Email:           req.Email,
		Password:        req.Password,
		ConfirmPassword: req.ConfirmPassword,
	}); err != nil {
		return redirectRecoverable(c, err, "/register")
	}

	return flash.Redirect(c, "/login", flash.CategorySuccess, "Registration successful. Please log in.")
}

// LoginForm handles GET /login.
func (h *AuthHandler) LoginForm(c *fiber.Ctx) error {
	view := fiber.Map{"page": "login"}
	if notice := flash.Pop(c); notice != nil {
		view["flash"] = notice
	}
	return c.JSON(view)
}

// Login handles POST /login. Admins land on the admin dashboard, everyone
// else on the standard one.
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req dto.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return flash.Redirect(c, "/login", flash.CategoryDanger, "Invalid form submission")
	}

	user, cookie, err := h.auth.Login(c.Context(), req.Email, req.Password)
	if err != nil {
		return flash.Redirect(c, "/login", flash.CategoryDanger, "Invalid email or password")
	}

	sessions := h.auth.Sessions()
	c.Cookie(&fiber.Cookie{
		Name:     sessions.CookieName(),
		Value:    cookie,
		Path:     "/",
		Expires:  time.Now().Add(sessions.TTL()),
		HTTPOnly: true,
		SameSite: fiber.CookieSameSiteLaxMode,
	})

	target := "/dashboard"
	if user.Role.IsAdmin() {
		target = "/admin/dashboard"
	}
	return flash.Redirect(c, target, flash.CategorySuccess, "Logged in successfully")
}

// Logout handles GET /logout.
func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	sessions := h.auth.Sessions()
	if cookie := c.Cookies(sessions.CookieName()); cookie != "" {
		_ = h.auth.Logout(c.Context(), cookie)
	}
	c.Cookie(&fiber.Cookie{
		Name:     sessions.CookieName(),
		Value:    "",
		Path:     "/",
		Expires:  time.Now().Add(-time.Hour),
		HTTPOnly: true,
	})
	return flash.Redirect(c, "/", flash.CategoryInfo, "Logged out")
}

func userView(principal *auth.Principal) dto.UserView {
	return dto.UserView{
		ID:    principal.User.ID,
		Name:  principal.User.Name,
		Email: principal.User.Email,
		Role:  string(principal.Role),
	}
}
