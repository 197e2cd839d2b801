package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/passport-portal/internal/api/http/handlers"
	"github.com/spec-kit/passport-portal/internal/auth"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Auth           *handlers.AuthHandler
	Applications   *handlers.ApplicationsHandler
	Admin          *handlers.AdminHandler
	Uploads        *handlers.UploadsHandler
	SessionLoading *auth.Middleware
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Use(cfg.SessionLoading.LoadSession)

	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)

	app.Get("/", cfg.Auth.Landing)
	app.Get("/register", cfg.Auth.RegisterForm)
	app.Post("/register", cfg.Auth.Register)
	app.Get("/login", cfg.Auth.LoginForm)
	app.Post("/login", cfg.Auth.Login)
	app.Get("/logout", cfg.Auth.Logout)

	user := app.Group("", auth.RequireUser())
	user.Get("/dashboard", cfg.Applications.Dashboard)
	user.Get("/application", cfg.Applications.ApplicationForm)
	user.Post("/application", cfg.Applications.SubmitApplication)
	user.Get("/appointment/:id", cfg.Applications.AppointmentForm)
	user.Post("/appointment/:id", cfg.Applications.ScheduleAppointment)
	user.Get("/payment/:id", cfg.Applications.PaymentForm)
	user.Post("/payment/:id", cfg.Applications.Pay)
	user.Get("/status", cfg.Applications.StatusList)
	user.Get("/status/:id", cfg.Applications.StatusDetail)

	admin := app.Group("/admin", auth.RequireAdmin())
	admin.Get("/dashboard", cfg.Admin.Dashboard)
	admin.Get("/application/:id", cfg.Admin.ReviewForm)
	admin.Post("/application/:id", cfg.Admin.SetStatus)

	app.Get("/uploads/:filename", auth.RequireAdmin(), cfg.Uploads.Get)
}
