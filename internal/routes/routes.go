package routes

import (
	"time"

	"github.com/fraudshield/backend/internal/config"
	"github.com/fraudshield/backend/internal/handlers"
	"github.com/fraudshield/backend/internal/middleware"
	"github.com/fraudshield/backend/internal/services"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"
)

func Setup(
	app *fiber.App,
	cfg *config.Config,
	authHandler *handlers.AuthHandler,
	reportHandler *handlers.ReportHandler,
	userHandler *handlers.UserHandler,
	adminHandler *handlers.AdminHandler,
	publicHandler *handlers.PublicHandler,
	healthHandler *handlers.HealthHandler,
	authService *services.AuthService,
) {
	api := app.Group("/api")

	// General API rate limiter per IP
	api.Use(limiter.New(limiter.Config{
		Max:               cfg.RateLimitMax,
		Expiration:        cfg.RateLimitWindow,
		LimiterMiddleware: limiter.SlidingWindow{},
		KeyGenerator:      func(c *fiber.Ctx) string { return c.IP() },
	}))

	api.Get("/health", healthHandler.Check)

	// Public, read-only surface — approved reports only
	public := api.Group("/public")
	public.Get("/search", publicHandler.Search)
	public.Get("/reports/recent", publicHandler.Recent)
	public.Get("/reports/:id", publicHandler.GetReport)
	public.Get("/stats", publicHandler.Stats)

	// Auth — stricter rate limit against credential stuffing
	auth := api.Group("/auth")
	auth.Use(limiter.New(limiter.Config{
		Max:               10,
		Expiration:        1 * time.Minute,
		LimiterMiddleware: limiter.SlidingWindow{},
		KeyGenerator:      func(c *fiber.Ctx) string { return c.IP() },
	}))
	auth.Post("/google", authHandler.Google)
	auth.Post("/admin/login", authHandler.AdminLogin)
	auth.Post("/refresh", authHandler.Refresh)
	auth.Post("/logout", authHandler.Logout)

	jwt := middleware.JWTProtected(cfg)
	userAuth := middleware.UserRequired(authService)
	adminAuth := middleware.AdminRequired(authService)

	api.Get("/auth/me", jwt, userAuth, authHandler.Me)

	// User surface
	users := api.Group("/users", jwt, userAuth)
	users.Get("/profile", userHandler.Profile)
	users.Put("/profile", userHandler.UpdateProfile)

	reports := api.Group("/reports", jwt, userAuth)
	reports.Post("/", reportHandler.Submit)
	reports.Get("/", reportHandler.List)
	reports.Get("/:id", reportHandler.Get)
	reports.Post("/:id/images", reportHandler.UploadImages)
	reports.Patch("/:id/status", reportHandler.UpdateStatus)
	reports.Delete("/:id", reportHandler.Delete)

	// Admin surface
	admin := api.Group("/admin", jwt, adminAuth)
	admin.Get("/me", authHandler.AdminMe)
	admin.Get("/reports", adminHandler.ListReports)
	admin.Get("/reports/pending", adminHandler.PendingReports)
	admin.Get("/reports/:id", adminHandler.GetReport)
	admin.Put("/reports/:id/status", adminHandler.ReviewReport)
	admin.Get("/users", adminHandler.ListUsers)
	admin.Put("/users/:id/status", adminHandler.UpdateUserStatus)
	admin.Delete("/users/:id", adminHandler.DeleteUser)
	admin.Post("/admins", middleware.SuperAdminRequired(), authHandler.CreateAdmin)
}
