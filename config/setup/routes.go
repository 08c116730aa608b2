package setup

import (
	"adboard/app"
	"adboard/handlers"
	"adboard/middleware"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"
)

// RegisterRoutes registers all application routes
func RegisterRoutes(fiberApp *fiber.App, application *app.App) {

	// Public routes
	fiberApp.Get("/health", func(c *fiber.Ctx) error { return c.JSON(fiber.Map{"status": "ok"}) })

	// Auth routes
	fiberApp.Post("/api/auth/login", handlers.Login(application)) // One Tap ID token login
	fiberApp.Get("/auth/:provider", handlers.ProviderLogin(application))
	fiberApp.Get("/auth/:provider/callback", handlers.ProviderCallback(application))
	fiberApp.Post("/api/auth/logout", handlers.Logout(application))
	fiberApp.Get("/api/auth/me", handlers.Me(application))

	// Protected API routes
	api := fiberApp.Group("/api", middleware.AuthRequired(application.SessionStore), limiter.New(limiter.Config{
		Max:        100,
		Expiration: time.Minute,
		KeyGenerator: func(c *fiber.Ctx) string {
			if userID, ok := c.Locals("userID").(string); ok {
				return "user:" + userID
			}
			return c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
				"error": "Rate limit exceeded for your account",
			})
		},
	}))

	api.Get("/auth/connections", handlers.Connections(application))
	api.Get("/facebook/adaccounts", handlers.GetFacebookAdAccounts(application))
	api.Get("/facebook/adaccounts/:id/campaigns", handlers.GetFacebookCampaigns(application))
	api.Get("/google/ads/customers", handlers.GetGoogleAdsCustomers(application))
	api.Get("/google/ads/customers/:id/campaigns", handlers.GetGoogleAdsCampaigns(application))
	api.Get("/google/analytics/accounts", handlers.GetGoogleAnalyticsAccounts(application))
}
