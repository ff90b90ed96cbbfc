package http

import (
	"time"

	"github.com/amplyst/backend/internal/auth"
	"github.com/amplyst/backend/internal/config"
	"github.com/amplyst/backend/internal/http/handlers"
	"github.com/amplyst/backend/internal/middleware"
	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

type Handlers struct {
	User        *handlers.UserHandler
	Campaign    *handlers.CampaignHandler
	Application *handlers.ApplicationHandler
	Meta        *handlers.MetaHandler
	WSHub       *handlers.WSHub
}

func SetupRouter(
	app *fiber.App,
	cfg *config.Config,
	log *zap.Logger,
	rdb *redis.Client,
	verifier *auth.Verifier,
	resolver middleware.IdentityResolver,
	h Handlers,
) {
	// Global middleware
	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: cfg.CORSAllowOrigins,
		AllowHeaders: "Origin, Content-Type, Accept, Authorization, X-Request-ID",
	}))
	app.Use(middleware.RequestIDMiddleware())
	app.Use(middleware.LoggerMiddleware(log))

	// Health check
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	api := app.Group("/api/v1")

	// Meta (public, no auth required)
	api.Get("/meta/niches", h.Meta.GetNiches)
	api.Get("/meta/content-types", h.Meta.GetContentTypes)
	api.Get("/meta/platforms", h.Meta.GetPlatforms)

	api.Use(middleware.RateLimitMiddleware(rdb, cfg.RateLimitPerMinute, time.Minute))

	// Protected endpoints
	authMW := middleware.AuthMiddleware(verifier, resolver, log)
	protected := api.Group("", authMW)

	// Profiles
	protected.Get("/me", h.User.GetMe)
	protected.Post("/me/profile/influencer", h.User.CreateInfluencerProfile)
	protected.Put("/me/profile/influencer", h.User.UpdateInfluencerProfile)
	protected.Post("/me/profile/brand", h.User.CreateBrandProfile)
	protected.Put("/me/profile/brand", h.User.UpdateBrandProfile)

	// Campaigns. Static paths go before /:id.
	protected.Post("/campaigns", h.Campaign.CreateCampaign)
	protected.Get("/campaigns", h.Campaign.ListCampaigns)
	protected.Get("/campaigns/browse", h.Campaign.BrowseCampaigns)
	protected.Post("/campaigns/check-expired", h.Campaign.CheckExpired)
	protected.Post("/campaigns/delete-expired", h.Campaign.DeleteExpired)
	protected.Get("/campaigns/:id", h.Campaign.GetCampaign)
	protected.Put("/campaigns/:id", h.Campaign.UpdateCampaign)
	protected.Delete("/campaigns/:id", h.Campaign.DeleteCampaign)
	protected.Post("/campaigns/:id/status", h.Campaign.UpdateCampaignStatus)
	protected.Get("/campaigns/:id/events", h.Campaign.GetCampaignEvents)
	protected.Get("/campaigns/:id/applications", h.Application.ListCampaignApplications)

	// Applications
	protected.Post("/applications", h.Application.CreateApplication)
	protected.Get("/applications", h.Application.ListApplications)
	protected.Get("/applications/mine", h.Application.ListMyApplications)
	protected.Get("/applications/stats", h.Application.GetStats)
	protected.Put("/applications/:id", h.Application.UpdateApplication)

	// WebSocket
	app.Use("/ws", handlers.WSUpgradeMiddleware(), authMW)
	app.Get("/ws", websocket.New(h.WSHub.HandleWS))
}
