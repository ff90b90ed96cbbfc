package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/amplyst/backend/internal/auth"
	"github.com/amplyst/backend/internal/config"
	"github.com/amplyst/backend/internal/db"
	"github.com/amplyst/backend/internal/events"
	apphttp "github.com/amplyst/backend/internal/http"
	"github.com/amplyst/backend/internal/http/dto"
	"github.com/amplyst/backend/internal/http/handlers"
	"github.com/amplyst/backend/internal/middleware"
	"github.com/amplyst/backend/internal/repositories"
	"github.com/amplyst/backend/internal/services"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

func main() {
	log, _ := zap.NewProduction()
	defer log.Sync()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal("failed to load config", zap.Error(err))
	}
	cfg.Validate(log)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Database
	pool, err := db.NewPostgresPool(ctx, cfg.PostgresDSN, db.DefaultPoolOptions, log)
	if err != nil {
		log.Fatal("failed to connect to postgres", zap.Error(err))
	}
	defer pool.Close()

	// Run migrations
	if err := db.RunMigrations(ctx, pool, cfg.MigrationsDir, log); err != nil {
		log.Fatal("failed to run migrations", zap.Error(err))
	}

	// Redis
	rdb, err := db.NewRedisClient(ctx, cfg.RedisURL, log)
	if err != nil {
		log.Fatal("failed to connect to redis", zap.Error(err))
	}
	defer rdb.Close()

	// Repositories
	userRepo := repositories.NewUserRepo(pool)
	profileRepo := repositories.NewProfileRepo(pool)
	campaignRepo := repositories.NewCampaignRepo(pool)
	applicationRepo := repositories.NewApplicationRepo(pool)
	auditRepo := repositories.NewAuditRepo(pool)

	// Events
	publisher := events.NewRedisPublisher(rdb, log)
	subscriber := events.NewRedisSubscriber(rdb, log)

	// Services
	profileService := services.NewProfileService(userRepo, profileRepo, auditRepo, log)
	campaignService := services.NewCampaignService(campaignRepo, auditRepo, publisher, cfg.ExpiredRetention, log)
	applicationService := services.NewApplicationService(applicationRepo, campaignRepo, profileRepo, auditRepo, publisher, log)

	// Handlers
	h := apphttp.Handlers{
		User:        handlers.NewUserHandler(profileService, log),
		Campaign:    handlers.NewCampaignHandler(campaignService, log),
		Application: handlers.NewApplicationHandler(applicationService, log),
		Meta:        handlers.NewMetaHandler(),
		WSHub:       handlers.NewWSHub(subscriber, log),
	}

	// Start WS hub
	if err := h.WSHub.Start(ctx); err != nil {
		log.Fatal("failed to subscribe to events", zap.Error(err))
	}

	// Fiber app
	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			var e *fiber.Error
			if errors.As(err, &e) {
				code = e.Code
			}
			msg := err.Error()
			if code == fiber.StatusInternalServerError {
				log.Error("unhandled error", zap.String("path", c.Path()), zap.Error(err))
				msg = "internal error"
			}
			return c.Status(code).JSON(dto.ErrorResponse{Error: msg, RequestID: middleware.GetRequestID(c)})
		},
	})

	verifier := auth.NewVerifier(cfg.IDPJWTSecret, cfg.IDPIssuer, cfg.IDPAudience)
	apphttp.SetupRouter(app, cfg, log, rdb, verifier, profileService, h)

	// Graceful shutdown
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		log.Info("shutting down...")
		cancel()
		_ = app.Shutdown()
	}()

	addr := fmt.Sprintf(":%s", cfg.APIPort)
	log.Info("starting API server", zap.String("addr", addr))
	if err := app.Listen(addr); err != nil {
		log.Fatal("server error", zap.Error(err))
	}
}
