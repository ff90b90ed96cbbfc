package main

import (
	"context"
	"flag"
	"os/signal"
	"syscall"

	"github.com/amplyst/backend/internal/config"
	"github.com/amplyst/backend/internal/db"
	"github.com/amplyst/backend/internal/events"
	"github.com/amplyst/backend/internal/jobs"
	"github.com/amplyst/backend/internal/repositories"
	"github.com/amplyst/backend/internal/services"
	"go.uber.org/zap"
)

func main() {
	once := flag.Bool("once", false, "run each sweep a single time and exit")
	flag.Parse()

	log, _ := zap.NewProduction()
	defer log.Sync()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal("failed to load config", zap.Error(err))
	}
	cfg.Validate(log)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := db.NewPostgresPool(ctx, cfg.PostgresDSN, db.DefaultPoolOptions, log)
	if err != nil {
		log.Fatal("failed to connect to postgres", zap.Error(err))
	}
	defer pool.Close()

	rdb, err := db.NewRedisClient(ctx, cfg.RedisURL, log)
	if err != nil {
		log.Fatal("failed to connect to redis", zap.Error(err))
	}
	defer rdb.Close()

	publisher := events.NewRedisPublisher(rdb, log)
	campaignService := services.NewCampaignService(
		repositories.NewCampaignRepo(pool),
		repositories.NewAuditRepo(pool),
		publisher,
		cfg.ExpiredRetention,
		log,
	)

	sweeper := jobs.NewSweeper(campaignService, jobs.NewRedisLocker(rdb), jobs.SweeperConfig{
		ExpiryInterval:  cfg.ExpiryCheckInterval,
		CleanupInterval: cfg.ExpiredCleanupInterval,
		LockTTL:         cfg.SweepLockTTL,
	}, log)

	if *once {
		sweeper.RunOnce(ctx)
		return
	}

	log.Info("worker started")
	sweeper.Run(ctx)
	log.Info("shutting down worker")
}
