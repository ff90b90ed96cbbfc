package jobs

import (
	"context"
	"time"

	"go.uber.org/zap"
)

const (
	expiryLockKey  = "lock:sweep:check_expired"
	cleanupLockKey = "lock:sweep:delete_expired"
)

// Sweeps are the time-triggered campaign operations.
type Sweeps interface {
	CheckExpired(ctx context.Context) (int, error)
	DeleteExpired(ctx context.Context) (int, error)
}

type SweeperConfig struct {
	ExpiryInterval  time.Duration
	CleanupInterval time.Duration
	LockTTL         time.Duration
}

// Sweeper runs the expiry check and the expired cleanup on their own
// schedules, independent of any client request.
type Sweeper struct {
	sweeps Sweeps
	locker Locker
	cfg    SweeperConfig
	log    *zap.Logger
}

func NewSweeper(sweeps Sweeps, locker Locker, cfg SweeperConfig, log *zap.Logger) *Sweeper {
	if cfg.ExpiryInterval <= 0 {
		cfg.ExpiryInterval = time.Minute
	}
	if cfg.CleanupInterval <= 0 {
		cfg.CleanupInterval = time.Hour
	}
	if cfg.LockTTL <= 0 {
		cfg.LockTTL = 30 * time.Second
	}
	return &Sweeper{sweeps: sweeps, locker: locker, cfg: cfg, log: log}
}

// RunOnce runs both sweeps once, expiry first.
func (s *Sweeper) RunOnce(ctx context.Context) {
	s.runLocked(ctx, "check_expired", expiryLockKey, s.sweeps.CheckExpired)
	s.runLocked(ctx, "delete_expired", cleanupLockKey, s.sweeps.DeleteExpired)
}

// Run sweeps immediately and then on every tick until ctx is done.
func (s *Sweeper) Run(ctx context.Context) {
	expiryTicker := time.NewTicker(s.cfg.ExpiryInterval)
	cleanupTicker := time.NewTicker(s.cfg.CleanupInterval)
	defer expiryTicker.Stop()
	defer cleanupTicker.Stop()

	s.log.Info("sweeper started",
		zap.Duration("expiry_interval", s.cfg.ExpiryInterval),
		zap.Duration("cleanup_interval", s.cfg.CleanupInterval),
	)
	s.RunOnce(ctx)

	for {
		select {
		case <-expiryTicker.C:
			s.runLocked(ctx, "check_expired", expiryLockKey, s.sweeps.CheckExpired)
		case <-cleanupTicker.C:
			s.runLocked(ctx, "delete_expired", cleanupLockKey, s.sweeps.DeleteExpired)
		case <-ctx.Done():
			s.log.Info("sweeper stopped")
			return
		}
	}
}

func (s *Sweeper) runLocked(ctx context.Context, name, key string, sweep func(context.Context) (int, error)) {
	if ctx.Err() != nil {
		return
	}
	release, ok, err := s.locker.TryLock(ctx, key, s.cfg.LockTTL)
	if err != nil {
		s.log.Error("sweep lock failed", zap.String("sweep", name), zap.Error(err))
		return
	}
	if !ok {
		s.log.Debug("sweep skipped, lock held elsewhere", zap.String("sweep", name))
		return
	}
	defer release()

	sweepCtx, cancel := context.WithTimeout(ctx, s.cfg.LockTTL)
	defer cancel()

	start := time.Now()
	n, err := sweep(sweepCtx)
	if err != nil {
		s.log.Error("sweep failed", zap.String("sweep", name), zap.Int("count", n), zap.Error(err))
		return
	}
	s.log.Debug("sweep done",
		zap.String("sweep", name),
		zap.Int("count", n),
		zap.Duration("took", time.Since(start)),
	)
}
