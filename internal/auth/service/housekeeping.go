package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/aussiebroadwan/tokengate/internal/auth/store"
)

// Pruner is implemented by stores that keep in-process state needing
// periodic cleanup, such as the token cache.
type Pruner interface {
	Prune(now time.Time) int
}

// HousekeepingService periodically reclaims expired access tokens and, when
// a retention is configured, old refresh tokens.
type HousekeepingService struct {
	Store    store.Store
	Logger   *slog.Logger
	Interval time.Duration

	// RefreshRetention removes refresh tokens older than this. Zero keeps
	// them forever.
	RefreshRetention time.Duration

	// Now defaults to time.Now.
	Now func() time.Time

	stopCh chan struct{}
	doneCh chan struct{}
}

// NewHousekeepingService creates a new housekeeping service with the given interval.
// If interval is 0 or negative, defaults to 1 hour.
func NewHousekeepingService(store store.Store, logger *slog.Logger, interval time.Duration) *HousekeepingService {
	if interval <= 0 {
		interval = 1 * time.Hour
	}

	return &HousekeepingService{
		Store:    store,
		Logger:   logger,
		Interval: interval,
		Now:      time.Now,
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
	}
}

// Start begins the background worker. It sweeps once immediately.
// Call Stop() to gracefully shutdown the worker.
func (s *HousekeepingService) Start() {
	go s.run()
	s.Logger.Info("housekeeping service started", "interval", s.Interval)
}

// Stop gracefully shuts down the background worker.
// Blocks until the worker has finished any in-progress cleanup.
func (s *HousekeepingService) Stop() {
	close(s.stopCh)
	<-s.doneCh
	s.Logger.Info("housekeeping service stopped")
}

func (s *HousekeepingService) run() {
	defer close(s.doneCh)

	ticker := time.NewTicker(s.Interval)
	defer ticker.Stop()

	s.cleanup()

	for {
		select {
		case <-ticker.C:
			s.cleanup()
		case <-s.stopCh:
			return
		}
	}
}

// SweepResult reports one cleanup pass.
type SweepResult struct {
	Tokens        int64
	RefreshTokens int64
	Tombstones    int
}

// Sweep runs a single cleanup pass. Each step is independent; a failing
// step is logged and does not stop the others.
func (s *HousekeepingService) Sweep(ctx context.Context) SweepResult {
	now := s.Now()
	var res SweepResult

	n, err := s.Store.Tokens().DeleteExpired(ctx, now)
	if err != nil {
		s.Logger.Error("failed to delete expired tokens", "error", err)
	} else {
		res.Tokens = n
	}

	if s.RefreshRetention > 0 {
		n, err := s.Store.RefreshTokens().DeleteCreatedBefore(ctx, now.Add(-s.RefreshRetention))
		if err != nil {
			s.Logger.Error("failed to apply refresh token retention", "error", err)
		} else {
			res.RefreshTokens = n
		}
	}

	if p, ok := s.Store.(Pruner); ok {
		res.Tombstones = p.Prune(now)
	}

	return res
}

func (s *HousekeepingService) cleanup() {
	ctx, cancel := context.WithTimeout(context.Background(), s.Interval)
	defer cancel()

	res := s.Sweep(ctx)
	s.Logger.Info("housekeeping cleanup completed",
		"expired_tokens", res.Tokens,
		"refresh_tokens", res.RefreshTokens,
		"tombstones", res.Tombstones,
	)
}
