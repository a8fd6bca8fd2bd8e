package tenant

import (
	"context"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/aussiebroadwan/tokengate/internal/auth/domain"
)

// Source is the system of record the index is loaded from.
type Source interface {
	List(ctx context.Context) ([]domain.Tenant, error)
}

// Refresher periodically reloads an Index from a Source.
type Refresher struct {
	Index    *Index
	Source   Source
	Logger   *slog.Logger
	Interval time.Duration

	healthy atomic.Bool

	stopCh chan struct{}
	doneCh chan struct{}
}

// NewRefresher creates a refresher. If interval is 0 or negative, defaults to
// 30 seconds.
func NewRefresher(index *Index, source Source, logger *slog.Logger, interval time.Duration) *Refresher {
	if interval <= 0 {
		interval = 30 * time.Second
	}

	return &Refresher{
		Index:    index,
		Source:   source,
		Logger:   logger,
		Interval: interval,
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
	}
}

// Load performs a single synchronous reload.
func (r *Refresher) Load(ctx context.Context) error {
	tenants, err := r.Source.List(ctx)
	if err != nil {
		r.healthy.Store(false)
		return err
	}
	r.Index.Replace(tenants)
	r.healthy.Store(true)
	r.Logger.Debug("tenant index reloaded", "tenants", len(tenants))
	return nil
}

// Healthy reports whether the most recent Load succeeded.
func (r *Refresher) Healthy() bool {
	return r.healthy.Load()
}

// Start begins the background reload loop. Call Stop to shut it down.
func (r *Refresher) Start() {
	go r.run()
	r.Logger.Info("tenant refresher started", "interval", r.Interval)
}

// Stop blocks until the loop has exited.
func (r *Refresher) Stop() {
	close(r.stopCh)
	<-r.doneCh
	r.Logger.Info("tenant refresher stopped")
}

func (r *Refresher) run() {
	defer close(r.doneCh)

	ticker := time.NewTicker(r.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			ctx, cancel := context.WithTimeout(context.Background(), r.Interval)
			if err := r.Load(ctx); err != nil {
				// keep serving the previous snapshot
				r.Logger.Error("failed to reload tenant index", "error", err)
			}
			cancel()
		case <-r.stopCh:
			return
		}
	}
}
