package worker

import (
	"context"
	"time"

	"github.com/secmon-lab/leetwatch/pkg/utils/logging"
)

const DefaultPollInterval = 10 * time.Minute

// StatsRefresher is the tracker surface driven by the worker
type StatsRefresher interface {
	InitialLoad(ctx context.Context) error
	Refresh(ctx context.Context) error
}

// StatsRefreshWorker owns the polling timer of the tracker
//
// Architecture assumptions:
// - Single server instance (no distributed locking)
type StatsRefreshWorker struct {
	tracker  StatsRefresher
	interval time.Duration
	stopCh   chan struct{}
	doneCh   chan struct{}
}

// NewStatsRefreshWorker creates a worker that refreshes every interval
func NewStatsRefreshWorker(tracker StatsRefresher, interval time.Duration) *StatsRefreshWorker {
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	return &StatsRefreshWorker{
		tracker:  tracker,
		interval: interval,
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
	}
}

// Start begins the background loop
// - Initial load and periodic refresh both run in a background goroutine
// - Does not block server startup
func (w *StatsRefreshWorker) Start(ctx context.Context) error {
	logging.From(ctx).Info("stats refresh worker starting",
		"interval", w.interval.String())

	go w.run(ctx)

	return nil
}

// Stop signals the worker to stop and waits for completion
func (w *StatsRefreshWorker) Stop() {
	logging.Default().Info("stats refresh worker stopping")
	close(w.stopCh)
	<-w.doneCh
	logging.Default().Info("stats refresh worker stopped")
}

func (w *StatsRefreshWorker) run(ctx context.Context) {
	defer close(w.doneCh)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	go func() {
		select {
		case <-w.stopCh:
			cancel()
		case <-ctx.Done():
		}
	}()

	startTime := time.Now()
	if err := w.tracker.InitialLoad(ctx); err != nil {
		logging.From(ctx).Error("initial load failed (will retry next interval)",
			"error", err.Error())
	} else {
		logging.From(ctx).Info("initial load completed",
			"duration", time.Since(startTime).String())
	}

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if err := w.tracker.Refresh(ctx); err != nil {
				// Log error but continue worker
				logging.From(ctx).Error("stats refresh failed (will retry next interval)",
					"error", err.Error())
			}

		case <-w.stopCh:
			logging.From(ctx).Info("stats refresh worker received stop signal")
			return

		case <-ctx.Done():
			logging.From(ctx).Info("stats refresh worker context cancelled")
			return
		}
	}
}
