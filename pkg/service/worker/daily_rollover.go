package worker

import (
	"context"
	"time"

	"github.com/go-co-op/gocron"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/leetwatch/pkg/utils/errutil"
	"github.com/secmon-lab/leetwatch/pkg/utils/logging"
)

// DailyRoller refreshes the daily challenge after it changes
type DailyRoller interface {
	Rollover(ctx context.Context) error
}

// DailyRolloverWorker runs the rollover at 00:00 UTC, when the platform
// publishes the next daily challenge.
type DailyRolloverWorker struct {
	daily     DailyRoller
	scheduler *gocron.Scheduler
	interval  time.Duration
}

type RolloverOption func(*DailyRolloverWorker)

// WithRolloverInterval replaces the daily schedule with a fixed interval
func WithRolloverInterval(d time.Duration) RolloverOption {
	return func(w *DailyRolloverWorker) {
		w.interval = d
	}
}

func NewDailyRolloverWorker(daily DailyRoller, opts ...RolloverOption) *DailyRolloverWorker {
	w := &DailyRolloverWorker{
		daily:     daily,
		scheduler: gocron.NewScheduler(time.UTC),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

func (w *DailyRolloverWorker) Start(ctx context.Context) error {
	w.scheduler.SingletonModeAll()

	job := func() {
		started := time.Now()
		if err := w.daily.Rollover(ctx); err != nil {
			_ = errutil.Handle(ctx, err, "daily rollover failed")
			return
		}
		logging.From(ctx).Info("daily rollover completed", "duration", time.Since(started).String())
	}

	var err error
	if w.interval > 0 {
		_, err = w.scheduler.Every(w.interval).Do(job)
	} else {
		_, err = w.scheduler.Every(1).Day().At("00:00").Do(job)
	}
	if err != nil {
		return goerr.Wrap(err, "failed to schedule daily rollover")
	}

	w.scheduler.StartAsync()
	logging.From(ctx).Info("daily rollover worker started")
	return nil
}

func (w *DailyRolloverWorker) Stop() {
	w.scheduler.Stop()
	logging.Default().Info("daily rollover worker stopped")
}
