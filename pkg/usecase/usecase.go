package usecase

import (
	"time"

	"github.com/secmon-lab/leetwatch/pkg/domain/interfaces"
	"github.com/secmon-lab/leetwatch/pkg/repository"
	"github.com/secmon-lab/leetwatch/pkg/service/leetcode"
)

type UseCases struct {
	Stats   *StatsUseCase
	Tracker *TrackerUseCase
	Daily   *DailyChallengeUseCase
	Export  *ExportUseCase
	Sync    *SyncUseCase // nil without an identity provider
}

type config struct {
	cloud            interfaces.CloudStore
	identity         interfaces.Identity
	loc              *time.Location
	now              func() time.Time
	submissionLimit  int
	staggerDelay     time.Duration
	solvedCheckDelay time.Duration
}

type Option func(*config)

func WithCloudStore(cloud interfaces.CloudStore) Option {
	return func(c *config) {
		c.cloud = cloud
	}
}

func WithIdentity(identity interfaces.Identity) Option {
	return func(c *config) {
		c.identity = identity
	}
}

func WithTimezone(loc *time.Location) Option {
	return func(c *config) {
		c.loc = loc
	}
}

func WithClock(now func() time.Time) Option {
	return func(c *config) {
		c.now = now
	}
}

func WithRecentSubmissionLimit(n int) Option {
	return func(c *config) {
		c.submissionLimit = n
	}
}

func WithStagger(d time.Duration) Option {
	return func(c *config) {
		c.staggerDelay = d
	}
}

func WithSolvedCheckInterval(d time.Duration) Option {
	return func(c *config) {
		c.solvedCheckDelay = d
	}
}

func New(client leetcode.Service, store *repository.LocalStore, opts ...Option) *UseCases {
	cfg := &config{
		loc:              time.Local,
		now:              time.Now,
		submissionLimit:  DefaultSubmissionLimit,
		staggerDelay:     DefaultStaggerDelay,
		solvedCheckDelay: DefaultSolvedCheckDelay,
	}
	for _, opt := range opts {
		opt(cfg)
	}

	stats := NewStatsUseCase(client,
		WithSubmissionLimit(cfg.submissionLimit),
		WithStatsClock(cfg.now),
		WithLocation(cfg.loc),
	)
	tracker := NewTrackerUseCase(stats, client, store, WithStaggerDelay(cfg.staggerDelay))

	uc := &UseCases{
		Stats:   stats,
		Tracker: tracker,
		Daily: NewDailyChallengeUseCase(client, store, tracker,
			WithDailyClock(cfg.now),
			WithSolvedCheckDelay(cfg.solvedCheckDelay),
		),
		Export: NewExportUseCase(cfg.loc),
	}

	if cfg.identity != nil {
		uc.Sync = NewSyncUseCase(tracker, cfg.cloud, cfg.identity)
	}

	return uc
}
