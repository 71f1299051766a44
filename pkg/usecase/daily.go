package usecase

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/leetwatch/pkg/domain/model"
	"github.com/secmon-lab/leetwatch/pkg/repository"
	"github.com/secmon-lab/leetwatch/pkg/utils/async"
	"github.com/secmon-lab/leetwatch/pkg/utils/errutil"
	"github.com/secmon-lab/leetwatch/pkg/utils/logging"
)

const (
	DefaultSolvedCheckDelay = 200 * time.Millisecond
	DefaultSolvedCheckLimit = 200
)

// DailyChallengeSource is the part of the platform client used for the daily challenge
type DailyChallengeSource interface {
	GetDailyChallenge(ctx context.Context) (*model.DailyChallenge, error)
	GetRecentAcceptedSlugs(ctx context.Context, username string, limit int) ([]string, error)
}

// DailyStatus is the daily challenge plus which tracked users solved it
type DailyStatus struct {
	Challenge *model.DailyChallenge `json:"challenge"`
	Solved    map[string]bool       `json:"solved"`
	CheckedAt time.Time             `json:"checkedAt"`
}

// SolvedCount returns how many users solved the challenge
func (s *DailyStatus) SolvedCount() int {
	n := 0
	for _, ok := range s.Solved {
		if ok {
			n++
		}
	}
	return n
}

// DailyChallengeUseCase keeps the question of the day and per-user solved
// flags current. It recomputes when the tracked list changes or a manual
// reload advances the refresh trigger.
type DailyChallengeUseCase struct {
	source     DailyChallengeSource
	store      *repository.LocalStore
	tracker    *TrackerUseCase
	now        func() time.Time
	checkDelay time.Duration
	checkLimit int
	sleep      func(ctx context.Context, d time.Duration) error

	mu          sync.RWMutex
	status      *DailyStatus
	lastTrigger uint64
	lastUsers   []string

	refreshMu sync.Mutex
}

type DailyOption func(*DailyChallengeUseCase)

func WithDailyClock(now func() time.Time) DailyOption {
	return func(uc *DailyChallengeUseCase) {
		uc.now = now
	}
}

// WithSolvedCheckDelay sets the pause between per-user solved checks
func WithSolvedCheckDelay(d time.Duration) DailyOption {
	return func(uc *DailyChallengeUseCase) {
		if d >= 0 {
			uc.checkDelay = d
		}
	}
}

func NewDailyChallengeUseCase(source DailyChallengeSource, store *repository.LocalStore, tracker *TrackerUseCase, opts ...DailyOption) *DailyChallengeUseCase {
	uc := &DailyChallengeUseCase{
		source:     source,
		store:      store,
		tracker:    tracker,
		now:        time.Now,
		checkDelay: DefaultSolvedCheckDelay,
		checkLimit: DefaultSolvedCheckLimit,
		sleep:      sleepContext,
	}
	for _, opt := range opts {
		opt(uc)
	}
	return uc
}

// GetChallenge returns the cached challenge, fetching and caching it until
// the next UTC midnight when the cache is empty or expired.
func (uc *DailyChallengeUseCase) GetChallenge(ctx context.Context) (*model.DailyChallenge, error) {
	now := uc.now()

	cached, ok, err := uc.store.LoadDailyChallenge(ctx, now)
	if err != nil {
		logging.From(ctx).Warn("failed to read daily challenge cache", "error", err.Error())
	} else if ok {
		return cached, nil
	}

	dc, err := uc.source.GetDailyChallenge(ctx)
	if err != nil {
		return nil, goerr.Wrap(ErrFetchFailed, "failed to fetch daily challenge", goerr.V("cause", err.Error()))
	}

	if err := uc.store.SaveDailyChallenge(ctx, dc, now); err != nil {
		_ = errutil.Handle(ctx, err, "failed to cache daily challenge")
	}
	return dc, nil
}

// CheckSolved reports, for each username, whether the challenge appears in
// their recent accepted submissions. Users are checked one at a time with
// a pause between them; a failed check counts as not solved.
func (uc *DailyChallengeUseCase) CheckSolved(ctx context.Context, challenge *model.DailyChallenge, usernames []string) map[string]bool {
	solved := make(map[string]bool, len(usernames))
	for i, name := range usernames {
		if i > 0 {
			if err := uc.sleep(ctx, uc.checkDelay); err != nil {
				break
			}
		}

		slugs, err := uc.source.GetRecentAcceptedSlugs(ctx, name, uc.checkLimit)
		if err != nil {
			logging.From(ctx).Warn("daily solved check failed", UsernameKey, name, "error", err.Error())
			solved[name] = false
			continue
		}
		solved[name] = slices.Contains(slugs, challenge.Question.TitleSlug)
	}
	return solved
}

// Refresh recomputes the status for the currently tracked users
func (uc *DailyChallengeUseCase) Refresh(ctx context.Context) (*DailyStatus, error) {
	uc.refreshMu.Lock()
	defer uc.refreshMu.Unlock()

	snap := uc.tracker.Snapshot()
	challenge, err := uc.GetChallenge(ctx)
	if err != nil {
		return nil, err
	}

	usernames := snap.Usernames()
	status := &DailyStatus{
		Challenge: challenge,
		Solved:    uc.CheckSolved(ctx, challenge, usernames),
		CheckedAt: uc.now(),
	}

	uc.mu.Lock()
	uc.status = status
	uc.lastTrigger = snap.RefreshTrigger
	uc.lastUsers = usernames
	uc.mu.Unlock()

	logging.From(ctx).Info("daily challenge refreshed",
		"slug", challenge.Question.TitleSlug,
		"solved", status.SolvedCount(),
		"users", len(usernames))
	return status, nil
}

// Rollover drops the cached challenge and refreshes
func (uc *DailyChallengeUseCase) Rollover(ctx context.Context) error {
	if err := uc.store.ClearDailyChallenge(ctx); err != nil {
		_ = errutil.Handle(ctx, err, "failed to clear daily challenge cache")
	}
	if _, err := uc.Refresh(ctx); err != nil {
		return err
	}
	return nil
}

// Status returns the last computed status, or nil before the first refresh
func (uc *DailyChallengeUseCase) Status() *DailyStatus {
	uc.mu.RLock()
	defer uc.mu.RUnlock()
	return uc.status
}

// Start runs an initial refresh and re-runs it whenever the refresh trigger
// or the tracked list changes. The returned function unsubscribes.
func (uc *DailyChallengeUseCase) Start(ctx context.Context) func() {
	ctx = logging.With(ctx, logging.From(ctx).With("component", "daily_challenge"))
	uc.dispatchRefresh(ctx)

	return uc.tracker.Subscribe(func(ev Event) {
		if ev.Kind != EventUsersChanged && ev.Kind != EventRefreshTriggered {
			return
		}
		if !uc.isStale(ev.Snapshot) {
			return
		}
		uc.dispatchRefresh(ctx)
	})
}

func (uc *DailyChallengeUseCase) isStale(snap model.Snapshot) bool {
	uc.mu.RLock()
	defer uc.mu.RUnlock()
	return uc.status == nil ||
		snap.RefreshTrigger != uc.lastTrigger ||
		!slices.Equal(snap.Usernames(), uc.lastUsers)
}

func (uc *DailyChallengeUseCase) dispatchRefresh(ctx context.Context) {
	async.Dispatch(ctx, "daily_challenge_refresh", func(ctx context.Context) error {
		_, err := uc.Refresh(ctx)
		return err
	})
}
