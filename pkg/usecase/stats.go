package usecase

import (
	"context"
	"sync"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/leetwatch/pkg/domain/model"
	"github.com/secmon-lab/leetwatch/pkg/domain/types"
	"github.com/secmon-lab/leetwatch/pkg/service/leetcode"
	"github.com/secmon-lab/leetwatch/pkg/utils/logging"
	"golang.org/x/sync/errgroup"
)

const (
	DefaultSubmissionLimit = 100
	lookupConcurrency      = 5
)

// StatsUseCase derives UserStats from one combined platform query plus a
// difficulty lookup per distinct recent problem.
type StatsUseCase struct {
	client          leetcode.Service
	submissionLimit int
	now             func() time.Time
	loc             *time.Location

	// slug -> types.Difficulty, known values only
	difficulties sync.Map
}

type StatsOption func(*StatsUseCase)

// WithSubmissionLimit sets how many recent accepted submissions are requested
func WithSubmissionLimit(n int) StatsOption {
	return func(uc *StatsUseCase) {
		if n > 0 {
			uc.submissionLimit = n
		}
	}
}

func WithStatsClock(now func() time.Time) StatsOption {
	return func(uc *StatsUseCase) {
		uc.now = now
	}
}

// WithLocation sets the timezone for "today" and for calendar days in streaks
func WithLocation(loc *time.Location) StatsOption {
	return func(uc *StatsUseCase) {
		if loc != nil {
			uc.loc = loc
		}
	}
}

func NewStatsUseCase(client leetcode.Service, opts ...StatsOption) *StatsUseCase {
	uc := &StatsUseCase{
		client:          client,
		submissionLimit: DefaultSubmissionLimit,
		now:             time.Now,
		loc:             time.Local,
	}
	for _, opt := range opts {
		opt(uc)
	}
	return uc
}

// Fetch returns freshly derived stats for username. Any failure of the
// primary query is reported as ErrFetchFailed.
func (uc *StatsUseCase) Fetch(ctx context.Context, username string, mode types.FilterMode) (*model.UserStats, error) {
	if username == "" {
		return nil, goerr.Wrap(ErrInvalidUsername, "empty username")
	}

	profile, err := uc.client.GetUserProfile(ctx, username, uc.submissionLimit)
	if err != nil {
		logging.From(ctx).Warn("failed to query user profile", UsernameKey, username, "error", err.Error())
		return nil, goerr.Wrap(ErrFetchFailed, "failed to fetch user stats",
			goerr.V(UsernameKey, username),
			goerr.V("cause", err.Error()))
	}

	now := uc.now().In(uc.loc)
	recent := model.ReduceRecentSubmissions(profile.RecentAccepted, mode, now)
	uc.enrichDifficulties(ctx, recent)

	return model.NewUserStats(
		profile.SolvedCount(types.DifficultyEasy),
		profile.SolvedCount(types.DifficultyMedium),
		profile.SolvedCount(types.DifficultyHard),
		recent,
		model.LongestStreak(profile.SubmissionCalendar, uc.loc),
		now,
	), nil
}

// enrichDifficulties fills Difficulty in place. Lookups run in parallel and
// a failed or empty lookup degrades to Unknown.
func (uc *StatsUseCase) enrichDifficulties(ctx context.Context, problems []model.RecentProblem) {
	var eg errgroup.Group
	eg.SetLimit(lookupConcurrency)

	for i := range problems {
		eg.Go(func() error {
			problems[i].Difficulty = uc.lookupDifficulty(ctx, problems[i].TitleSlug)
			return nil
		})
	}
	_ = eg.Wait()
}

func (uc *StatsUseCase) lookupDifficulty(ctx context.Context, slug string) types.Difficulty {
	if v, ok := uc.difficulties.Load(slug); ok {
		return v.(types.Difficulty)
	}

	d, err := uc.client.GetQuestionDifficulty(ctx, slug)
	if err != nil {
		logging.From(ctx).Warn(ErrLookupDegraded.Error(), "slug", slug, "error", err.Error())
		return types.DifficultyUnknown
	}
	if !d.IsKnown() {
		logging.From(ctx).Warn(ErrLookupDegraded.Error(), "slug", slug, "difficulty", string(d))
		return types.DifficultyUnknown
	}

	uc.difficulties.Store(slug, d)
	return d
}
