package usecase_test

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/leetwatch/pkg/domain/model"
	"github.com/secmon-lab/leetwatch/pkg/domain/types"
	"github.com/secmon-lab/leetwatch/pkg/service/leetcode"
	"github.com/secmon-lab/leetwatch/pkg/usecase"
)

func calendarOf(days ...time.Time) string {
	s := "{"
	for i, d := range days {
		if i > 0 {
			s += ","
		}
		s += fmt.Sprintf(`"%d": %d`, d.Unix(), i+1)
	}
	return s + "}"
}

func TestStatsUseCaseFetch(t *testing.T) {
	now := time.Date(2026, 10, 14, 12, 0, 0, 0, time.UTC)
	day := func(d int) time.Time { return time.Date(2026, 10, d, 0, 0, 0, 0, time.UTC) }

	var lookups atomic.Int32
	client := &mockLeetCode{
		getUserProfileFn: func(ctx context.Context, username string, limit int) (*leetcode.UserProfile, error) {
			gt.Value(t, username).Equal("alice")
			gt.Value(t, limit).Equal(150)
			return &leetcode.UserProfile{
				AcSubmissionNum: []leetcode.DifficultyCount{
					{Difficulty: "All", Count: 60},
					{Difficulty: "Easy", Count: 30},
					{Difficulty: "Medium", Count: 20},
					{Difficulty: "Hard", Count: 10},
				},
				SubmissionCalendar: calendarOf(day(1), day(10), day(11), day(12)),
				RecentAccepted: []model.Submission{
					{Title: "Two Sum", TitleSlug: "two-sum", Timestamp: now.Add(-2 * time.Hour).Unix()},
					{Title: "Two Sum", TitleSlug: "two-sum", Timestamp: now.Add(-1 * time.Hour).Unix()},
					{Title: "LRU Cache", TitleSlug: "lru-cache", Timestamp: now.Add(-3 * time.Hour).Unix()},
					{Title: "Old Problem", TitleSlug: "old-problem", Timestamp: now.Add(-25 * time.Hour).Unix()},
				},
			}, nil
		},
		getQuestionDifficultyFn: func(ctx context.Context, slug string) (types.Difficulty, error) {
			lookups.Add(1)
			if slug == "two-sum" {
				return types.DifficultyEasy, nil
			}
			return types.DifficultyUnknown, errors.New("rate limited")
		},
	}

	uc := usecase.NewStatsUseCase(client,
		usecase.WithSubmissionLimit(150),
		usecase.WithStatsClock(func() time.Time { return now }),
		usecase.WithLocation(time.UTC),
	)

	stats, err := uc.Fetch(context.Background(), "alice", types.FilterMode24Hours)
	gt.NoError(t, err).Required()

	gt.Value(t, stats.EasySolved).Equal(30)
	gt.Value(t, stats.MediumSolved).Equal(20)
	gt.Value(t, stats.HardSolved).Equal(10)
	gt.Value(t, stats.TotalSolved).Equal(60)
	gt.Value(t, stats.LongestStreak).Equal(3)
	gt.Value(t, stats.RecentSolved).Equal(2)
	gt.Array(t, stats.RecentProblems).Length(2).Required()

	gt.Value(t, stats.RecentProblems[0].Title).Equal("Two Sum")
	gt.Value(t, stats.RecentProblems[0].Timestamp).Equal(now.Add(-1 * time.Hour).Unix())
	gt.Value(t, stats.RecentProblems[0].Difficulty).Equal(types.DifficultyEasy)
	gt.Value(t, stats.RecentProblems[1].Title).Equal("LRU Cache")
	gt.Value(t, stats.RecentProblems[1].Difficulty).Equal(types.DifficultyUnknown)
	gt.Value(t, stats.FetchedAt.Equal(now)).Equal(true)
	gt.Value(t, lookups.Load()).Equal(int32(2))

	t.Run("known difficulties are not looked up again", func(t *testing.T) {
		_, err := uc.Fetch(context.Background(), "alice", types.FilterMode24Hours)
		gt.NoError(t, err).Required()
		// only the failed lookup is retried
		gt.Value(t, lookups.Load()).Equal(int32(3))
	})
}

func TestStatsUseCaseFetchTodayMode(t *testing.T) {
	loc := time.FixedZone("JST", 9*60*60)
	now := time.Date(2026, 10, 14, 0, 30, 0, 0, loc)

	client := &mockLeetCode{
		getUserProfileFn: func(ctx context.Context, username string, limit int) (*leetcode.UserProfile, error) {
			return &leetcode.UserProfile{
				RecentAccepted: []model.Submission{
					{Title: "Yesterday", TitleSlug: "yesterday", Timestamp: now.Add(-31 * time.Minute).Unix()},
					{Title: "Today", TitleSlug: "today", Timestamp: now.Add(-29 * time.Minute).Unix()},
				},
			}, nil
		},
	}

	uc := usecase.NewStatsUseCase(client,
		usecase.WithStatsClock(func() time.Time { return now }),
		usecase.WithLocation(loc),
	)

	stats, err := uc.Fetch(context.Background(), "alice", types.FilterModeToday)
	gt.NoError(t, err).Required()
	gt.Array(t, stats.RecentProblems).Length(1).Required()
	gt.Value(t, stats.RecentProblems[0].Title).Equal("Today")

	stats, err = uc.Fetch(context.Background(), "alice", types.FilterMode24Hours)
	gt.NoError(t, err).Required()
	gt.Value(t, stats.RecentSolved).Equal(2)
}

func TestStatsUseCaseFetchFailure(t *testing.T) {
	client := &mockLeetCode{
		getUserProfileFn: func(ctx context.Context, username string, limit int) (*leetcode.UserProfile, error) {
			return nil, leetcode.ErrUnexpectedStatus
		},
	}
	uc := usecase.NewStatsUseCase(client)

	_, err := uc.Fetch(context.Background(), "alice", types.FilterMode24Hours)
	gt.Error(t, err).Is(usecase.ErrFetchFailed)

	_, err = uc.Fetch(context.Background(), "", types.FilterMode24Hours)
	gt.Error(t, err).Is(usecase.ErrInvalidUsername)
}

func TestStatsUseCaseEmptyProfile(t *testing.T) {
	uc := usecase.NewStatsUseCase(&mockLeetCode{})

	stats, err := uc.Fetch(context.Background(), "ghost", types.FilterMode24Hours)
	gt.NoError(t, err).Required()
	gt.Value(t, stats.TotalSolved).Equal(0)
	gt.Value(t, stats.LongestStreak).Equal(0)
	gt.Array(t, stats.RecentProblems).Length(0)
	gt.Array(t, stats.RecentProblemsForDisplay).Length(0)
}
