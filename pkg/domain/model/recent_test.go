package model_test

import (
	"testing"
	"time"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/leetwatch/pkg/domain/model"
	"github.com/secmon-lab/leetwatch/pkg/domain/types"
)

func TestReduceRecentSubmissions_Dedup(t *testing.T) {
	now := time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)
	subs := []model.Submission{
		{Title: "Two Sum", TitleSlug: "two-sum", Timestamp: now.Add(-3 * time.Hour).Unix()},
		{Title: "Two Sum", TitleSlug: "two-sum", Timestamp: now.Add(-1 * time.Hour).Unix()},
		{Title: "Add Two Numbers", TitleSlug: "add-two-numbers", Timestamp: now.Add(-2 * time.Hour).Unix()},
	}

	got := model.ReduceRecentSubmissions(subs, types.FilterMode24Hours, now)
	gt.Array(t, got).Length(2).Required()
	gt.Value(t, got[0].Title).Equal("Two Sum")
	gt.Value(t, got[0].Timestamp).Equal(now.Add(-1 * time.Hour).Unix())
	gt.Value(t, got[1].Title).Equal("Add Two Numbers")
	gt.Value(t, got[0].Difficulty).Equal(types.Difficulty(""))
}

func TestReduceRecentSubmissions_Window(t *testing.T) {
	now := time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)
	subs := []model.Submission{
		{Title: "Exactly 24h", Timestamp: now.Add(-24 * time.Hour).Unix()},
		{Title: "Just over", Timestamp: now.Add(-24*time.Hour - time.Second).Unix()},
	}

	got := model.ReduceRecentSubmissions(subs, types.FilterMode24Hours, now)
	gt.Array(t, got).Length(1).Required()
	gt.Value(t, got[0].Title).Equal("Exactly 24h")
}

func TestReduceRecentSubmissions_TodayVs24Hours(t *testing.T) {
	loc := time.FixedZone("JST", 9*3600)
	now := time.Date(2024, 3, 10, 8, 0, 0, 0, loc)
	yesterday := time.Date(2024, 3, 9, 23, 59, 0, 0, loc)
	today := time.Date(2024, 3, 10, 0, 1, 0, 0, loc)

	subs := []model.Submission{
		{Title: "Late Night", TitleSlug: "late-night", Timestamp: yesterday.Unix()},
		{Title: "Early Bird", TitleSlug: "early-bird", Timestamp: today.Unix()},
	}

	t.Run("today keeps only entries after local midnight", func(t *testing.T) {
		got := model.ReduceRecentSubmissions(subs, types.FilterModeToday, now)
		gt.Array(t, got).Length(1).Required()
		gt.Value(t, got[0].Title).Equal("Early Bird")
	})

	t.Run("24hours keeps both", func(t *testing.T) {
		got := model.ReduceRecentSubmissions(subs, types.FilterMode24Hours, now)
		gt.Array(t, got).Length(2).Required()
		gt.Value(t, got[0].Title).Equal("Early Bird")
		gt.Value(t, got[1].Title).Equal("Late Night")
	})
}

func TestReduceRecentSubmissions_Empty(t *testing.T) {
	got := model.ReduceRecentSubmissions(nil, types.FilterModeToday, time.Now())
	gt.Value(t, got).NotNil()
	gt.Array(t, got).Length(0)
}

func TestNewUserStats(t *testing.T) {
	recent := []model.RecentProblem{
		{Title: "a", Timestamp: 5}, {Title: "b", Timestamp: 4},
		{Title: "c", Timestamp: 3}, {Title: "d", Timestamp: 2},
	}
	stats := model.NewUserStats(10, 20, 5, recent, 7, time.Unix(0, 0))

	gt.Value(t, stats.TotalSolved).Equal(35)
	gt.Value(t, stats.TotalSolved).Equal(stats.EasySolved + stats.MediumSolved + stats.HardSolved)
	gt.Value(t, stats.RecentSolved).Equal(len(stats.RecentProblems))
	gt.Array(t, stats.RecentProblemsForDisplay).Length(3)
	gt.Value(t, stats.RecentProblemsForDisplay[0].Title).Equal("a")
	gt.Value(t, stats.LongestStreak).Equal(7)

	clone := stats.Clone()
	clone.RecentProblems[0].Title = "changed"
	gt.Value(t, stats.RecentProblems[0].Title).Equal("a")
}
