package model

import (
	"cmp"
	"slices"
	"time"

	"github.com/secmon-lab/leetwatch/pkg/domain/types"
)

// RecentWindow is the look-back window applied before any filter mode
const RecentWindow = 24 * time.Hour

// ReduceRecentSubmissions selects submissions within the last 24 hours of now,
// narrows them to those at or after midnight of now's day for
// types.FilterModeToday, keeps only the latest submission per title and
// returns them newest first. Difficulty is left empty for later enrichment.
func ReduceRecentSubmissions(subs []Submission, mode types.FilterMode, now time.Time) []RecentProblem {
	nowUnix := now.Unix()
	windowSec := int64(RecentWindow / time.Second)

	var cutoff int64
	filterToday := mode == types.FilterModeToday
	if filterToday {
		cutoff = time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location()).Unix()
	}

	latest := make(map[string]RecentProblem)
	for _, sub := range subs {
		if nowUnix-sub.Timestamp > windowSec {
			continue
		}
		if filterToday && sub.Timestamp < cutoff {
			continue
		}

		existing, ok := latest[sub.Title]
		if ok && sub.Timestamp <= existing.Timestamp {
			continue
		}
		latest[sub.Title] = RecentProblem{
			Title:     sub.Title,
			TitleSlug: sub.TitleSlug,
			Timestamp: sub.Timestamp,
		}
	}

	result := make([]RecentProblem, 0, len(latest))
	for _, p := range latest {
		result = append(result, p)
	}
	SortRecentProblems(result)

	return result
}

// SortRecentProblems orders problems newest first, breaking ties by title
func SortRecentProblems(problems []RecentProblem) {
	slices.SortFunc(problems, func(a, b RecentProblem) int {
		if c := cmp.Compare(b.Timestamp, a.Timestamp); c != 0 {
			return c
		}
		return cmp.Compare(a.Title, b.Title)
	})
}
