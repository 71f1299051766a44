package model

import (
	"time"

	"github.com/secmon-lab/leetwatch/pkg/domain/types"
)

// DisplayProblemLimit is the number of recent problems shown on a user card
const DisplayProblemLimit = 3

// Submission is one accepted submission as reported by the platform
type Submission struct {
	ID        string
	Title     string
	TitleSlug string
	Timestamp int64 // unix seconds
}

// RecentProblem is a distinct problem solved within the active window
type RecentProblem struct {
	Title      string           `json:"title"`
	TitleSlug  string           `json:"titleSlug"`
	Timestamp  int64            `json:"timestamp"`
	Difficulty types.Difficulty `json:"difficulty"`
}

// URL returns the problem page on the platform
func (p RecentProblem) URL() string {
	return ProblemURL(p.TitleSlug)
}

// UserStats is the derived statistics for one tracked user. It is rebuilt
// from scratch on every fetch and never patched in place.
type UserStats struct {
	EasySolved               int             `json:"easySolved"`
	MediumSolved             int             `json:"mediumSolved"`
	HardSolved               int             `json:"hardSolved"`
	TotalSolved              int             `json:"totalSolved"`
	RecentSolved             int             `json:"recentSolved"`
	RecentProblems           []RecentProblem `json:"recentProblems"`
	RecentProblemsForDisplay []RecentProblem `json:"recentProblemsForDisplay"`
	LongestStreak            int             `json:"longestStreak"`
	FetchedAt                time.Time       `json:"fetchedAt"`
}

// NewUserStats builds UserStats keeping TotalSolved and RecentSolved consistent
// with their sources. recent must already be sorted newest first.
func NewUserStats(easy, medium, hard int, recent []RecentProblem, longestStreak int, fetchedAt time.Time) *UserStats {
	if recent == nil {
		recent = []RecentProblem{}
	}
	display := recent
	if len(display) > DisplayProblemLimit {
		display = display[:DisplayProblemLimit]
	}

	return &UserStats{
		EasySolved:               easy,
		MediumSolved:             medium,
		HardSolved:               hard,
		TotalSolved:              easy + medium + hard,
		RecentSolved:             len(recent),
		RecentProblems:           recent,
		RecentProblemsForDisplay: display,
		LongestStreak:            longestStreak,
		FetchedAt:                fetchedAt,
	}
}

// Clone returns a deep copy
func (s *UserStats) Clone() *UserStats {
	if s == nil {
		return nil
	}
	c := *s
	c.RecentProblems = append([]RecentProblem{}, s.RecentProblems...)
	c.RecentProblemsForDisplay = append([]RecentProblem{}, s.RecentProblemsForDisplay...)
	return &c
}
