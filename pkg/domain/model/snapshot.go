package model

import (
	"cmp"
	"slices"

	"github.com/secmon-lab/leetwatch/pkg/domain/types"
)

// DefaultLatestSolvesLimit is the number of entries in the cross-user latest solves list
const DefaultLatestSolvesLimit = 6

// UserEntry is the published view of one tracked user
type UserEntry struct {
	Username string          `json:"username"`
	State    types.UserState `json:"state"`
	Stats    *UserStats      `json:"stats,omitempty"`
	Error    string          `json:"error,omitempty"`
}

// Snapshot is an immutable copy of the tracker state
type Snapshot struct {
	Users          []UserEntry      `json:"users"`
	FilterMode     types.FilterMode `json:"filterMode"`
	Loading        bool             `json:"loading"`
	RefreshTrigger uint64           `json:"refreshTrigger"`
}

// Usernames returns tracked usernames in insertion order
func (s Snapshot) Usernames() []string {
	names := make([]string, len(s.Users))
	for i, u := range s.Users {
		names[i] = u.Username
	}
	return names
}

// Lookup returns the entry for username
func (s Snapshot) Lookup(username string) (UserEntry, bool) {
	for _, u := range s.Users {
		if u.Username == username {
			return u, true
		}
	}
	return UserEntry{}, false
}

// Ranked returns users ordered by recent activity (descending), then by username
func (s Snapshot) Ranked() []UserEntry {
	ranked := slices.Clone(s.Users)
	slices.SortStableFunc(ranked, func(a, b UserEntry) int {
		if c := cmp.Compare(recentSolved(b), recentSolved(a)); c != 0 {
			return c
		}
		return cmp.Compare(a.Username, b.Username)
	})
	return ranked
}

func recentSolved(u UserEntry) int {
	if u.Stats == nil {
		return 0
	}
	return u.Stats.RecentSolved
}

// Solve is a recent problem attributed to a tracked user
type Solve struct {
	Username string `json:"username"`
	RecentProblem
}

// LatestSolves merges every user's recent problems and returns the newest
// limit entries. A non-positive limit returns them all.
func (s Snapshot) LatestSolves(limit int) []Solve {
	var solves []Solve
	for _, u := range s.Users {
		if u.Stats == nil {
			continue
		}
		for _, p := range u.Stats.RecentProblems {
			solves = append(solves, Solve{Username: u.Username, RecentProblem: p})
		}
	}

	slices.SortStableFunc(solves, func(a, b Solve) int {
		return cmp.Compare(b.Timestamp, a.Timestamp)
	})

	if limit > 0 && len(solves) > limit {
		solves = solves[:limit]
	}
	if solves == nil {
		solves = []Solve{}
	}
	return solves
}
