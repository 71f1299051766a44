package leetcode

import (
	"context"

	"github.com/secmon-lab/leetwatch/pkg/domain/model"
	"github.com/secmon-lab/leetwatch/pkg/domain/types"
)

// Service provides access to the platform's GraphQL API
type Service interface {
	// GetUserProfile runs the combined stats, calendar and recent-accepted query.
	// Only transport failures, non-2xx responses and undecodable bodies are
	// returned as errors; GraphQL-level errors yield whatever data was present.
	GetUserProfile(ctx context.Context, username string, limit int) (*UserProfile, error)

	// GetQuestionDifficulty looks up the difficulty of a problem by slug
	GetQuestionDifficulty(ctx context.Context, titleSlug string) (types.Difficulty, error)

	// UserExists reports whether username is a registered platform user
	UserExists(ctx context.Context, username string) (bool, error)

	// GetDailyChallenge returns today's question of the day
	GetDailyChallenge(ctx context.Context) (*model.DailyChallenge, error)

	// GetRecentAcceptedSlugs returns slugs of the user's most recent accepted submissions
	GetRecentAcceptedSlugs(ctx context.Context, username string, limit int) ([]string, error)
}

// DifficultyCount is one row of the all-time accepted count by difficulty
type DifficultyCount struct {
	Difficulty string
	Count      int
}

// UserProfile is the raw result of the combined user query
type UserProfile struct {
	AcSubmissionNum    []DifficultyCount
	SubmissionCalendar string
	RecentAccepted     []model.Submission
}

// SolvedCount returns the accepted count for difficulty, or 0 when absent
func (p *UserProfile) SolvedCount(difficulty types.Difficulty) int {
	for _, c := range p.AcSubmissionNum {
		if c.Difficulty == string(difficulty) {
			return c.Count
		}
	}
	return 0
}
