package model

import (
	"time"

	"github.com/secmon-lab/leetwatch/pkg/domain/types"
)

// TopicTag is a problem topic label
type TopicTag struct {
	Name string `json:"name"`
	Slug string `json:"slug"`
}

// Question is the problem behind a daily challenge
type Question struct {
	Title              string           `json:"title"`
	TitleSlug          string           `json:"titleSlug"`
	Difficulty         types.Difficulty `json:"difficulty"`
	FrontendQuestionID string           `json:"frontendQuestionId"`
	AcRate             float64          `json:"acRate"`
	PaidOnly           bool             `json:"paidOnly"`
	TopicTags          []TopicTag       `json:"topicTags"`
}

// DailyChallenge is the platform's question of the day
type DailyChallenge struct {
	Date     string   `json:"date"`
	Link     string   `json:"link"`
	Question Question `json:"question"`
}

// URL returns the absolute link to the challenge
func (c *DailyChallenge) URL() string {
	if c.Link == "" {
		return ProblemURL(c.Question.TitleSlug)
	}
	return PlatformBaseURL + c.Link
}

// NextUTCMidnight returns the first UTC midnight strictly after now. Daily
// challenges roll over at this instant.
func NextUTCMidnight(now time.Time) time.Time {
	u := now.UTC()
	return time.Date(u.Year(), u.Month(), u.Day()+1, 0, 0, 0, 0, time.UTC)
}
