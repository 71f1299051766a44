package leetcode

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/leetwatch/pkg/domain/model"
	"github.com/secmon-lab/leetwatch/pkg/domain/types"
	"github.com/secmon-lab/leetwatch/pkg/utils/logging"
	"github.com/shurcooL/graphql"
	"golang.org/x/time/rate"
)

const (
	DefaultEndpoint  = "https://leetcode.com/graphql"
	DefaultTimeout   = 30 * time.Second
	DefaultRateLimit = 5.0
	DefaultBurst     = 5
	defaultUserAgent = "leetwatch"
)

type client struct {
	gql *graphql.Client
}

type options struct {
	endpoint  string
	timeout   time.Duration
	rateLimit float64
	burst     int
	userAgent string
	roundTrip http.RoundTripper
}

// Option configures the platform client
type Option func(*options)

// WithEndpoint overrides the GraphQL endpoint URL
func WithEndpoint(endpoint string) Option {
	return func(o *options) { o.endpoint = endpoint }
}

// WithTimeout sets the per-request timeout. Zero disables it.
func WithTimeout(d time.Duration) Option {
	return func(o *options) { o.timeout = d }
}

// WithRateLimit sets requests per second and burst. A non-positive rps disables throttling.
func WithRateLimit(rps float64, burst int) Option {
	return func(o *options) {
		o.rateLimit = rps
		o.burst = burst
	}
}

// WithUserAgent sets the User-Agent header
func WithUserAgent(ua string) Option {
	return func(o *options) { o.userAgent = ua }
}

// WithRoundTripper replaces the underlying HTTP transport
func WithRoundTripper(rt http.RoundTripper) Option {
	return func(o *options) { o.roundTrip = rt }
}

// New creates a platform Service backed by the GraphQL endpoint
func New(opts ...Option) (Service, error) {
	o := &options{
		endpoint:  DefaultEndpoint,
		timeout:   DefaultTimeout,
		rateLimit: DefaultRateLimit,
		burst:     DefaultBurst,
		userAgent: defaultUserAgent,
		roundTrip: http.DefaultTransport,
	}
	for _, opt := range opts {
		opt(o)
	}

	u, err := url.Parse(o.endpoint)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, goerr.New("invalid platform endpoint", goerr.V("endpoint", o.endpoint))
	}

	tr := &transport{
		base:      o.roundTrip,
		userAgent: o.userAgent,
		referer:   u.Scheme + "://" + u.Host,
	}
	if o.rateLimit > 0 {
		burst := max(o.burst, 1)
		tr.limiter = rate.NewLimiter(rate.Limit(o.rateLimit), burst)
	}

	httpClient := &http.Client{Transport: tr, Timeout: o.timeout}
	return &client{gql: graphql.NewClient(o.endpoint, httpClient)}, nil
}

// isHardFailure separates failures of the request itself from GraphQL-level
// errors reported inside a 2xx response.
func isHardFailure(err error) bool {
	var urlErr *url.Error
	var syntaxErr *json.SyntaxError
	return errors.As(err, &urlErr) ||
		errors.As(err, &syntaxErr) ||
		errors.Is(err, io.ErrUnexpectedEOF) ||
		errors.Is(err, context.Canceled) ||
		errors.Is(err, context.DeadlineExceeded)
}

func (c *client) GetUserProfile(ctx context.Context, username string, limit int) (*UserProfile, error) {
	var q userProfileQuery
	variables := map[string]interface{}{
		"username": graphql.String(username),
		"limit":    graphql.Int(limit),
	}

	if err := c.gql.Query(ctx, &q, variables); err != nil {
		if isHardFailure(err) {
			return nil, goerr.Wrap(err, "failed to query user profile", goerr.V("username", username))
		}
		logging.From(ctx).Warn("platform returned errors for user profile, using partial data",
			"username", username, "error", err.Error())
	}

	profile := &UserProfile{
		SubmissionCalendar: string(q.MatchedUser.SubmissionCalendar),
	}
	for _, row := range q.MatchedUser.SubmitStats.AcSubmissionNum {
		profile.AcSubmissionNum = append(profile.AcSubmissionNum, DifficultyCount{
			Difficulty: string(row.Difficulty),
			Count:      int(row.Count),
		})
	}
	for _, node := range q.RecentAcSubmissionList {
		ts, err := strconv.ParseInt(string(node.Timestamp), 10, 64)
		if err != nil {
			logging.From(ctx).Warn("skipping submission with invalid timestamp",
				"username", username, "title", string(node.Title), "timestamp", string(node.Timestamp))
			continue
		}
		profile.RecentAccepted = append(profile.RecentAccepted, model.Submission{
			ID:        string(node.ID),
			Title:     string(node.Title),
			TitleSlug: string(node.TitleSlug),
			Timestamp: ts,
		})
	}

	return profile, nil
}

func (c *client) GetQuestionDifficulty(ctx context.Context, titleSlug string) (types.Difficulty, error) {
	var q questionDifficultyQuery
	variables := map[string]interface{}{
		"titleSlug": graphql.String(titleSlug),
	}

	if err := c.gql.Query(ctx, &q, variables); err != nil {
		return types.DifficultyUnknown, goerr.Wrap(err, "failed to query question difficulty", goerr.V("titleSlug", titleSlug))
	}

	return types.NormalizeDifficulty(string(q.Question.Difficulty)), nil
}

func (c *client) UserExists(ctx context.Context, username string) (bool, error) {
	var q userExistsQuery
	variables := map[string]interface{}{
		"username": graphql.String(username),
	}

	if err := c.gql.Query(ctx, &q, variables); err != nil {
		if isHardFailure(err) {
			return false, goerr.Wrap(err, "failed to check user existence", goerr.V("username", username))
		}
		// The platform answers "That user does not exist." as a GraphQL error
		return false, nil
	}

	return q.MatchedUser.Username != "", nil
}

func (c *client) GetDailyChallenge(ctx context.Context) (*model.DailyChallenge, error) {
	var q dailyChallengeQuery
	if err := c.gql.Query(ctx, &q, nil); err != nil {
		return nil, goerr.Wrap(err, "failed to query daily challenge")
	}

	d := q.ActiveDailyCodingChallengeQuestion
	if d.Question.TitleSlug == "" {
		return nil, goerr.Wrap(ErrNoDailyChallenge, "empty daily challenge response")
	}

	tags := make([]model.TopicTag, 0, len(d.Question.TopicTags))
	for _, tag := range d.Question.TopicTags {
		tags = append(tags, model.TopicTag{Name: string(tag.Name), Slug: string(tag.Slug)})
	}

	return &model.DailyChallenge{
		Date: string(d.Date),
		Link: string(d.Link),
		Question: model.Question{
			Title:              string(d.Question.Title),
			TitleSlug:          string(d.Question.TitleSlug),
			Difficulty:         types.NormalizeDifficulty(string(d.Question.Difficulty)),
			FrontendQuestionID: string(d.Question.QuestionFrontendID),
			AcRate:             float64(d.Question.AcRate),
			PaidOnly:           bool(d.Question.IsPaidOnly),
			TopicTags:          tags,
		},
	}, nil
}

func (c *client) GetRecentAcceptedSlugs(ctx context.Context, username string, limit int) ([]string, error) {
	var q recentSlugsQuery
	variables := map[string]interface{}{
		"username": graphql.String(username),
		"limit":    graphql.Int(limit),
	}

	if err := c.gql.Query(ctx, &q, variables); err != nil {
		return nil, goerr.Wrap(err, "failed to query recent accepted submissions", goerr.V("username", username))
	}

	slugs := make([]string, 0, len(q.RecentAcSubmissionList))
	for _, node := range q.RecentAcSubmissionList {
		slugs = append(slugs, string(node.TitleSlug))
	}
	return slugs, nil
}

// GraphQL query types

type userProfileQuery struct {
	MatchedUser struct {
		SubmitStats struct {
			AcSubmissionNum []struct {
				Difficulty graphql.String
				Count      graphql.Int
			}
		}
		SubmissionCalendar graphql.String
	} `graphql:"matchedUser(username: $username)"`
	RecentAcSubmissionList []submissionNode `graphql:"recentAcSubmissionList(username: $username, limit: $limit)"`
}

type submissionNode struct {
	ID        graphql.String `graphql:"id"`
	Title     graphql.String
	Timestamp graphql.String
	TitleSlug graphql.String
}

type questionDifficultyQuery struct {
	Question struct {
		Difficulty graphql.String
	} `graphql:"question(titleSlug: $titleSlug)"`
}

type userExistsQuery struct {
	MatchedUser struct {
		Username graphql.String
	} `graphql:"matchedUser(username: $username)"`
}

type dailyChallengeQuery struct {
	ActiveDailyCodingChallengeQuestion struct {
		Date     graphql.String
		Link     graphql.String
		Question struct {
			AcRate             graphql.Float
			Difficulty         graphql.String
			QuestionFrontendID graphql.String `graphql:"questionFrontendId"`
			IsPaidOnly         graphql.Boolean
			Title              graphql.String
			TitleSlug          graphql.String
			TopicTags          []struct {
				Name graphql.String
				Slug graphql.String
			}
		}
	}
}

type recentSlugsQuery struct {
	RecentAcSubmissionList []struct {
		TitleSlug graphql.String
	} `graphql:"recentAcSubmissionList(username: $username, limit: $limit)"`
}
