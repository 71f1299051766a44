package leetcode_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/leetwatch/pkg/domain/types"
	"github.com/secmon-lab/leetwatch/pkg/service/leetcode"
)

type gqlRequest struct {
	Query     string                 `json:"query"`
	Variables map[string]interface{} `json:"variables"`
}

type fakePlatform struct {
	mu       sync.Mutex
	requests []gqlRequest
	headers  []http.Header
	respond  func(req gqlRequest) (int, string)
}

func (f *fakePlatform) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var req gqlRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		w.WriteHeader(http.StatusBadRequest)
		return
	}
	f.mu.Lock()
	f.requests = append(f.requests, req)
	f.headers = append(f.headers, r.Header.Clone())
	f.mu.Unlock()

	status, body := f.respond(req)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(body))
}

func newTestClient(t *testing.T, respond func(req gqlRequest) (int, string)) (leetcode.Service, *fakePlatform) {
	t.Helper()
	fake := &fakePlatform{respond: respond}
	srv := httptest.NewServer(fake)
	t.Cleanup(srv.Close)

	client, err := leetcode.New(
		leetcode.WithEndpoint(srv.URL+"/graphql"),
		leetcode.WithRateLimit(0, 0),
		leetcode.WithUserAgent("leetwatch-test"),
	)
	gt.NoError(t, err).Required()
	return client, fake
}

func TestNew(t *testing.T) {
	t.Run("default options", func(t *testing.T) {
		client, err := leetcode.New()
		gt.NoError(t, err)
		gt.Value(t, client == nil).Equal(false)
	})

	t.Run("invalid endpoint", func(t *testing.T) {
		_, err := leetcode.New(leetcode.WithEndpoint("not a url"))
		gt.Error(t, err)
	})
}

func TestGetUserProfile(t *testing.T) {
	t.Run("decodes stats, calendar and submissions", func(t *testing.T) {
		client, fake := newTestClient(t, func(req gqlRequest) (int, string) {
			return http.StatusOK, `{"data":{
				"matchedUser":{
					"submitStats":{"acSubmissionNum":[
						{"difficulty":"All","count":60},
						{"difficulty":"Easy","count":30},
						{"difficulty":"Medium","count":20},
						{"difficulty":"Hard","count":10}
					]},
					"submissionCalendar":"{\"1700000000\": 2}"
				},
				"recentAcSubmissionList":[
					{"id":"1","title":"Two Sum","timestamp":"1700000100","titleSlug":"two-sum"},
					{"id":"2","title":"Broken","timestamp":"not-a-number","titleSlug":"broken"}
				]
			}}`
		})

		profile, err := client.GetUserProfile(context.Background(), "alice", 100)
		gt.NoError(t, err).Required()

		gt.Value(t, profile.SolvedCount(types.DifficultyEasy)).Equal(30)
		gt.Value(t, profile.SolvedCount(types.DifficultyMedium)).Equal(20)
		gt.Value(t, profile.SolvedCount(types.DifficultyHard)).Equal(10)
		gt.Value(t, profile.SubmissionCalendar).Equal(`{"1700000000": 2}`)

		gt.Array(t, profile.RecentAccepted).Length(1).Required()
		gt.Value(t, profile.RecentAccepted[0].Title).Equal("Two Sum")
		gt.Value(t, profile.RecentAccepted[0].TitleSlug).Equal("two-sum")
		gt.Value(t, profile.RecentAccepted[0].Timestamp).Equal(int64(1700000100))

		gt.Array(t, fake.requests).Length(1).Required()
		gt.String(t, fake.requests[0].Query).Contains("matchedUser(username: $username)")
		gt.String(t, fake.requests[0].Query).Contains("recentAcSubmissionList(username: $username, limit: $limit)")
		gt.Value(t, fake.requests[0].Variables["username"]).Equal("alice")
		gt.Value(t, fake.requests[0].Variables["limit"]).Equal(float64(100))

		gt.Value(t, fake.headers[0].Get("User-Agent")).Equal("leetwatch-test")
		gt.String(t, fake.headers[0].Get("Referer")).Contains("http://127.0.0.1")
	})

	t.Run("graphql errors yield empty profile", func(t *testing.T) {
		client, _ := newTestClient(t, func(req gqlRequest) (int, string) {
			return http.StatusOK, `{"data":{"matchedUser":null,"recentAcSubmissionList":null},"errors":[{"message":"That user does not exist."}]}`
		})

		profile, err := client.GetUserProfile(context.Background(), "ghost", 100)
		gt.NoError(t, err).Required()
		gt.Value(t, profile.SolvedCount(types.DifficultyEasy)).Equal(0)
		gt.Value(t, profile.SubmissionCalendar).Equal("")
		gt.Array(t, profile.RecentAccepted).Length(0)
	})

	t.Run("non-2xx status is a failure", func(t *testing.T) {
		client, _ := newTestClient(t, func(req gqlRequest) (int, string) {
			return http.StatusTooManyRequests, `{"error":"slow down"}`
		})

		_, err := client.GetUserProfile(context.Background(), "alice", 100)
		gt.Error(t, err).Is(leetcode.ErrUnexpectedStatus)
	})

	t.Run("undecodable body is a failure", func(t *testing.T) {
		client, _ := newTestClient(t, func(req gqlRequest) (int, string) {
			return http.StatusOK, `<html>maintenance</html>`
		})

		_, err := client.GetUserProfile(context.Background(), "alice", 100)
		gt.Error(t, err)
	})
}

func TestGetQuestionDifficulty(t *testing.T) {
	client, fake := newTestClient(t, func(req gqlRequest) (int, string) {
		if req.Variables["titleSlug"] == "two-sum" {
			return http.StatusOK, `{"data":{"question":{"difficulty":"Easy"}}}`
		}
		return http.StatusOK, `{"data":{"question":{"difficulty":"Legendary"}}}`
	})

	d, err := client.GetQuestionDifficulty(context.Background(), "two-sum")
	gt.NoError(t, err)
	gt.Value(t, d).Equal(types.DifficultyEasy)

	d, err = client.GetQuestionDifficulty(context.Background(), "mystery")
	gt.NoError(t, err)
	gt.Value(t, d).Equal(types.DifficultyUnknown)

	gt.String(t, fake.requests[0].Query).Contains("question(titleSlug: $titleSlug)")
}

func TestUserExists(t *testing.T) {
	client, _ := newTestClient(t, func(req gqlRequest) (int, string) {
		switch req.Variables["username"] {
		case "alice":
			return http.StatusOK, `{"data":{"matchedUser":{"username":"alice"}}}`
		case "down":
			return http.StatusBadGateway, `bad gateway`
		default:
			return http.StatusOK, `{"data":{"matchedUser":null},"errors":[{"message":"That user does not exist."}]}`
		}
	})

	ok, err := client.UserExists(context.Background(), "alice")
	gt.NoError(t, err)
	gt.Bool(t, ok).True()

	ok, err = client.UserExists(context.Background(), "ghost")
	gt.NoError(t, err)
	gt.Bool(t, ok).False()

	_, err = client.UserExists(context.Background(), "down")
	gt.Error(t, err).Is(leetcode.ErrUnexpectedStatus)
}

func TestGetDailyChallenge(t *testing.T) {
	t.Run("decodes question", func(t *testing.T) {
		client, fake := newTestClient(t, func(req gqlRequest) (int, string) {
			return http.StatusOK, `{"data":{"activeDailyCodingChallengeQuestion":{
				"date":"2026-10-14",
				"link":"/problems/two-sum/",
				"question":{
					"acRate":55.5,
					"difficulty":"Easy",
					"questionFrontendId":"1",
					"isPaidOnly":false,
					"title":"Two Sum",
					"titleSlug":"two-sum",
					"topicTags":[{"name":"Array","slug":"array"},{"name":"Hash Table","slug":"hash-table"}]
				}
			}}}`
		})

		dc, err := client.GetDailyChallenge(context.Background())
		gt.NoError(t, err).Required()
		gt.Value(t, dc.Date).Equal("2026-10-14")
		gt.Value(t, dc.URL()).Equal("https://leetcode.com/problems/two-sum/")
		gt.Value(t, dc.Question.Title).Equal("Two Sum")
		gt.Value(t, dc.Question.Difficulty).Equal(types.DifficultyEasy)
		gt.Value(t, dc.Question.FrontendQuestionID).Equal("1")
		gt.Value(t, dc.Question.AcRate).Equal(55.5)
		gt.Array(t, dc.Question.TopicTags).Length(2)

		gt.String(t, fake.requests[0].Query).Contains("activeDailyCodingChallengeQuestion")
		gt.Bool(t, strings.Contains(fake.requests[0].Query, "$")).False()
	})

	t.Run("empty response", func(t *testing.T) {
		client, _ := newTestClient(t, func(req gqlRequest) (int, string) {
			return http.StatusOK, `{"data":{"activeDailyCodingChallengeQuestion":null}}`
		})

		_, err := client.GetDailyChallenge(context.Background())
		gt.Error(t, err).Is(leetcode.ErrNoDailyChallenge)
	})
}

func TestGetRecentAcceptedSlugs(t *testing.T) {
	client, fake := newTestClient(t, func(req gqlRequest) (int, string) {
		return http.StatusOK, `{"data":{"recentAcSubmissionList":[{"titleSlug":"two-sum"},{"titleSlug":"add-two-numbers"}]}}`
	})

	slugs, err := client.GetRecentAcceptedSlugs(context.Background(), "alice", 200)
	gt.NoError(t, err).Required()
	gt.Value(t, slugs).Equal([]string{"two-sum", "add-two-numbers"})
	gt.Value(t, fake.requests[0].Variables["limit"]).Equal(float64(200))
}
