package cli_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/fatih/color"
	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/leetwatch/pkg/cli"
	"github.com/secmon-lab/leetwatch/pkg/domain/model"
	"github.com/secmon-lab/leetwatch/pkg/domain/types"
	"github.com/secmon-lab/leetwatch/pkg/repository"
	"github.com/secmon-lab/leetwatch/pkg/repository/memory"
)

func init() {
	color.NoColor = true
}

// fakePlatform answers GraphQL queries by matching a fragment of the query text
func fakePlatform(t *testing.T, responses map[string]string) string {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Query string `json:"query"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		for fragment, body := range responses {
			if strings.Contains(req.Query, fragment) {
				w.Header().Set("Content-Type", "application/json")
				_, _ = w.Write([]byte(body))
				return
			}
		}
		w.WriteHeader(http.StatusNotFound)
	}))
	t.Cleanup(srv.Close)
	return srv.URL + "/graphql"
}

func TestEnvFileFromArgs(t *testing.T) {
	testCases := []struct {
		name     string
		args     []string
		path     string
		explicit bool
	}{
		{name: "default", args: []string{"leetwatch", "serve"}, path: ".env", explicit: false},
		{name: "separate value", args: []string{"leetwatch", "--env-file", "prod.env", "serve"}, path: "prod.env", explicit: true},
		{name: "inline value", args: []string{"leetwatch", "--env-file=dev.env"}, path: "dev.env", explicit: true},
		{name: "after terminator", args: []string{"leetwatch", "stats", "--", "--env-file=x"}, path: ".env", explicit: false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			path, explicit := cli.EnvFileFromArgs(tc.args)
			gt.Value(t, path).Equal(tc.path)
			gt.Value(t, explicit).Equal(tc.explicit)
		})
	}
}

func TestLoadEnvFile(t *testing.T) {
	t.Run("loads explicit file", func(t *testing.T) {
		const key = "LEETWATCH_TEST_ENV_FILE_VALUE"
		path := filepath.Join(t.TempDir(), "test.env")
		gt.NoError(t, os.WriteFile(path, []byte(key+"=loaded\n"), 0600)).Required()
		t.Cleanup(func() { _ = os.Unsetenv(key) })

		gt.NoError(t, cli.LoadEnvFile([]string{"leetwatch", "--env-file", path})).Required()
		gt.Value(t, os.Getenv(key)).Equal("loaded")
	})

	t.Run("missing explicit file", func(t *testing.T) {
		err := cli.LoadEnvFile([]string{"leetwatch", "--env-file", filepath.Join(t.TempDir(), "absent.env")})
		gt.Error(t, err)
	})

	t.Run("missing default file", func(t *testing.T) {
		t.Chdir(t.TempDir())
		gt.NoError(t, cli.LoadEnvFile([]string{"leetwatch"}))
	})
}

func TestSeedUsers(t *testing.T) {
	ctx := context.Background()

	t.Run("seeds an empty store", func(t *testing.T) {
		store := repository.NewLocalStore(memory.NewKeyValueStore())
		gt.NoError(t, cli.SeedUsers(ctx, store, []string{"alice", "bob"})).Required()

		users, err := store.LoadTrackedUsers(ctx)
		gt.NoError(t, err).Required()
		gt.Array(t, users).Equal([]string{"alice", "bob"})
	})

	t.Run("keeps an existing list", func(t *testing.T) {
		store := repository.NewLocalStore(memory.NewKeyValueStore())
		gt.NoError(t, store.SaveTrackedUsers(ctx, []string{"carol"})).Required()
		gt.NoError(t, cli.SeedUsers(ctx, store, []string{"alice"})).Required()

		users, err := store.LoadTrackedUsers(ctx)
		gt.NoError(t, err).Required()
		gt.Array(t, users).Equal([]string{"carol"})
	})
}

func TestPrintStats(t *testing.T) {
	solvedAt := time.Date(2026, 10, 14, 9, 30, 0, 0, time.UTC)
	stats := model.NewUserStats(10, 5, 1, []model.RecentProblem{
		{Title: "Two Sum", TitleSlug: "two-sum", Timestamp: solvedAt.Unix(), Difficulty: types.DifficultyEasy},
	}, 4, solvedAt)

	var buf bytes.Buffer
	cli.PrintStats(&buf, "alice", stats, types.FilterModeToday, time.UTC)

	out := buf.String()
	gt.String(t, out).Contains("alice  total 16 (Easy 10 / Medium 5 / Hard 1)  longest streak 4")
	gt.String(t, out).Contains("recent (Today): 1")
	gt.String(t, out).Contains("- Two Sum [Easy] 2026-10-14 09:30:00 https://leetcode.com/problems/two-sum/")
}

func TestPrintDaily(t *testing.T) {
	challenge := &model.DailyChallenge{
		Date: "2026-10-14",
		Link: "/problems/two-sum/",
		Question: model.Question{
			Title:              "Two Sum",
			TitleSlug:          "two-sum",
			Difficulty:         types.DifficultyEasy,
			FrontendQuestionID: "1",
		},
	}

	var buf bytes.Buffer
	cli.PrintDaily(&buf, challenge, map[string]bool{"bob": false, "alice": true})

	out := buf.String()
	gt.String(t, out).Contains("2026-10-14  1. Two Sum [Easy]")
	gt.String(t, out).Contains("solved by 1/2")
	gt.Bool(t, strings.Index(out, "alice") < strings.Index(out, "bob")).True()
}

func TestStatsCommand(t *testing.T) {
	endpoint := fakePlatform(t, map[string]string{
		"submitStats": `{"data":{
			"matchedUser":{
				"submitStats":{"acSubmissionNum":[
					{"difficulty":"All","count":6},
					{"difficulty":"Easy","count":3},
					{"difficulty":"Medium","count":2},
					{"difficulty":"Hard","count":1}
				]},
				"submissionCalendar":"{}"
			},
			"recentAcSubmissionList":[]
		}}`,
	})

	var buf bytes.Buffer
	app := cli.NewApp("test", &buf)
	err := app.Run(context.Background(), []string{
		"leetwatch", "--log-level", "error",
		"stats", "--leetcode-endpoint", endpoint, "--leetcode-rate-limit", "0", "alice",
	})
	gt.NoError(t, err).Required()
	gt.String(t, buf.String()).Contains("alice  total 6 (Easy 3 / Medium 2 / Hard 1)")
}

func TestStatsCommandRequiresUsername(t *testing.T) {
	var buf bytes.Buffer
	err := cli.NewApp("test", &buf).Run(context.Background(), []string{"leetwatch", "--log-level", "error", "stats"})
	gt.Error(t, err)
}

func TestDailyCommand(t *testing.T) {
	endpoint := fakePlatform(t, map[string]string{
		"activeDailyCodingChallengeQuestion": `{"data":{"activeDailyCodingChallengeQuestion":{
			"date":"2026-10-14",
			"link":"/problems/two-sum/",
			"question":{
				"acRate":55.5,
				"difficulty":"Easy",
				"questionFrontendId":"1",
				"isPaidOnly":false,
				"title":"Two Sum",
				"titleSlug":"two-sum",
				"topicTags":[]
			}
		}}}`,
		"recentAcSubmissionList": `{"data":{"recentAcSubmissionList":[{"titleSlug":"two-sum"}]}}`,
	})

	var buf bytes.Buffer
	err := cli.NewApp("test", &buf).Run(context.Background(), []string{
		"leetwatch", "--log-level", "error",
		"daily", "--leetcode-endpoint", endpoint, "--leetcode-rate-limit", "0",
		"--local-backend", "memory", "alice",
	})
	gt.NoError(t, err).Required()

	out := buf.String()
	gt.String(t, out).Contains("Two Sum [Easy]")
	gt.String(t, out).Contains("solved by 1/1")
}

func TestHTTPServerShutdownEndsStreams(t *testing.T) {
	entered := make(chan struct{})
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/event-stream")
		w.WriteHeader(http.StatusOK)
		w.(http.Flusher).Flush()
		close(entered)
		<-r.Context().Done()
	})

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	gt.NoError(t, err).Required()
	server := cli.NewHTTPServer(context.Background(), ln.Addr().String(), handler)
	go func() { _ = server.Serve(ln) }()

	resp, err := http.Get("http://" + ln.Addr().String() + "/api/events")
	gt.NoError(t, err).Required()
	defer resp.Body.Close()
	<-entered

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	gt.NoError(t, server.Shutdown(ctx))
}
