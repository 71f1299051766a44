package usecase_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/secmon-lab/leetwatch/pkg/domain/model"
	"github.com/secmon-lab/leetwatch/pkg/domain/types"
	"github.com/secmon-lab/leetwatch/pkg/repository"
	"github.com/secmon-lab/leetwatch/pkg/repository/memory"
	"github.com/secmon-lab/leetwatch/pkg/service/leetcode"
)

type mockLeetCode struct {
	getUserProfileFn         func(ctx context.Context, username string, limit int) (*leetcode.UserProfile, error)
	getQuestionDifficultyFn  func(ctx context.Context, titleSlug string) (types.Difficulty, error)
	userExistsFn             func(ctx context.Context, username string) (bool, error)
	getDailyChallengeFn      func(ctx context.Context) (*model.DailyChallenge, error)
	getRecentAcceptedSlugsFn func(ctx context.Context, username string, limit int) ([]string, error)
}

var _ leetcode.Service = &mockLeetCode{}

func (m *mockLeetCode) GetUserProfile(ctx context.Context, username string, limit int) (*leetcode.UserProfile, error) {
	if m.getUserProfileFn != nil {
		return m.getUserProfileFn(ctx, username, limit)
	}
	return &leetcode.UserProfile{}, nil
}

func (m *mockLeetCode) GetQuestionDifficulty(ctx context.Context, titleSlug string) (types.Difficulty, error) {
	if m.getQuestionDifficultyFn != nil {
		return m.getQuestionDifficultyFn(ctx, titleSlug)
	}
	return types.DifficultyUnknown, nil
}

func (m *mockLeetCode) UserExists(ctx context.Context, username string) (bool, error) {
	if m.userExistsFn != nil {
		return m.userExistsFn(ctx, username)
	}
	return true, nil
}

func (m *mockLeetCode) GetDailyChallenge(ctx context.Context) (*model.DailyChallenge, error) {
	if m.getDailyChallengeFn != nil {
		return m.getDailyChallengeFn(ctx)
	}
	return nil, leetcode.ErrNoDailyChallenge
}

func (m *mockLeetCode) GetRecentAcceptedSlugs(ctx context.Context, username string, limit int) ([]string, error) {
	if m.getRecentAcceptedSlugsFn != nil {
		return m.getRecentAcceptedSlugsFn(ctx, username, limit)
	}
	return nil, nil
}

type fetchCall struct {
	username string
	mode     types.FilterMode
}

// mockFetcher records every Fetch call
type mockFetcher struct {
	fetchFn func(ctx context.Context, username string, mode types.FilterMode) (*model.UserStats, error)

	mu    sync.Mutex
	calls []fetchCall
}

func (m *mockFetcher) Fetch(ctx context.Context, username string, mode types.FilterMode) (*model.UserStats, error) {
	m.mu.Lock()
	m.calls = append(m.calls, fetchCall{username: username, mode: mode})
	m.mu.Unlock()

	if m.fetchFn != nil {
		return m.fetchFn(ctx, username, mode)
	}
	return statsWithEasy(1), nil
}

func (m *mockFetcher) Calls() []fetchCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]fetchCall{}, m.calls...)
}

func (m *mockFetcher) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.calls)
}

func statsWithEasy(n int) *model.UserStats {
	return model.NewUserStats(n, 0, 0, nil, 0, time.Now())
}

func newLocalStore() *repository.LocalStore {
	return repository.NewLocalStore(memory.NewKeyValueStore())
}

// hookedKV calls putFn before every Put
type hookedKV struct {
	*memory.KeyValueStore
	putFn func(key string)
}

func (h *hookedKV) Put(ctx context.Context, key, value string, expiresAt time.Time) error {
	if h.putFn != nil {
		h.putFn(key)
	}
	return h.KeyValueStore.Put(ctx, key, value, expiresAt)
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(3 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatal("condition not met before deadline")
}
