package repository

import (
	"context"
	"encoding/json"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/leetwatch/pkg/domain/interfaces"
	"github.com/secmon-lab/leetwatch/pkg/domain/model"
	"github.com/secmon-lab/leetwatch/pkg/domain/types"
	"github.com/secmon-lab/leetwatch/pkg/utils/logging"
)

// Keys in the local KV store
const (
	KeyTrackedUsers   = "leetcodeUsers"
	KeyFilterMode     = "recentSolvesFilterMode"
	KeyDailyChallenge = "leetcode_daily_challenge"
)

// LocalStore is the typed view over the device-local KeyValueStore
type LocalStore struct {
	kv interfaces.KeyValueStore
}

func NewLocalStore(kv interfaces.KeyValueStore) *LocalStore {
	return &LocalStore{kv: kv}
}

// LoadTrackedUsers returns the persisted username list. A missing or corrupt
// value yields an empty list.
func (s *LocalStore) LoadTrackedUsers(ctx context.Context) ([]string, error) {
	raw, ok, err := s.kv.Get(ctx, KeyTrackedUsers, time.Now())
	if err != nil {
		return nil, goerr.Wrap(err, "failed to load tracked users")
	}
	if !ok {
		return []string{}, nil
	}

	var users []string
	if err := json.Unmarshal([]byte(raw), &users); err != nil {
		logging.From(ctx).Warn("discarding corrupt tracked user list", "error", err.Error())
		return []string{}, nil
	}
	if users == nil {
		users = []string{}
	}
	return users, nil
}

func (s *LocalStore) SaveTrackedUsers(ctx context.Context, users []string) error {
	if users == nil {
		users = []string{}
	}
	raw, err := json.Marshal(users)
	if err != nil {
		return goerr.Wrap(err, "failed to marshal tracked users")
	}
	if err := s.kv.Put(ctx, KeyTrackedUsers, string(raw), time.Time{}); err != nil {
		return goerr.Wrap(err, "failed to save tracked users", goerr.V("count", len(users)))
	}
	return nil
}

// LoadFilterMode returns the persisted mode, or the default when unset or invalid
func (s *LocalStore) LoadFilterMode(ctx context.Context) (types.FilterMode, error) {
	raw, ok, err := s.kv.Get(ctx, KeyFilterMode, time.Now())
	if err != nil {
		return types.DefaultFilterMode, goerr.Wrap(err, "failed to load filter mode")
	}
	if !ok {
		return types.DefaultFilterMode, nil
	}

	mode := types.FilterMode(raw)
	if !mode.IsValid() {
		logging.From(ctx).Warn("ignoring unknown filter mode", "mode", raw)
		return types.DefaultFilterMode, nil
	}
	return mode, nil
}

func (s *LocalStore) SaveFilterMode(ctx context.Context, mode types.FilterMode) error {
	if !mode.IsValid() {
		return goerr.New("invalid filter mode", goerr.V("mode", mode))
	}
	if err := s.kv.Put(ctx, KeyFilterMode, string(mode), time.Time{}); err != nil {
		return goerr.Wrap(err, "failed to save filter mode", goerr.V("mode", mode))
	}
	return nil
}

// LoadDailyChallenge returns the cached challenge if it has not yet rolled over at now
func (s *LocalStore) LoadDailyChallenge(ctx context.Context, now time.Time) (*model.DailyChallenge, bool, error) {
	raw, ok, err := s.kv.Get(ctx, KeyDailyChallenge, now)
	if err != nil {
		return nil, false, goerr.Wrap(err, "failed to load daily challenge")
	}
	if !ok {
		return nil, false, nil
	}

	var dc model.DailyChallenge
	if err := json.Unmarshal([]byte(raw), &dc); err != nil {
		logging.From(ctx).Warn("discarding corrupt daily challenge cache", "error", err.Error())
		return nil, false, nil
	}
	return &dc, true, nil
}

// SaveDailyChallenge caches dc until the next UTC midnight after now
func (s *LocalStore) SaveDailyChallenge(ctx context.Context, dc *model.DailyChallenge, now time.Time) error {
	raw, err := json.Marshal(dc)
	if err != nil {
		return goerr.Wrap(err, "failed to marshal daily challenge")
	}
	if err := s.kv.Put(ctx, KeyDailyChallenge, string(raw), model.NextUTCMidnight(now)); err != nil {
		return goerr.Wrap(err, "failed to save daily challenge", goerr.V("date", dc.Date))
	}
	return nil
}

// ClearDailyChallenge drops the cached challenge
func (s *LocalStore) ClearDailyChallenge(ctx context.Context) error {
	if err := s.kv.Delete(ctx, KeyDailyChallenge); err != nil {
		return goerr.Wrap(err, "failed to clear daily challenge")
	}
	return nil
}

func (s *LocalStore) Close() error {
	return s.kv.Close()
}
