package usecase_test

import (
	"context"
	"errors"
	"slices"
	"testing"
	"time"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/leetwatch/pkg/domain/model"
	"github.com/secmon-lab/leetwatch/pkg/repository/memory"
	"github.com/secmon-lab/leetwatch/pkg/service/identity"
	"github.com/secmon-lab/leetwatch/pkg/usecase"
)

type mockIdentity struct {
	signInFn  func(ctx context.Context, credential string) (*model.Account, error)
	signOutFn func(ctx context.Context) error
}

func (m *mockIdentity) SignIn(ctx context.Context, credential string) (*model.Account, error) {
	return m.signInFn(ctx, credential)
}

func (m *mockIdentity) SignOut(ctx context.Context) error {
	if m.signOutFn != nil {
		return m.signOutFn(ctx)
	}
	return nil
}

func (m *mockIdentity) Current() *model.Account { return nil }

func (m *mockIdentity) Subscribe(handler func(*model.Account)) func() { return func() {} }

func TestMergeUserLists(t *testing.T) {
	testCases := []struct {
		name  string
		cloud []string
		local []string
		want  []string
	}{
		{"cloud first then new local names", []string{"carol", "alice"}, []string{"alice", "bob"}, []string{"carol", "alice", "bob"}},
		{"empty cloud", nil, []string{"alice"}, []string{"alice"}},
		{"empty local", []string{"alice"}, nil, []string{"alice"}},
		{"duplicates removed", []string{"a", "a"}, []string{"b", "a", "b"}, []string{"a", "b"}},
		{"both empty", nil, nil, []string{}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			gt.Value(t, usecase.MergeUserLists(tc.cloud, tc.local)).Equal(tc.want)
		})
	}
}

type syncFixture struct {
	tracker  *usecase.TrackerUseCase
	cloud    *memory.CloudStore
	identity *identity.Static
	sync     *usecase.SyncUseCase
}

func newSyncFixture(t *testing.T, local []string) *syncFixture {
	t.Helper()
	store := newLocalStore()
	tracker := newTracker(t, &mockFetcher{}, nil, store)
	if len(local) > 0 {
		seedUsers(t, store, tracker, local...)
	}

	fx := &syncFixture{
		tracker:  tracker,
		cloud:    memory.NewCloudStore(),
		identity: identity.NewStatic(model.Account{ID: "acc-1", Name: "Local"}),
	}
	fx.sync = usecase.NewSyncUseCase(tracker, fx.cloud, fx.identity)
	fx.sync.Start(context.Background())
	t.Cleanup(fx.sync.Stop)
	return fx
}

func (fx *syncFixture) cloudUsers(t *testing.T) []string {
	t.Helper()
	users, err := fx.cloud.LoadUserList(context.Background(), "acc-1")
	gt.NoError(t, err).Required()
	return users
}

func TestSyncMergeOnSignIn(t *testing.T) {
	ctx := context.Background()
	fx := newSyncFixture(t, []string{"alice", "bob"})
	gt.NoError(t, fx.cloud.SaveUserList(ctx, "acc-1", []string{"carol", "alice"})).Required()

	acc, err := fx.sync.SignIn(ctx, "token")
	gt.NoError(t, err).Required()
	gt.Value(t, acc.ID).Equal("acc-1")

	waitFor(t, fx.sync.Loaded)
	gt.Value(t, fx.tracker.Snapshot().Usernames()).Equal([]string{"carol", "alice", "bob"})
	gt.Value(t, fx.cloudUsers(t)).Equal([]string{"carol", "alice", "bob"})
}

func TestSyncNoWriteBackWithoutNewNames(t *testing.T) {
	ctx := context.Background()
	fx := newSyncFixture(t, []string{"alice"})
	gt.NoError(t, fx.cloud.SaveUserList(ctx, "acc-1", []string{"alice", "bob"})).Required()
	before, _ := fx.cloud.UpdatedAt("acc-1")

	time.Sleep(5 * time.Millisecond)
	_, err := fx.sync.SignIn(ctx, "token")
	gt.NoError(t, err).Required()
	waitFor(t, fx.sync.Loaded)

	after, _ := fx.cloud.UpdatedAt("acc-1")
	gt.Bool(t, after.Equal(before)).True()
	gt.Value(t, fx.tracker.Snapshot().Usernames()).Equal([]string{"alice", "bob"})
}

func TestSyncWritesLocalListToEmptyCloud(t *testing.T) {
	ctx := context.Background()
	fx := newSyncFixture(t, []string{"alice"})

	_, err := fx.sync.SignIn(ctx, "token")
	gt.NoError(t, err).Required()
	waitFor(t, fx.sync.Loaded)

	gt.Value(t, fx.cloudUsers(t)).Equal([]string{"alice"})
}

func TestSyncSavesChangesWhileSignedIn(t *testing.T) {
	ctx := context.Background()
	fx := newSyncFixture(t, nil)

	_, err := fx.sync.SignIn(ctx, "token")
	gt.NoError(t, err).Required()
	waitFor(t, fx.sync.Loaded)

	gt.NoError(t, fx.tracker.Add(ctx, "alice")).Required()
	waitFor(t, func() bool { return slices.Equal(fx.cloudUsers(t), []string{"alice"}) })

	gt.NoError(t, fx.sync.SignOut(ctx)).Required()
	gt.Bool(t, fx.sync.Loaded()).False()
	gt.Value(t, fx.sync.Current() == nil).Equal(true)

	gt.NoError(t, fx.tracker.Add(ctx, "bob")).Required()
	time.Sleep(50 * time.Millisecond)
	gt.Value(t, fx.cloudUsers(t)).Equal([]string{"alice"})
}

func TestSyncSignInFailure(t *testing.T) {
	tracker := newTracker(t, &mockFetcher{}, nil, nil)
	id := &mockIdentity{
		signInFn: func(ctx context.Context, credential string) (*model.Account, error) {
			return nil, identity.ErrInvalidCredential
		},
		signOutFn: func(ctx context.Context) error {
			return errors.New("provider unavailable")
		},
	}
	uc := usecase.NewSyncUseCase(tracker, nil, id)

	_, err := uc.SignIn(context.Background(), "bad")
	gt.Error(t, err).Is(usecase.ErrAuthFailed)
	gt.Error(t, uc.SignOut(context.Background())).Is(usecase.ErrAuthFailed)
}
