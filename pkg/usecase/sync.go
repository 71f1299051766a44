package usecase

import (
	"context"
	"sync"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/leetwatch/pkg/domain/interfaces"
	"github.com/secmon-lab/leetwatch/pkg/domain/model"
	"github.com/secmon-lab/leetwatch/pkg/utils/async"
	"github.com/secmon-lab/leetwatch/pkg/utils/errutil"
	"github.com/secmon-lab/leetwatch/pkg/utils/logging"
)

// SyncUseCase binds the tracked list to the signed-in account's cloud copy.
// On sign-in the two lists are merged; afterwards every change of the
// tracked set is written back. cloud may be nil, in which case only
// sign-in state is managed.
type SyncUseCase struct {
	tracker  *TrackerUseCase
	cloud    interfaces.CloudStore
	identity interfaces.Identity

	mu      sync.Mutex
	account *model.Account
	loaded  bool
	unsubs  []func()

	saveMu sync.Mutex
}

func NewSyncUseCase(tracker *TrackerUseCase, cloud interfaces.CloudStore, identity interfaces.Identity) *SyncUseCase {
	return &SyncUseCase{
		tracker:  tracker,
		cloud:    cloud,
		identity: identity,
	}
}

// Start subscribes to identity and tracker changes
func (uc *SyncUseCase) Start(ctx context.Context) {
	ctx = logging.With(ctx, logging.From(ctx).With("component", "cloud_sync"))

	unsubIdentity := uc.identity.Subscribe(func(account *model.Account) {
		uc.onAccountChanged(ctx, account)
	})
	unsubTracker := uc.tracker.Subscribe(func(ev Event) {
		if ev.Kind == EventUsersChanged {
			uc.onUsersChanged(ctx)
		}
	})

	uc.mu.Lock()
	uc.unsubs = append(uc.unsubs, unsubIdentity, unsubTracker)
	uc.mu.Unlock()
}

// Stop releases all subscriptions
func (uc *SyncUseCase) Stop() {
	uc.mu.Lock()
	unsubs := uc.unsubs
	uc.unsubs = nil
	uc.mu.Unlock()

	for _, unsub := range unsubs {
		unsub()
	}
}

func (uc *SyncUseCase) SignIn(ctx context.Context, credential string) (*model.Account, error) {
	account, err := uc.identity.SignIn(ctx, credential)
	if err != nil {
		return nil, goerr.Wrap(ErrAuthFailed, "sign-in rejected", goerr.V("cause", err.Error()))
	}
	return account, nil
}

func (uc *SyncUseCase) SignOut(ctx context.Context) error {
	if err := uc.identity.SignOut(ctx); err != nil {
		return goerr.Wrap(ErrAuthFailed, "sign-out failed", goerr.V("cause", err.Error()))
	}
	return nil
}

// Current returns the signed-in account, or nil
func (uc *SyncUseCase) Current() *model.Account {
	return uc.identity.Current()
}

// Loaded reports whether the cloud list has been merged for the current account
func (uc *SyncUseCase) Loaded() bool {
	uc.mu.Lock()
	defer uc.mu.Unlock()
	return uc.loaded
}

func (uc *SyncUseCase) onAccountChanged(ctx context.Context, account *model.Account) {
	uc.mu.Lock()
	if account == nil {
		uc.account = nil
		uc.loaded = false
		uc.mu.Unlock()
		return
	}
	if uc.account != nil && uc.account.ID == account.ID {
		uc.mu.Unlock()
		return
	}
	uc.account = account
	uc.loaded = false
	uc.mu.Unlock()

	if uc.cloud == nil {
		return
	}

	ctx = logging.With(ctx, logging.From(ctx).With(AccountIDKey, account.ID))
	async.Dispatch(ctx, "cloud_sync_merge", func(ctx context.Context) error {
		if err := uc.mergeFromCloud(ctx, account.ID); err != nil {
			return errutil.Handle(ctx, err, "cloud merge failed")
		}
		return nil
	})
}

func (uc *SyncUseCase) mergeFromCloud(ctx context.Context, accountID string) error {
	cloudUsers, err := uc.cloud.LoadUserList(ctx, accountID)
	if err != nil {
		return goerr.Wrap(ErrCloudSyncFailed, "failed to load cloud user list",
			goerr.V(AccountIDKey, accountID),
			goerr.V("cause", err.Error()))
	}

	local := uc.tracker.Snapshot().Usernames()
	merged := mergeUserLists(cloudUsers, local)

	if !uc.isCurrent(accountID) {
		return nil
	}

	uc.tracker.Merge(ctx, merged)

	if len(merged) > len(cloudUsers) || (len(cloudUsers) == 0 && len(local) > 0) {
		if err := uc.save(ctx, accountID, merged); err != nil {
			return err
		}
	}

	uc.mu.Lock()
	if uc.account != nil && uc.account.ID == accountID {
		uc.loaded = true
	}
	uc.mu.Unlock()

	logging.From(ctx).Info("merged cloud user list",
		"cloud", len(cloudUsers),
		"local", len(local),
		"merged", len(merged))
	return nil
}

func (uc *SyncUseCase) onUsersChanged(ctx context.Context) {
	uc.mu.Lock()
	if uc.account == nil || !uc.loaded || uc.cloud == nil {
		uc.mu.Unlock()
		return
	}
	accountID := uc.account.ID
	uc.mu.Unlock()

	async.Dispatch(ctx, "cloud_sync_save", func(ctx context.Context) error {
		// save the latest list, which may be newer than the event that triggered this
		names := uc.tracker.Snapshot().Usernames()
		if err := uc.save(ctx, accountID, names); err != nil {
			return errutil.Handle(ctx, err, "cloud save failed")
		}
		return nil
	})
}

func (uc *SyncUseCase) save(ctx context.Context, accountID string, names []string) error {
	uc.saveMu.Lock()
	defer uc.saveMu.Unlock()

	if !uc.isCurrent(accountID) {
		return nil
	}
	if err := uc.cloud.SaveUserList(ctx, accountID, names); err != nil {
		return goerr.Wrap(ErrCloudSyncFailed, "failed to save cloud user list",
			goerr.V(AccountIDKey, accountID),
			goerr.V("count", len(names)),
			goerr.V("cause", err.Error()))
	}
	logging.From(ctx).Debug("saved cloud user list", "count", len(names))
	return nil
}

func (uc *SyncUseCase) isCurrent(accountID string) bool {
	uc.mu.Lock()
	defer uc.mu.Unlock()
	return uc.account != nil && uc.account.ID == accountID
}

// mergeUserLists returns cloud followed by local names not already present,
// without duplicates.
func mergeUserLists(cloud, local []string) []string {
	seen := make(map[string]struct{}, len(cloud)+len(local))
	merged := make([]string, 0, len(cloud)+len(local))
	for _, list := range [][]string{cloud, local} {
		for _, name := range list {
			if _, ok := seen[name]; ok {
				continue
			}
			seen[name] = struct{}{}
			merged = append(merged, name)
		}
	}
	return merged
}
