package usecase

import (
	"context"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/leetwatch/pkg/domain/model"
	"github.com/secmon-lab/leetwatch/pkg/domain/types"
	"github.com/secmon-lab/leetwatch/pkg/repository"
	"github.com/secmon-lab/leetwatch/pkg/utils/async"
	"github.com/secmon-lab/leetwatch/pkg/utils/errutil"
	"github.com/secmon-lab/leetwatch/pkg/utils/logging"
	"golang.org/x/sync/errgroup"
)

const DefaultStaggerDelay = 250 * time.Millisecond

// StatsFetcher derives stats for one user
type StatsFetcher interface {
	Fetch(ctx context.Context, username string, mode types.FilterMode) (*model.UserStats, error)
}

// UserChecker reports whether a username exists on the platform
type UserChecker interface {
	UserExists(ctx context.Context, username string) (bool, error)
}

// trackedUser is the mutable per-user state. A new value is created every
// time a user is admitted, so pointer identity distinguishes a re-added user
// from the one that was removed.
type trackedUser struct {
	stats *model.UserStats
	err   string
	holds int
	gen   uint64
}

func (u *trackedUser) state() types.UserState {
	switch {
	case u.holds > 0:
		return types.UserStateLoading
	case u.err != "":
		return types.UserStateError
	case u.stats != nil:
		return types.UserStateLoaded
	default:
		return types.UserStateIdle
	}
}

// fetchJob is one issued request for a user
type fetchJob struct {
	username string
	user     *trackedUser
	gen      uint64
	mode     types.FilterMode
}

// TrackerUseCase owns the tracked user set and coordinates fetching
type TrackerUseCase struct {
	fetcher StatsFetcher
	checker UserChecker
	store   *repository.LocalStore
	stagger time.Duration
	sleep   func(ctx context.Context, d time.Duration) error

	// persistMu orders tracked list saves
	persistMu sync.Mutex

	mu          sync.Mutex
	order       []string
	users       map[string]*trackedUser
	filterMode  types.FilterMode
	batches     int
	trigger     uint64
	genSeq      uint64
	subscribers map[int]func(Event)
	nextSubID   int
}

type TrackerOption func(*TrackerUseCase)

// WithStaggerDelay sets the pause between sequential fetches
func WithStaggerDelay(d time.Duration) TrackerOption {
	return func(uc *TrackerUseCase) {
		if d >= 0 {
			uc.stagger = d
		}
	}
}

func NewTrackerUseCase(fetcher StatsFetcher, checker UserChecker, store *repository.LocalStore, opts ...TrackerOption) *TrackerUseCase {
	uc := &TrackerUseCase{
		fetcher:     fetcher,
		checker:     checker,
		store:       store,
		stagger:     DefaultStaggerDelay,
		sleep:       sleepContext,
		users:       make(map[string]*trackedUser),
		filterMode:  types.DefaultFilterMode,
		subscribers: make(map[int]func(Event)),
	}
	for _, opt := range opts {
		opt(uc)
	}
	return uc
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// Load restores the tracked list and filter mode from the local store
func (uc *TrackerUseCase) Load(ctx context.Context) error {
	users, err := uc.store.LoadTrackedUsers(ctx)
	if err != nil {
		return goerr.Wrap(err, "failed to load tracked users")
	}
	mode, err := uc.store.LoadFilterMode(ctx)
	if err != nil {
		return goerr.Wrap(err, "failed to load filter mode")
	}

	uc.mu.Lock()
	uc.filterMode = mode
	for _, name := range users {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		if _, ok := uc.users[name]; ok {
			continue
		}
		uc.users[name] = &trackedUser{}
		uc.order = append(uc.order, name)
	}
	count := len(uc.order)
	uc.mu.Unlock()

	logging.From(ctx).Info("loaded tracked users", "count", count, "filter_mode", string(mode))
	uc.publish(EventUsersChanged)
	return nil
}

// Add verifies username exists on the platform, starts tracking it and
// fetches its stats. A failed fetch is recorded on the user, not returned.
func (uc *TrackerUseCase) Add(ctx context.Context, username string) error {
	name := strings.TrimSpace(username)
	if name == "" {
		return goerr.Wrap(ErrInvalidUsername, "username is empty")
	}
	if uc.isTracked(name) {
		return goerr.Wrap(ErrAlreadyTracked, "cannot add user", goerr.V(UsernameKey, name))
	}

	exists, err := uc.checker.UserExists(ctx, name)
	if err != nil {
		return goerr.Wrap(ErrFetchFailed, "failed to check user existence",
			goerr.V(UsernameKey, name),
			goerr.V("cause", err.Error()))
	}
	if !exists {
		logging.From(ctx).Info("rejected unknown user", UsernameKey, name)
		return goerr.Wrap(ErrUserNotFound, "cannot add user", goerr.V(UsernameKey, name))
	}

	uc.mu.Lock()
	if _, ok := uc.users[name]; ok {
		uc.mu.Unlock()
		return goerr.Wrap(ErrAlreadyTracked, "cannot add user", goerr.V(UsernameKey, name))
	}
	user := &trackedUser{}
	uc.users[name] = user
	uc.order = append(uc.order, name)
	job := uc.issueLocked(name, user)
	uc.mu.Unlock()

	uc.persist(ctx)
	uc.publish(EventUsersChanged)

	uc.settle(ctx, job, uc.run(ctx, job), true)
	return nil
}

// Remove stops tracking username. Responses still in flight for it are dropped.
func (uc *TrackerUseCase) Remove(ctx context.Context, username string) error {
	name := strings.TrimSpace(username)

	uc.mu.Lock()
	if _, ok := uc.users[name]; !ok {
		uc.mu.Unlock()
		return goerr.Wrap(ErrNotTracked, "cannot remove user", goerr.V(UsernameKey, name))
	}
	delete(uc.users, name)
	for i, n := range uc.order {
		if n == name {
			uc.order = append(uc.order[:i:i], uc.order[i+1:]...)
			break
		}
	}
	uc.mu.Unlock()

	uc.persist(ctx)
	uc.publish(EventUsersChanged)
	return nil
}

// InitialLoad marks every user loading and fetches them one at a time,
// pausing for the stagger delay between fetches.
func (uc *TrackerUseCase) InitialLoad(ctx context.Context) error {
	uc.mu.Lock()
	uc.batches++
	jobs := uc.issueAllLocked()
	uc.mu.Unlock()

	defer uc.endBatch()
	uc.publish(EventStatsChanged)

	return uc.runSequential(ctx, jobs)
}

// Refresh re-fetches every user in parallel. It is skipped when another
// batch cycle is still running.
func (uc *TrackerUseCase) Refresh(ctx context.Context) error {
	uc.mu.Lock()
	if uc.batches > 0 {
		uc.mu.Unlock()
		logging.From(ctx).Debug("skip refresh, batch in progress")
		return nil
	}
	if len(uc.order) == 0 {
		uc.mu.Unlock()
		return nil
	}
	uc.batches++
	jobs := uc.issueAllLocked()
	uc.mu.Unlock()

	defer uc.endBatch()
	uc.publish(EventStatsChanged)

	uc.runParallel(ctx, jobs)
	return nil
}

// ReloadAll is a manual refresh. It also advances RefreshTrigger so that
// dependents re-run.
func (uc *TrackerUseCase) ReloadAll(ctx context.Context) error {
	run, err := uc.StartReload(ctx)
	if err != nil {
		return err
	}
	run(ctx)
	return nil
}

// StartReload claims the batch slot for a manual reload and returns the
// function that performs it. It fails with ErrReloadInProgress when another
// batch cycle is running. The returned function must be called exactly once.
func (uc *TrackerUseCase) StartReload(ctx context.Context) (func(ctx context.Context), error) {
	uc.mu.Lock()
	if uc.batches > 0 {
		uc.mu.Unlock()
		return nil, goerr.Wrap(ErrReloadInProgress, "cannot start reload")
	}
	uc.batches++
	uc.trigger++
	jobs := uc.issueAllLocked()
	uc.mu.Unlock()

	uc.publish(EventRefreshTriggered)

	return func(ctx context.Context) {
		defer uc.endBatch()

		ctx = logging.With(ctx, logging.From(ctx).With("cycle_id", newCycleID()))
		logging.From(ctx).Info("manual reload started", "users", len(jobs))
		uc.runParallel(ctx, jobs)
		logging.From(ctx).Info("manual reload finished")
	}, nil
}

// SetFilterMode persists mode and reloads every user under it. Like
// ReloadAll it advances RefreshTrigger.
func (uc *TrackerUseCase) SetFilterMode(ctx context.Context, mode types.FilterMode) error {
	if !mode.IsValid() {
		return goerr.Wrap(ErrInvalidFilterMode, "cannot set filter mode", goerr.V("mode", string(mode)))
	}
	return uc.changeFilterMode(ctx, func(types.FilterMode) types.FilterMode { return mode })
}

// ToggleFilterMode switches between the two modes
func (uc *TrackerUseCase) ToggleFilterMode(ctx context.Context) error {
	return uc.changeFilterMode(ctx, types.FilterMode.Toggle)
}

func (uc *TrackerUseCase) changeFilterMode(ctx context.Context, next func(types.FilterMode) types.FilterMode) error {
	uc.mu.Lock()
	prev := uc.filterMode
	mode := next(prev)
	if mode == prev {
		uc.mu.Unlock()
		return nil
	}
	uc.filterMode = mode
	uc.batches++
	uc.trigger++
	jobs := uc.issueAllLocked()
	uc.mu.Unlock()

	defer uc.endBatch()

	if err := uc.store.SaveFilterMode(ctx, mode); err != nil {
		_ = errutil.Handle(ctx, err, "failed to persist filter mode")
	}
	logging.From(ctx).Info("filter mode changed", "from", string(prev), "to", string(mode))
	uc.publish(EventFilterChanged)
	uc.publish(EventRefreshTriggered)

	uc.runParallel(ctx, jobs)
	return nil
}

// Retry re-fetches a single user without touching anyone else
func (uc *TrackerUseCase) Retry(ctx context.Context, username string) error {
	name := strings.TrimSpace(username)

	uc.mu.Lock()
	user, ok := uc.users[name]
	if !ok {
		uc.mu.Unlock()
		return goerr.Wrap(ErrNotTracked, "cannot retry user", goerr.V(UsernameKey, name))
	}
	user.err = ""
	job := uc.issueLocked(name, user)
	uc.mu.Unlock()

	uc.publish(EventStatsChanged)
	uc.settle(ctx, job, uc.run(ctx, job), true)
	return nil
}

// Merge admits every unknown name in usernames without an existence check
// and reorders the set to follow usernames, keeping any other tracked names
// after them. Newcomers are loaded one at a time in the background. It
// returns the names that were added.
func (uc *TrackerUseCase) Merge(ctx context.Context, usernames []string) []string {
	uc.mu.Lock()
	var added []string
	var jobs []fetchJob
	order := make([]string, 0, len(usernames)+len(uc.order))
	listed := make(map[string]struct{}, len(usernames))
	for _, name := range usernames {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		if _, ok := listed[name]; ok {
			continue
		}
		listed[name] = struct{}{}
		order = append(order, name)

		if _, ok := uc.users[name]; ok {
			continue
		}
		user := &trackedUser{}
		uc.users[name] = user
		added = append(added, name)
		jobs = append(jobs, uc.issueLocked(name, user))
	}
	for _, name := range uc.order {
		if _, ok := listed[name]; !ok {
			order = append(order, name)
		}
	}
	changed := len(added) > 0 || !slices.Equal(order, uc.order)
	uc.order = order
	uc.mu.Unlock()

	if !changed {
		return nil
	}

	logging.From(ctx).Info("merged users", "added", added)
	uc.persist(ctx)
	uc.publish(EventUsersChanged)

	if len(jobs) > 0 {
		async.Dispatch(ctx, "merge_load", func(ctx context.Context) error {
			return uc.runSequential(ctx, jobs)
		})
	}
	return added
}

// Snapshot returns a copy of the current state
func (uc *TrackerUseCase) Snapshot() model.Snapshot {
	uc.mu.Lock()
	defer uc.mu.Unlock()
	return uc.snapshotLocked()
}

// FilterMode returns the active filter mode
func (uc *TrackerUseCase) FilterMode() types.FilterMode {
	uc.mu.Lock()
	defer uc.mu.Unlock()
	return uc.filterMode
}

// Subscribe registers handler for every state change. Handlers run
// synchronously on the goroutine that made the change and must not block.
func (uc *TrackerUseCase) Subscribe(handler func(Event)) func() {
	uc.mu.Lock()
	defer uc.mu.Unlock()

	id := uc.nextSubID
	uc.nextSubID++
	uc.subscribers[id] = handler

	return func() {
		uc.mu.Lock()
		defer uc.mu.Unlock()
		delete(uc.subscribers, id)
	}
}

func (uc *TrackerUseCase) isTracked(name string) bool {
	uc.mu.Lock()
	defer uc.mu.Unlock()
	_, ok := uc.users[name]
	return ok
}

// issueLocked takes a loading hold on user and stamps a new generation
func (uc *TrackerUseCase) issueLocked(name string, user *trackedUser) fetchJob {
	uc.genSeq++
	user.gen = uc.genSeq
	user.holds++
	return fetchJob{username: name, user: user, gen: user.gen, mode: uc.filterMode}
}

// issueAllLocked clears every error and issues a job per user in order
func (uc *TrackerUseCase) issueAllLocked() []fetchJob {
	jobs := make([]fetchJob, 0, len(uc.order))
	for _, name := range uc.order {
		user := uc.users[name]
		user.err = ""
		jobs = append(jobs, uc.issueLocked(name, user))
	}
	return jobs
}

type fetchResult struct {
	stats *model.UserStats
	err   error
}

func (uc *TrackerUseCase) run(ctx context.Context, job fetchJob) fetchResult {
	stats, err := uc.fetcher.Fetch(ctx, job.username, job.mode)
	if err != nil {
		logging.From(ctx).Warn("fetch failed", UsernameKey, job.username, "error", err.Error())
	}
	return fetchResult{stats: stats, err: err}
}

// settle applies res unless it is stale and, when release is set, drops the
// job's loading hold.
func (uc *TrackerUseCase) settle(ctx context.Context, job fetchJob, res fetchResult, release bool) {
	uc.mu.Lock()
	current, ok := uc.users[job.username]
	if !ok || current != job.user {
		uc.mu.Unlock()
		logging.From(ctx).Debug("discard result for removed user", UsernameKey, job.username)
		return
	}

	if job.gen == current.gen {
		if res.err != nil {
			current.err = res.err.Error()
		} else {
			current.stats = res.stats
			current.err = ""
		}
	} else {
		logging.From(ctx).Debug("discard stale result", UsernameKey, job.username, "gen", job.gen, "latest", current.gen)
	}
	if release && current.holds > 0 {
		current.holds--
	}
	uc.mu.Unlock()

	uc.publish(EventStatsChanged)
}

func (uc *TrackerUseCase) release(jobs []fetchJob) {
	uc.mu.Lock()
	for _, job := range jobs {
		if current, ok := uc.users[job.username]; ok && current == job.user && current.holds > 0 {
			current.holds--
		}
	}
	uc.mu.Unlock()
}

func (uc *TrackerUseCase) runSequential(ctx context.Context, jobs []fetchJob) error {
	for i, job := range jobs {
		uc.settle(ctx, job, uc.run(ctx, job), true)

		if i == len(jobs)-1 {
			break
		}
		if err := uc.sleep(ctx, uc.stagger); err != nil {
			uc.release(jobs[i+1:])
			uc.publish(EventStatsChanged)
			return goerr.Wrap(err, "sequential load interrupted")
		}
	}
	return nil
}

// runParallel fetches all jobs concurrently, waits for every one to settle
// and then drops all their loading holds together.
func (uc *TrackerUseCase) runParallel(ctx context.Context, jobs []fetchJob) {
	var eg errgroup.Group
	for _, job := range jobs {
		eg.Go(func() error {
			uc.settle(ctx, job, uc.run(ctx, job), false)
			return nil
		})
	}
	_ = eg.Wait()

	uc.release(jobs)
	uc.publish(EventStatsChanged)
}

func (uc *TrackerUseCase) endBatch() {
	uc.mu.Lock()
	uc.batches--
	uc.mu.Unlock()
	uc.publish(EventStatsChanged)
}

// persist saves the current tracked list. The copy and the save happen under
// persistMu so the last write always reflects the latest set.
func (uc *TrackerUseCase) persist(ctx context.Context) {
	uc.persistMu.Lock()
	defer uc.persistMu.Unlock()

	uc.mu.Lock()
	names := append([]string{}, uc.order...)
	uc.mu.Unlock()

	if err := uc.store.SaveTrackedUsers(ctx, names); err != nil {
		_ = errutil.Handle(ctx, err, "failed to persist tracked users")
	}
}

func (uc *TrackerUseCase) snapshotLocked() model.Snapshot {
	entries := make([]model.UserEntry, 0, len(uc.order))
	for _, name := range uc.order {
		user := uc.users[name]
		entries = append(entries, model.UserEntry{
			Username: name,
			State:    user.state(),
			Stats:    user.stats.Clone(),
			Error:    user.err,
		})
	}
	return model.Snapshot{
		Users:          entries,
		FilterMode:     uc.filterMode,
		Loading:        uc.batches > 0,
		RefreshTrigger: uc.trigger,
	}
}

func (uc *TrackerUseCase) publish(kind EventKind) {
	uc.mu.Lock()
	ev := Event{Kind: kind, Snapshot: uc.snapshotLocked()}
	handlers := make([]func(Event), 0, len(uc.subscribers))
	for id := 0; id < uc.nextSubID; id++ {
		if h, ok := uc.subscribers[id]; ok {
			handlers = append(handlers, h)
		}
	}
	uc.mu.Unlock()

	for _, h := range handlers {
		h(ev)
	}
}

func newCycleID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}
