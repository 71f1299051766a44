package usecase

import "github.com/secmon-lab/leetwatch/pkg/domain/model"

// EventKind names what changed in the tracker
type EventKind string

const (
	EventUsersChanged     EventKind = "users_changed"
	EventStatsChanged     EventKind = "stats_changed"
	EventRefreshTriggered EventKind = "refresh_triggered"
	EventFilterChanged    EventKind = "filter_changed"
)

// Event carries the tracker state right after a change
type Event struct {
	Kind     EventKind      `json:"kind"`
	Snapshot model.Snapshot `json:"snapshot"`
}
