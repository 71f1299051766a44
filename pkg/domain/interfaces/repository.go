package interfaces

import (
	"context"
	"time"
)

// KeyValueStore is the device-local persistent store. Values survive
// restarts but are not shared across machines.
type KeyValueStore interface {
	// Get returns the value for key. ok is false when the key is missing or
	// its expiry is at or before now.
	Get(ctx context.Context, key string, now time.Time) (value string, ok bool, err error)

	// Put stores value under key. A zero expiresAt never expires.
	Put(ctx context.Context, key, value string, expiresAt time.Time) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	Close() error
}

// CloudStore holds the tracked username list per signed-in account
type CloudStore interface {
	// LoadUserList returns the stored list, or an empty list when the account has no document
	LoadUserList(ctx context.Context, accountID string) ([]string, error)

	// SaveUserList overwrites the stored list and stamps updatedAt
	SaveUserList(ctx context.Context, accountID string, usernames []string) error

	Close() error
}
