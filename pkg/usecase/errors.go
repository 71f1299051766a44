package usecase

import "github.com/m-mizutani/goerr/v2"

// Sentinel errors for use case layer
var (
	// Platform errors
	ErrFetchFailed    = goerr.New("failed to fetch user data")
	ErrLookupDegraded = goerr.New("difficulty lookup degraded")
	ErrUserNotFound   = goerr.New("user not found on platform")

	// Tracked set errors
	ErrInvalidUsername   = goerr.New("invalid username")
	ErrAlreadyTracked    = goerr.New("user is already tracked")
	ErrNotTracked        = goerr.New("user is not tracked")
	ErrReloadInProgress  = goerr.New("reload already in progress")
	ErrInvalidFilterMode = goerr.New("invalid filter mode")

	// Account errors
	ErrAuthFailed      = goerr.New("authentication failed")
	ErrCloudSyncFailed = goerr.New("cloud sync failed")
)

// Context keys for error values
const (
	UsernameKey  = "username"
	AccountIDKey = "account_id"
)
