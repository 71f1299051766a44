package types

// UserState is the fetch state of a tracked user
type UserState string

const (
	// UserStateIdle is entered when a user is first added, before the first fetch starts
	UserStateIdle    UserState = "idle"
	UserStateLoading UserState = "loading"
	UserStateLoaded  UserState = "loaded"
	UserStateError   UserState = "error"
)

func (s UserState) String() string {
	return string(s)
}
