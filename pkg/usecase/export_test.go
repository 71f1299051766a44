package usecase

import (
	"context"
	"time"
)

// MergeUserLists is exported for testing
var MergeUserLists = mergeUserLists

// SetTrackerSleep replaces the stagger sleep for testing
func SetTrackerSleep(uc *TrackerUseCase, sleep func(ctx context.Context, d time.Duration) error) {
	uc.sleep = sleep
}

// SetDailySleep replaces the solved check pause for testing
func SetDailySleep(uc *DailyChallengeUseCase, sleep func(ctx context.Context, d time.Duration) error) {
	uc.sleep = sleep
}
