package leetcode

import "github.com/m-mizutani/goerr/v2"

var (
	// ErrUnexpectedStatus is returned when the endpoint answers with a non-2xx status
	ErrUnexpectedStatus = goerr.New("unexpected HTTP status from platform")

	// ErrNoDailyChallenge is returned when the daily challenge is missing from the response
	ErrNoDailyChallenge = goerr.New("no daily challenge found")
)
