package model

import (
	"encoding/json"
	"slices"
	"strconv"
	"strings"
	"time"
)

type calendarDay struct {
	year  int
	month time.Month
	day   int
}

func (d calendarDay) utcMidnight() time.Time {
	return time.Date(d.year, d.month, d.day, 0, 0, 0, 0, time.UTC)
}

// LongestStreak returns the longest run of consecutive calendar days with at
// least one submission. calendar is the platform's JSON object mapping a unix
// timestamp (as a string) to a submission count. Days are taken in loc
// (time.Local when nil). Empty or malformed input yields 0.
func LongestStreak(calendar string, loc *time.Location) int {
	if strings.TrimSpace(calendar) == "" {
		return 0
	}
	if loc == nil {
		loc = time.Local
	}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal([]byte(calendar), &raw); err != nil {
		return 0
	}

	seen := make(map[calendarDay]struct{}, len(raw))
	for key, value := range raw {
		ts, err := strconv.ParseInt(strings.TrimSpace(key), 10, 64)
		if err != nil {
			continue
		}
		if calendarCount(value) <= 0 {
			continue
		}
		t := time.Unix(ts, 0).In(loc)
		seen[calendarDay{year: t.Year(), month: t.Month(), day: t.Day()}] = struct{}{}
	}

	if len(seen) == 0 {
		return 0
	}

	days := make([]time.Time, 0, len(seen))
	for d := range seen {
		days = append(days, d.utcMidnight())
	}
	slices.SortFunc(days, func(a, b time.Time) int { return a.Compare(b) })

	longest, current := 1, 1
	for i := 1; i < len(days); i++ {
		if days[i].Sub(days[i-1]) == 24*time.Hour {
			current++
			longest = max(longest, current)
		} else {
			current = 1
		}
	}

	return longest
}

// calendarCount accepts both numeric and string-encoded counts
func calendarCount(value json.RawMessage) int64 {
	var v any
	if err := json.Unmarshal(value, &v); err != nil {
		return 0
	}
	switch n := v.(type) {
	case float64:
		return int64(n)
	case string:
		i, err := strconv.ParseInt(strings.TrimSpace(n), 10, 64)
		if err != nil {
			return 0
		}
		return i
	default:
		return 0
	}
}
