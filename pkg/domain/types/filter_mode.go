package types

import "github.com/m-mizutani/goerr/v2"

// FilterMode selects the window used for "recent" submissions
type FilterMode string

const (
	FilterMode24Hours FilterMode = "24hours"
	FilterModeToday   FilterMode = "today"
)

// DefaultFilterMode is used when nothing has been persisted yet
const DefaultFilterMode = FilterMode24Hours

// IsValid checks if the filter mode is valid
func (m FilterMode) IsValid() bool {
	switch m {
	case FilterMode24Hours, FilterModeToday:
		return true
	default:
		return false
	}
}

// Toggle returns the other filter mode
func (m FilterMode) Toggle() FilterMode {
	if m == FilterModeToday {
		return FilterMode24Hours
	}
	return FilterModeToday
}

// Label returns a short human readable name
func (m FilterMode) Label() string {
	if m == FilterModeToday {
		return "Today"
	}
	return "Last 24h"
}

func (m FilterMode) String() string {
	return string(m)
}

// ParseFilterMode parses a string into a FilterMode
func ParseFilterMode(s string) (FilterMode, error) {
	mode := FilterMode(s)
	if !mode.IsValid() {
		return "", goerr.New("invalid filter mode", goerr.V("mode", s))
	}
	return mode, nil
}
