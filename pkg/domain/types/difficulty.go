package types

import "strings"

// Difficulty is a problem difficulty as reported by the platform
type Difficulty string

const (
	DifficultyEasy    Difficulty = "Easy"
	DifficultyMedium  Difficulty = "Medium"
	DifficultyHard    Difficulty = "Hard"
	DifficultyUnknown Difficulty = "Unknown"
)

// NormalizeDifficulty maps platform strings onto known difficulties, case-insensitively.
// Anything else, including an empty string, becomes DifficultyUnknown.
func NormalizeDifficulty(s string) Difficulty {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "easy":
		return DifficultyEasy
	case "medium":
		return DifficultyMedium
	case "hard":
		return DifficultyHard
	default:
		return DifficultyUnknown
	}
}

// IsKnown reports whether the difficulty is one of Easy, Medium or Hard
func (d Difficulty) IsKnown() bool {
	return d == DifficultyEasy || d == DifficultyMedium || d == DifficultyHard
}

func (d Difficulty) String() string {
	return string(d)
}
