package cli

import (
	"fmt"
	"io"
	"slices"
	"time"

	"github.com/fatih/color"
	"github.com/secmon-lab/leetwatch/pkg/domain/model"
	"github.com/secmon-lab/leetwatch/pkg/domain/types"
)

var (
	bold        = color.New(color.Bold).SprintFunc()
	faint       = color.New(color.Faint).SprintFunc()
	green       = color.New(color.FgGreen).SprintFunc()
	yellow      = color.New(color.FgYellow).SprintFunc()
	red         = color.New(color.FgRed).SprintFunc()
	solvedMark  = color.New(color.FgGreen).Sprint("✓")
	missingMark = color.New(color.FgRed).Sprint("✗")
)

func colorDifficulty(d types.Difficulty) string {
	switch d {
	case types.DifficultyEasy:
		return green(string(d))
	case types.DifficultyMedium:
		return yellow(string(d))
	case types.DifficultyHard:
		return red(string(d))
	default:
		return faint(string(d))
	}
}

func printStats(w io.Writer, username string, stats *model.UserStats, mode types.FilterMode, loc *time.Location) {
	fmt.Fprintf(w, "%s  total %d (%s %d / %s %d / %s %d)  longest streak %d\n",
		bold(username),
		stats.TotalSolved,
		colorDifficulty(types.DifficultyEasy), stats.EasySolved,
		colorDifficulty(types.DifficultyMedium), stats.MediumSolved,
		colorDifficulty(types.DifficultyHard), stats.HardSolved,
		stats.LongestStreak,
	)
	fmt.Fprintf(w, "  recent (%s): %d\n", mode.Label(), stats.RecentSolved)
	for _, p := range stats.RecentProblems {
		fmt.Fprintf(w, "  - %s [%s] %s %s\n",
			p.Title,
			colorDifficulty(p.Difficulty),
			faint(time.Unix(p.Timestamp, 0).In(loc).Format(time.DateTime)),
			p.URL(),
		)
	}
}

func printDaily(w io.Writer, challenge *model.DailyChallenge, solved map[string]bool) {
	q := challenge.Question
	fmt.Fprintf(w, "%s  %s. %s [%s]\n", faint(challenge.Date), q.FrontendQuestionID, bold(q.Title), colorDifficulty(q.Difficulty))
	fmt.Fprintf(w, "  %s\n", challenge.URL())

	if len(solved) == 0 {
		return
	}

	names := make([]string, 0, len(solved))
	count := 0
	for name, ok := range solved {
		names = append(names, name)
		if ok {
			count++
		}
	}
	slices.Sort(names)

	fmt.Fprintf(w, "  solved by %d/%d\n", count, len(names))
	for _, name := range names {
		mark := missingMark
		if solved[name] {
			mark = solvedMark
		}
		fmt.Fprintf(w, "  %s %s\n", mark, name)
	}
}
