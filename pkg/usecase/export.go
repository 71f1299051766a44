package usecase

import (
	"io"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/leetwatch/pkg/domain/model"
	"github.com/xuri/excelize/v2"
)

const (
	usersSheet  = "Users"
	solvesSheet = "Recent Solves"
	dailySheet  = "Daily Challenge"
)

var (
	usersHeader  = []interface{}{"Username", "State", "Easy", "Medium", "Hard", "Total", "Recent", "Longest Streak", "Fetched At", "Error"}
	solvesHeader = []interface{}{"Username", "Title", "Difficulty", "Solved At", "URL"}
	dailyHeader  = []interface{}{"Username", "Solved"}
)

// ExportUseCase writes tracker state as an XLSX workbook
type ExportUseCase struct {
	loc *time.Location
}

func NewExportUseCase(loc *time.Location) *ExportUseCase {
	if loc == nil {
		loc = time.Local
	}
	return &ExportUseCase{loc: loc}
}

// WriteXLSX writes users ranked by recent activity, every recent solve and,
// when daily is non-nil, the daily challenge results.
func (uc *ExportUseCase) WriteXLSX(w io.Writer, snap model.Snapshot, daily *DailyStatus) error {
	f := excelize.NewFile()
	defer f.Close()

	f.SetSheetName("Sheet1", usersSheet)

	headerStyle, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return goerr.Wrap(err, "failed to create header style")
	}

	usersRows := make([][]interface{}, 0, len(snap.Users))
	for _, u := range snap.Ranked() {
		row := []interface{}{u.Username, string(u.State)}
		if u.Stats != nil {
			row = append(row,
				u.Stats.EasySolved,
				u.Stats.MediumSolved,
				u.Stats.HardSolved,
				u.Stats.TotalSolved,
				u.Stats.RecentSolved,
				u.Stats.LongestStreak,
				u.Stats.FetchedAt.In(uc.loc).Format(time.DateTime),
			)
		} else {
			row = append(row, "", "", "", "", "", "", "")
		}
		row = append(row, u.Error)
		usersRows = append(usersRows, row)
	}
	if err := writeSheet(f, usersSheet, usersHeader, usersRows, headerStyle); err != nil {
		return err
	}

	solves := snap.LatestSolves(0)
	solvesRows := make([][]interface{}, 0, len(solves))
	for _, s := range solves {
		solvesRows = append(solvesRows, []interface{}{
			s.Username,
			s.Title,
			string(s.Difficulty),
			time.Unix(s.Timestamp, 0).In(uc.loc).Format(time.DateTime),
			s.URL(),
		})
	}
	if _, err := f.NewSheet(solvesSheet); err != nil {
		return goerr.Wrap(err, "failed to create sheet", goerr.V("sheet", solvesSheet))
	}
	if err := writeSheet(f, solvesSheet, solvesHeader, solvesRows, headerStyle); err != nil {
		return err
	}

	if daily != nil && daily.Challenge != nil {
		if _, err := f.NewSheet(dailySheet); err != nil {
			return goerr.Wrap(err, "failed to create sheet", goerr.V("sheet", dailySheet))
		}
		q := daily.Challenge.Question
		if err := f.SetSheetRow(dailySheet, "A1", &[]interface{}{daily.Challenge.Date, q.Title, string(q.Difficulty), daily.Challenge.URL()}); err != nil {
			return goerr.Wrap(err, "failed to write daily challenge")
		}

		var rows [][]interface{}
		for _, name := range snap.Usernames() {
			rows = append(rows, []interface{}{name, yesNo(daily.Solved[name])})
		}
		if err := writeRows(f, dailySheet, 2, dailyHeader, rows, headerStyle); err != nil {
			return err
		}
	}

	if err := f.Write(w); err != nil {
		return goerr.Wrap(err, "failed to write workbook")
	}
	return nil
}

func writeSheet(f *excelize.File, sheet string, header []interface{}, rows [][]interface{}, headerStyle int) error {
	return writeRows(f, sheet, 1, header, rows, headerStyle)
}

// writeRows writes header at startRow followed by rows
func writeRows(f *excelize.File, sheet string, startRow int, header []interface{}, rows [][]interface{}, headerStyle int) error {
	headerCell, err := excelize.CoordinatesToCellName(1, startRow)
	if err != nil {
		return goerr.Wrap(err, "invalid cell", goerr.V("row", startRow))
	}
	if err := f.SetSheetRow(sheet, headerCell, &header); err != nil {
		return goerr.Wrap(err, "failed to write header", goerr.V("sheet", sheet))
	}

	lastHeaderCell, err := excelize.CoordinatesToCellName(len(header), startRow)
	if err != nil {
		return goerr.Wrap(err, "invalid cell", goerr.V("row", startRow))
	}
	if err := f.SetCellStyle(sheet, headerCell, lastHeaderCell, headerStyle); err != nil {
		return goerr.Wrap(err, "failed to style header", goerr.V("sheet", sheet))
	}

	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, startRow+1+i)
		if err != nil {
			return goerr.Wrap(err, "invalid cell", goerr.V("row", startRow+1+i))
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return goerr.Wrap(err, "failed to write row", goerr.V("sheet", sheet), goerr.V("row", i))
		}
	}
	return nil
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}
