package http

import (
	"fmt"
	"net/http"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/leetwatch/pkg/utils/errutil"
)

type dailyChallengeResponse struct {
	Title       string          `json:"title"`
	TitleSlug   string          `json:"titleSlug"`
	Difficulty  string          `json:"difficulty"`
	Link        string          `json:"link"`
	Date        string          `json:"date"`
	Solved      map[string]bool `json:"solved"`
	SolvedCount int             `json:"solvedCount"`
	CheckedAt   time.Time       `json:"checkedAt"`
}

func (s *Server) dailyChallengeHandler(w http.ResponseWriter, r *http.Request) {
	status := s.uc.Daily.Status()
	if status == nil {
		var err error
		if status, err = s.uc.Daily.Refresh(r.Context()); err != nil {
			handleError(w, r, err)
			return
		}
	}

	c := status.Challenge
	writeJSON(w, r, http.StatusOK, dailyChallengeResponse{
		Title:       c.Question.Title,
		TitleSlug:   c.Question.TitleSlug,
		Difficulty:  string(c.Question.Difficulty),
		Link:        c.URL(),
		Date:        c.Date,
		Solved:      status.Solved,
		SolvedCount: status.SolvedCount(),
		CheckedAt:   status.CheckedAt,
	})
}

func (s *Server) exportHandler(w http.ResponseWriter, r *http.Request) {
	filename := fmt.Sprintf("leetwatch-%s.xlsx", time.Now().UTC().Format("20060102"))
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))

	if err := s.uc.Export.WriteXLSX(w, s.uc.Tracker.Snapshot(), s.uc.Daily.Status()); err != nil {
		errutil.HandleHTTP(r.Context(), w, goerr.Wrap(err, "failed to write workbook"), http.StatusInternalServerError)
	}
}
