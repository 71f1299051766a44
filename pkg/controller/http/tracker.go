package http

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/leetwatch/pkg/domain/model"
	"github.com/secmon-lab/leetwatch/pkg/domain/types"
	"github.com/secmon-lab/leetwatch/pkg/usecase"
	"github.com/secmon-lab/leetwatch/pkg/utils/async"
	"github.com/secmon-lab/leetwatch/pkg/utils/errutil"
)

type snapshotResponse struct {
	Users          []model.UserEntry `json:"users"`
	FilterMode     types.FilterMode  `json:"filterMode"`
	FilterLabel    string            `json:"filterLabel"`
	Loading        bool              `json:"loading"`
	RefreshTrigger uint64            `json:"refreshTrigger"`
}

// toSnapshotResponse orders users for display
func toSnapshotResponse(snap model.Snapshot) snapshotResponse {
	return snapshotResponse{
		Users:          snap.Ranked(),
		FilterMode:     snap.FilterMode,
		FilterLabel:    snap.FilterMode.Label(),
		Loading:        snap.Loading,
		RefreshTrigger: snap.RefreshTrigger,
	}
}

func (s *Server) snapshotHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, http.StatusOK, toSnapshotResponse(s.uc.Tracker.Snapshot()))
}

func (s *Server) recentSolvesHandler(w http.ResponseWriter, r *http.Request) {
	limit := model.DefaultLatestSolvesLimit
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			errutil.HandleHTTP(r.Context(), w, goerr.New("limit must be a positive integer", goerr.V("limit", v)), http.StatusBadRequest)
			return
		}
		limit = n
	}

	writeJSON(w, r, http.StatusOK, map[string]any{
		"solves": s.uc.Tracker.Snapshot().LatestSolves(limit),
	})
}

type addUserRequest struct {
	Username string `json:"username"`
}

func (s *Server) addUserHandler(w http.ResponseWriter, r *http.Request) {
	var req addUserRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	if err := s.uc.Tracker.Add(r.Context(), req.Username); err != nil {
		handleError(w, r, err)
		return
	}

	entry, _ := s.uc.Tracker.Snapshot().Lookup(strings.TrimSpace(req.Username))
	writeJSON(w, r, http.StatusCreated, entry)
}

func (s *Server) removeUserHandler(w http.ResponseWriter, r *http.Request) {
	if err := s.uc.Tracker.Remove(r.Context(), chi.URLParam(r, "username")); err != nil {
		handleError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) retryUserHandler(w http.ResponseWriter, r *http.Request) {
	username := strings.TrimSpace(chi.URLParam(r, "username"))
	if _, ok := s.uc.Tracker.Snapshot().Lookup(username); !ok {
		handleError(w, r, goerr.Wrap(usecase.ErrNotTracked, "cannot retry user", goerr.V(usecase.UsernameKey, username)))
		return
	}

	async.Dispatch(r.Context(), "retry_user", func(ctx context.Context) error {
		return s.uc.Tracker.Retry(ctx, username)
	})
	writeAccepted(w, r)
}

func (s *Server) reloadHandler(w http.ResponseWriter, r *http.Request) {
	run, err := s.uc.Tracker.StartReload(r.Context())
	if err != nil {
		handleError(w, r, err)
		return
	}

	async.Dispatch(r.Context(), "reload_all", func(ctx context.Context) error {
		run(ctx)
		return nil
	})
	writeAccepted(w, r)
}

type filterModeRequest struct {
	Mode types.FilterMode `json:"mode"`
}

func (s *Server) setFilterModeHandler(w http.ResponseWriter, r *http.Request) {
	var req filterModeRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if !req.Mode.IsValid() {
		handleError(w, r, goerr.Wrap(usecase.ErrInvalidFilterMode, "cannot set filter mode", goerr.V("mode", string(req.Mode))))
		return
	}

	async.Dispatch(r.Context(), "set_filter_mode", func(ctx context.Context) error {
		return s.uc.Tracker.SetFilterMode(ctx, req.Mode)
	})
	writeAccepted(w, r)
}

func (s *Server) toggleFilterModeHandler(w http.ResponseWriter, r *http.Request) {
	async.Dispatch(r.Context(), "toggle_filter_mode", func(ctx context.Context) error {
		return s.uc.Tracker.ToggleFilterMode(ctx)
	})
	writeAccepted(w, r)
}
