package http

import (
	"net/http"

	"github.com/secmon-lab/leetwatch/pkg/domain/model"
)

type signInRequest struct {
	Credential string `json:"credential"`
}

type meResponse struct {
	Account *model.Account `json:"account"`
	Synced  bool           `json:"synced"`
}

func (s *Server) signInHandler(w http.ResponseWriter, r *http.Request) {
	var req signInRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	account, err := s.uc.Sync.SignIn(r.Context(), req.Credential)
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, meResponse{Account: account, Synced: s.uc.Sync.Loaded()})
}

func (s *Server) signOutHandler(w http.ResponseWriter, r *http.Request) {
	if err := s.uc.Sync.SignOut(r.Context()); err != nil {
		handleError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) meHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, http.StatusOK, meResponse{
		Account: s.uc.Sync.Current(),
		Synced:  s.uc.Sync.Loaded(),
	})
}
