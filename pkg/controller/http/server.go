package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/leetwatch/pkg/usecase"
	"github.com/secmon-lab/leetwatch/pkg/utils/errutil"
	"github.com/secmon-lab/leetwatch/pkg/utils/logging"
	"github.com/secmon-lab/leetwatch/pkg/utils/safe"
)

const defaultKeepAlive = 30 * time.Second

type Server struct {
	router    *chi.Mux
	uc        *usecase.UseCases
	keepAlive time.Duration
}

type Options func(*Server)

// WithKeepAlive sets the interval of comment frames on the event stream
func WithKeepAlive(d time.Duration) Options {
	return func(s *Server) {
		s.keepAlive = d
	}
}

func New(uc *usecase.UseCases, opts ...Options) *Server {
	r := chi.NewRouter()

	s := &Server{
		router:    r,
		uc:        uc,
		keepAlive: defaultKeepAlive,
	}
	for _, opt := range opts {
		opt(s)
	}

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(accessLogger)
	r.Use(middleware.Recoverer)
	if s.uc.Sync != nil {
		r.Use(accountLogger(s.uc.Sync))
	}

	r.Route("/api", func(r chi.Router) {
		r.Get("/snapshot", s.snapshotHandler)
		r.Get("/events", s.eventsHandler)
		r.Get("/recent-solves", s.recentSolvesHandler)

		r.Post("/users", s.addUserHandler)
		r.Delete("/users/{username}", s.removeUserHandler)
		r.Post("/users/{username}/retry", s.retryUserHandler)

		r.Post("/reload", s.reloadHandler)
		r.Put("/filter-mode", s.setFilterModeHandler)
		r.Post("/filter-mode/toggle", s.toggleFilterModeHandler)

		r.Get("/daily-challenge", s.dailyChallengeHandler)
		r.Get("/export.xlsx", s.exportHandler)

		// Auth endpoints (if an identity provider is configured)
		if s.uc.Sync != nil {
			r.Route("/auth", func(r chi.Router) {
				r.Post("/signin", s.signInHandler)
				r.Post("/signout", s.signOutHandler)
				r.Get("/me", s.meHandler)
			})
		}
	})

	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// accessLogger is a middleware that logs HTTP requests
func accessLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		ctx := logging.With(r.Context(), logging.From(r.Context()).With("request_id", middleware.GetReqID(r.Context())))
		r = r.WithContext(ctx)

		defer func() {
			logging.From(ctx).Info("access",
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.Status(),
				"bytes", ww.BytesWritten(),
				"duration", time.Since(start),
				"remote", r.RemoteAddr,
				"user_agent", r.UserAgent(),
			)
		}()

		next.ServeHTTP(ww, r)
	})
}

// statusOf maps use case errors onto HTTP status codes
func statusOf(err error) int {
	switch {
	case errors.Is(err, usecase.ErrInvalidUsername),
		errors.Is(err, usecase.ErrInvalidFilterMode):
		return http.StatusBadRequest
	case errors.Is(err, usecase.ErrAuthFailed):
		return http.StatusUnauthorized
	case errors.Is(err, usecase.ErrUserNotFound),
		errors.Is(err, usecase.ErrNotTracked):
		return http.StatusNotFound
	case errors.Is(err, usecase.ErrAlreadyTracked),
		errors.Is(err, usecase.ErrReloadInProgress):
		return http.StatusConflict
	case errors.Is(err, usecase.ErrFetchFailed):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func handleError(w http.ResponseWriter, r *http.Request, err error) {
	errutil.HandleHTTP(r.Context(), w, err, statusOf(err))
}

func writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		errutil.HandleHTTP(r.Context(), w, goerr.Wrap(err, "failed to marshal response"), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write(data) //nolint:errcheck // header already committed
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	defer safe.Close(r.Context(), r.Body)

	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<20)).Decode(v); err != nil {
		errutil.HandleHTTP(r.Context(), w, goerr.Wrap(err, "invalid request body"), http.StatusBadRequest)
		return false
	}
	return true
}

type acceptedResponse struct {
	Status string `json:"status"`
}

func writeAccepted(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, http.StatusAccepted, acceptedResponse{Status: "accepted"})
}
