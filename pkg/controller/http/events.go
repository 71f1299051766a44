package http

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/leetwatch/pkg/usecase"
	"github.com/secmon-lab/leetwatch/pkg/utils/errutil"
	"github.com/secmon-lab/leetwatch/pkg/utils/logging"
)

// eventsHandler streams snapshots as server-sent events. Slow clients only
// ever see the latest snapshot.
func (s *Server) eventsHandler(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		errutil.HandleHTTP(r.Context(), w, goerr.New("streaming unsupported"), http.StatusInternalServerError)
		return
	}

	ctx := r.Context()
	notify := make(chan struct{}, 1)
	unsubscribe := s.uc.Tracker.Subscribe(func(usecase.Event) {
		select {
		case notify <- struct{}{}:
		default:
		}
	})
	defer unsubscribe()

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)

	send := func() bool {
		data, err := json.Marshal(toSnapshotResponse(s.uc.Tracker.Snapshot()))
		if err != nil {
			_ = errutil.Handle(ctx, err, "failed to marshal snapshot")
			return false
		}
		if _, err := fmt.Fprintf(w, "event: snapshot\ndata: %s\n\n", data); err != nil {
			logging.From(ctx).Debug("event stream closed", "error", err)
			return false
		}
		flusher.Flush()
		return true
	}

	if !send() {
		return
	}

	ticker := time.NewTicker(s.keepAlive)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-notify:
			if !send() {
				return
			}
		case <-ticker.C:
			if _, err := fmt.Fprint(w, ": ping\n\n"); err != nil {
				return
			}
			flusher.Flush()
		}
	}
}
