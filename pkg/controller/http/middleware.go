package http

import (
	"net/http"

	"github.com/secmon-lab/leetwatch/pkg/usecase"
	"github.com/secmon-lab/leetwatch/pkg/utils/logging"
)

// accountLogger tags the request logger with the signed-in account, if any
func accountLogger(sync *usecase.SyncUseCase) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			account := sync.Current()
			if account == nil {
				next.ServeHTTP(w, r)
				return
			}

			ctx := logging.With(r.Context(), logging.From(r.Context()).With(usecase.AccountIDKey, account.ID))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
