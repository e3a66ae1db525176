package handlers

import (
	"net/http"

	"github.com/Noore22/Cake-Craft/internal/platform/requestctx"
	"github.com/Noore22/Cake-Craft/internal/services"
)

// SessionMiddleware resolves the visitor session once per request and stores
// it on the context. It must run before the request logger so the user id is logged.
func SessionMiddleware(sessions services.SessionService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if sessions == nil {
				next.ServeHTTP(w, r)
				return
			}
			ctx := requestctx.WithSession(r.Context(), sessions.Current(r.Context()))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
