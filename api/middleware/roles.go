package middleware

import (
	"net/http"

	"github.com/elizabethadegbaju/crystalims/api/responses"
	"github.com/elizabethadegbaju/crystalims/pkg/logger"
)

// RequireManager gates aggregate and mutating surfaces to admin or superuser
// grants. A failing check narrows scope silently: the caller is redirected to
// their profile instead of seeing a 403.
func RequireManager(logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !ActorManages(r.Context()) {
				if logg != nil {
					ctx := logg.WithField(r.Context(), "path", r.URL.Path)
					logg.Warn(ctx, "authz.scope_narrowed")
				}
				responses.WriteScopeNarrowed(w, r)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
