package identity

import (
	"net/http"
	"strings"
)

const headerAuthorization = "Authorization"

const bearerPrefix = "Bearer "

// Middleware resolves the caller's bearer token (when present) and puts
// the identity on the request context. Requests without a token pass
// through unauthenticated; per-action auth requirements are enforced by
// the dispatch validator, not here.
func Middleware(provider Provider) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get(headerAuthorization)
			if strings.HasPrefix(header, bearerPrefix) {
				token := strings.TrimPrefix(header, bearerPrefix)
				if id, ok := provider.Resolve(r.Context(), token); ok {
					r = r.WithContext(WithIdentity(r.Context(), id))
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}
