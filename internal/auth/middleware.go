// internal/auth/middleware.go
//
// Chi middleware: bearer-token authentication and role gates.
//
// RequireAuth rejects requests without a valid token before any handler
// runs; RequireRole layers a coarse role check on top for manager-only
// surfaces.  Role gating beyond that (ownership of records) is enforced
// where the data is queried, keyed by the identity's employee id.

package auth

import (
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/fieldtrak/fieldtrak/internal/api"
)

// RequireAuth validates the Authorization bearer token and stores the
// asserted Identity in the request context.
func RequireAuth(secret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw := r.Header.Get("Authorization")
			token, ok := strings.CutPrefix(raw, "Bearer ")
			if !ok || token == "" {
				api.Fail(w, http.StatusUnauthorized, "unauthenticated", "missing bearer token")
				return
			}

			ident, err := ValidateToken(token, secret)
			if err != nil {
				zap.S().Debugw("token rejected", "err", err)
				api.Fail(w, http.StatusUnauthorized, "unauthenticated", "invalid or expired token")
				return
			}

			next.ServeHTTP(w, r.WithContext(WithIdentity(r.Context(), ident)))
		})
	}
}

// RequireRole ensures the current identity carries ANY of the supplied
// roles.  Must run after RequireAuth.
func RequireRole(names ...string) func(http.Handler) http.Handler {
	if len(names) == 0 {
		panic("auth.RequireRole: at least one role name must be supplied")
	}
	allowSet := make(map[string]struct{}, len(names))
	for _, n := range names {
		allowSet[n] = struct{}{}
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ident, ok := FromContext(r.Context())
			if !ok {
				api.Fail(w, http.StatusUnauthorized, "unauthenticated", "authentication required")
				return
			}
			if _, ok := allowSet[ident.Role]; !ok {
				api.Fail(w, http.StatusForbidden, "forbidden", "insufficient role")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
