// Package rbac gates routes on the caller's role.
package rbac

import (
	"net/http"

	"github.com/jcorner/storefront/pkg/auth"
	"github.com/jcorner/storefront/pkg/response"
)

// AdminOnly allows only callers whose token carries isAdmin. It must run
// after middleware.Authenticate.
func AdminOnly(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, ok := auth.FromContext(r.Context())
		if !ok || !id.IsAdmin {
			response.Forbidden(w)
			return
		}
		next.ServeHTTP(w, r)
	})
}
