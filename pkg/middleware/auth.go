package middleware

import (
	"net/http"
	"strings"

	"github.com/jcorner/storefront/pkg/auth"
	"github.com/jcorner/storefront/pkg/logger"
	"github.com/jcorner/storefront/pkg/response"
)

// TokenVerifier is the part of auth.TokenService the middleware needs.
type TokenVerifier interface {
	Verify(token string) (auth.Identity, error)
}

// Authenticate requires a valid "Authorization: Bearer <token>" header and
// stores the caller's identity in the request context.
func Authenticate(tokens TokenVerifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			scheme, token, _ := strings.Cut(header, " ")
			token = strings.TrimSpace(token)

			if !strings.EqualFold(scheme, "Bearer") || token == "" {
				response.JSON(w, http.StatusUnauthorized, map[string]string{"auth": "Failed. No Token"})
				return
			}

			id, err := tokens.Verify(token)
			if err != nil {
				logger.WithCtx(r.Context()).Debug("rejected bearer token", "error", err)
				response.AuthFailed(w, "Invalid or expired token")
				return
			}

			next.ServeHTTP(w, r.WithContext(auth.WithIdentity(r.Context(), id)))
		})
	}
}
