package rbac

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/jcorner/storefront/pkg/auth"
)

func serve(id *auth.Identity) int {
	h := AdminOnly(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if id != nil {
		req = req.WithContext(auth.WithIdentity(req.Context(), *id))
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec.Code
}

func TestAdminOnly(t *testing.T) {
	assert.Equal(t, http.StatusNoContent, serve(&auth.Identity{UserID: "a", IsAdmin: true}))
	assert.Equal(t, http.StatusForbidden, serve(&auth.Identity{UserID: "u"}))
	assert.Equal(t, http.StatusForbidden, serve(nil))
}
