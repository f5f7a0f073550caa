// Package response writes JSON bodies from middleware and plain handlers
// that have no *ctx.Context at hand.
package response

import (
	"encoding/json"
	"net/http"

	"github.com/jcorner/storefront/pkg/logger"
)

// JSON writes v with the given status code.
func JSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Warn("response: encode body", "error", err)
	}
}

// Error sends {"error": message}.
func Error(w http.ResponseWriter, status int, message string) {
	JSON(w, status, map[string]interface{}{"error": message})
}

// ValidationError sends a 400 with a field-level error map.
func ValidationError(w http.ResponseWriter, message string, errs map[string]string) {
	JSON(w, http.StatusBadRequest, map[string]interface{}{
		"error":  message,
		"errors": errs,
	})
}

// AuthFailed sends the 401 body used when a bearer token is missing or bad.
func AuthFailed(w http.ResponseWriter, message string) {
	JSON(w, http.StatusUnauthorized, map[string]interface{}{"auth": "Failed", "message": message})
}

// Forbidden sends a 403.
func Forbidden(w http.ResponseWriter) {
	JSON(w, http.StatusForbidden, map[string]interface{}{"auth": "Failed", "message": "Action Forbidden"})
}

// NotFound sends a 404.
func NotFound(w http.ResponseWriter) {
	Error(w, http.StatusNotFound, "Not found")
}
