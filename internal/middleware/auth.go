package middleware

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"os"
	"strings"

	"auto-parts-manager/internal/models"
)

// AuthMiddleware provides API key authentication for the local control API.
func AuthMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		apiKey := r.Header.Get("X-API-Key")
		if apiKey == "" {
			slog.Warn("Authentication failed: missing API key", "remote_addr", r.RemoteAddr)
			writeAuthError(w, "API key required")
			return
		}

		if !isValidAPIKey(apiKey) {
			slog.Warn("Authentication failed: invalid API key", "remote_addr", r.RemoteAddr)
			writeAuthError(w, "Invalid API key")
			return
		}

		next.ServeHTTP(w, r)
	})
}

// isValidAPIKey checks the provided key against the API_KEYS environment
// variable (comma-separated).
func isValidAPIKey(apiKey string) bool {
	apiKeysStr := os.Getenv("API_KEYS")
	if apiKeysStr == "" {
		apiKeysStr = "demo" // Default fallback
	}

	for _, validKey := range strings.Split(apiKeysStr, ",") {
		if strings.TrimSpace(validKey) == apiKey {
			return true
		}
	}
	return false
}

func writeAuthError(w http.ResponseWriter, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	json.NewEncoder(w).Encode(models.ErrorResponse{Code: "unauthorized", Message: message})
}
