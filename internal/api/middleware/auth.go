package middleware

import (
	"crypto/subtle"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/bcnelson/pairstore/internal/api/handler"
	"github.com/bcnelson/pairstore/internal/domain"
)

// Auth creates bearer API key middleware. An empty key disables the check.
func Auth(apiKey string, log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if apiKey == "" {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			// Extract the API key from the Authorization header
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				unauthorized(w, log, "missing authorization header")
				return
			}

			if !strings.HasPrefix(authHeader, "Bearer ") {
				unauthorized(w, log, "invalid authorization header format")
				return
			}

			given := strings.TrimPrefix(authHeader, "Bearer ")
			if subtle.ConstantTimeCompare([]byte(given), []byte(apiKey)) != 1 {
				unauthorized(w, log, "invalid API key")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func unauthorized(w http.ResponseWriter, log *slog.Logger, reason string) {
	w.Header().Set("Content-Type", "application/json")
	handler.WriteError(w, log, fmt.Errorf("%w: %s", domain.ErrUnauthorized, reason))
}
