package middleware

import (
	"crypto/subtle"
	"log/slog"
	"net/http"

	"github.com/aurumcrm/customer-import/internal/config"
)

// APIKeyAuth returns middleware that validates the X-API-Key header against
// the configured key list. With RequireAPIKey disabled every request passes
// through; enabled with an empty key list, every request is rejected.
func APIKeyAuth(cfg *config.SecurityConfig) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !cfg.RequireAPIKey {
				next.ServeHTTP(w, r)
				return
			}

			key := r.Header.Get("X-API-Key")
			if key == "" {
				denyAuth(w, r, http.StatusUnauthorized, "missing API key", "AUTH_MISSING_KEY")
				return
			}
			if !matchesAnyKey(key, cfg.APIKeys) {
				denyAuth(w, r, http.StatusForbidden, "invalid API key", "AUTH_INVALID_KEY")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func denyAuth(w http.ResponseWriter, r *http.Request, status int, msg, code string) {
	slog.Warn("auth: "+msg,
		"path", r.URL.Path,
		"method", r.Method,
		"remote_addr", r.RemoteAddr,
	)
	http.Error(w, `{"error":"`+msg+`","code":"`+code+`"}`, status)
}

// matchesAnyKey compares the presented key against every configured key in
// constant time, so response timing reveals neither a match nor its position.
func matchesAnyKey(key string, validKeys []string) bool {
	match := 0
	for _, valid := range validKeys {
		match |= subtle.ConstantTimeCompare([]byte(key), []byte(valid))
	}
	return match == 1
}
