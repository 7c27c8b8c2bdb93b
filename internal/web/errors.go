package web

// errors.go provides JSON response helpers for the web layer. Technical
// errors are logged server-side with the request ID; clients receive a
// sanitized message.

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"regexp"
	"strings"
)

// connStringRe matches connection-string-looking fragments that must never
// leak into client-facing error messages.
var connStringRe = regexp.MustCompile(`\b\w+://\S+@\S+`)

// writeError writes a JSON error response with a sanitized message.
func writeError(w http.ResponseWriter, status int, message string) {
	slog.Error("request failed", "status", status, "error", message)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": sanitizeErrorMessage(message)})
}

// writeJSON encodes v as JSON and writes it to w.
// Encoding errors are logged since headers are already sent.
func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("json encode failed", "error", err)
	}
}

// sanitizeErrorMessage strips credentials and caps the length of messages
// surfaced to clients.
func sanitizeErrorMessage(message string) string {
	message = connStringRe.ReplaceAllString(message, "[REDACTED]")
	message = strings.TrimSpace(message)
	if len(message) > 500 {
		message = message[:500] + "..."
	}
	return message
}
