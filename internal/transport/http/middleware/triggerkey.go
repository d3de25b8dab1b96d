package middleware

import (
	"net/http"

	"golang.org/x/crypto/bcrypt"
)

// TriggerKeyHeader carries the shared secret for machine-triggered endpoints.
const TriggerKeyHeader = "X-Trigger-Key"

// TriggerKey allows the request only when its X-Trigger-Key matches the bcrypt hash.
// An empty hash disables the endpoint.
func TriggerKey(hash string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if hash == "" {
				writeJSONError(w, http.StatusForbidden, "trigger disabled")
				return
			}
			key := r.Header.Get(TriggerKeyHeader)
			if key == "" || bcrypt.CompareHashAndPassword([]byte(hash), []byte(key)) != nil {
				writeJSONError(w, http.StatusUnauthorized, "invalid trigger key")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
