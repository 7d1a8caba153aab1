package middleware

import (
	"net/http"

	"formgate/internal/common"
	"formgate/internal/platform/ratelimit"
)

// RateLimit throttles by client IP using the Redis fixed-window limiter.
// A nil limiter disables throttling entirely.
func RateLimit(limiter *ratelimit.Limiter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if limiter == nil {
				next.ServeHTTP(w, r)
				return
			}
			// Key on the bare host. RemoteAddr keeps its ephemeral port
			// for direct clients, and a port-qualified key would reset
			// the window on every reconnect.
			if !limiter.Allow(r.Context(), common.ClientIP(r)) {
				common.RespondWithError(w, http.StatusTooManyRequests, "Too many requests")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
