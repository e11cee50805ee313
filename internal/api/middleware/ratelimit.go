// Package middleware holds router-level HTTP middleware.
package middleware

import (
	"net/http"
	"strconv"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/lmbridge/lmbridge/pkg/httpext"
	"github.com/lmbridge/lmbridge/pkg/ratelimit"
)

// RateLimit caps requests per client inside a sliding window. When the
// limiter is active its real remaining quota replaces the fixed
// compatibility value in the x-ratelimit-remaining-requests header.
func RateLimit(window time.Duration, maxHits int) func(http.Handler) http.Handler {
	limiter := ratelimit.NewLimiter(window, maxHits)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			// Use X-Forwarded-For if behind proxy, otherwise remote address
			ip := r.Header.Get("X-Forwarded-For")
			if ip == "" {
				ip = r.RemoteAddr
			}

			if !limiter.Allow(ip) {
				log.Warn().Str("client_ip", ip).Msg("Rate limit exceeded")
				httpext.JsonError(w, "Rate limit exceeded", http.StatusTooManyRequests)
				return
			}

			w.Header().Set("x-ratelimit-remaining-requests", strconv.Itoa(limiter.Remaining(ip)))
			next.ServeHTTP(w, r)
		})
	}
}
