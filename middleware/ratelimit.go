package middleware

import (
	"net/http"

	goGuard "github.com/MrEthical07/goGuard"
)

// rateLimitedBody is the fixed JSON body of a 429 response.
const rateLimitedBody = `{"error":"Too many requests. Please try again later."}`

// RateLimit admits each request through [goGuard.Guard.Allow], keyed by
// [ClientIP] and classified by path. Denied requests get 429 and never reach
// next. The resolved IP is stored in the request context.
func RateLimit(guard *goGuard.Guard) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ip := ClientIP(r)
			ctx := goGuard.WithClientIP(r.Context(), ip)

			if guard != nil && !guard.Allow(ip, r.URL.Path) {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusTooManyRequests)
				_, _ = w.Write([]byte(rateLimitedBody))
				return
			}

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
