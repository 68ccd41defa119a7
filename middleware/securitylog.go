package middleware

import (
	"net/http"
	"strings"
	"time"

	chimw "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	goGuard "github.com/MrEthical07/goGuard"
	"github.com/MrEthical07/goGuard/internal"
)

// SecurityLog tags every request with a short request ID and logs traffic on
// sensitive paths plus every response with status >= 400. 401, 403 and 429
// additionally log a dedicated warning.
func SecurityLog(logger *zap.Logger) func(http.Handler) http.Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	logger = logger.Named("security")

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			requestID := internal.ShortID()
			ip := ClientIP(r)
			uri := r.URL.Path
			sensitive := IsSensitivePath(uri)

			ctx := goGuard.WithRequestID(r.Context(), requestID)
			ctx = goGuard.WithClientIP(ctx, ip)

			if sensitive {
				logger.Info("incoming request",
					zap.String("request_id", requestID),
					zap.String("ip", ip),
					zap.String("method", r.Method),
					zap.String("uri", uri),
					zap.String("user_agent", r.UserAgent()),
				)
			}

			ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)
			defer func() {
				status := ww.Status()
				if status == 0 {
					status = http.StatusOK
				}
				if !sensitive && status < http.StatusBadRequest {
					return
				}

				fields := []zap.Field{
					zap.String("request_id", requestID),
					zap.String("ip", ip),
					zap.String("uri", uri),
					zap.Int("status", status),
					zap.Duration("duration", time.Since(start)),
				}
				if status >= http.StatusBadRequest {
					logger.Warn("response", fields...)
				} else {
					logger.Info("response", fields...)
				}

				switch status {
				case http.StatusUnauthorized:
					logger.Warn("unauthorized access", fields[:3]...)
				case http.StatusForbidden:
					logger.Warn("forbidden access", fields[:3]...)
				case http.StatusTooManyRequests:
					logger.Warn("rate limit exceeded", fields[:3]...)
				}
			}()

			next.ServeHTTP(ww, r.WithContext(ctx))
		})
	}
}

// IsSensitivePath reports whether requests to path are always logged.
func IsSensitivePath(path string) bool {
	return strings.HasPrefix(path, "/api/auth/") ||
		strings.HasPrefix(path, "/api/admin/") ||
		strings.Contains(path, "password") ||
		strings.Contains(path, "token")
}
