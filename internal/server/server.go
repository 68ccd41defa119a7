// Package server is the goGuard reference HTTP service: a chi router that
// runs every request through the rate limiter, exposes login, registration
// and logout backed by a pluggable user directory, and serves the operator
// endpoints under /api/security.
package server

import (
	"crypto/subtle"
	"net/http"
	"time"

	goGuard "github.com/MrEthical07/goGuard"
	"github.com/MrEthical07/goGuard/jwt"
	"github.com/MrEthical07/goGuard/middleware"
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"
)

const operatorTokenHeader = "X-Operator-Token"

type Options struct {
	// OperatorToken is compared against the X-Operator-Token header on
	// /api/security/* routes. Empty rejects every operator request.
	OperatorToken  string
	CORSOrigins    []string
	RequestTimeout time.Duration
	// MetricsHandler, when set, is mounted at /metrics.
	MetricsHandler http.Handler
}

type Server struct {
	guard  *goGuard.Guard
	tokens *jwt.Manager
	auth   Authenticator
	reg    Registrar
	opts   Options
	logger *zap.Logger
	router chi.Router
}

func New(guard *goGuard.Guard, tokens *jwt.Manager, auth Authenticator, reg Registrar, opts Options, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	if opts.RequestTimeout <= 0 {
		opts.RequestTimeout = 30 * time.Second
	}
	if len(opts.CORSOrigins) == 0 {
		opts.CORSOrigins = []string{"*"}
	}
	s := &Server{
		guard:  guard,
		tokens: tokens,
		auth:   auth,
		reg:    reg,
		opts:   opts,
		logger: logger,
	}
	s.router = s.routes()
	return s
}

func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()

	// chi's RealIP is left out: middleware.ClientIP resolves forwarding
	// headers itself and skips "unknown" values.
	r.Use(chimw.RequestID)
	r.Use(middleware.SecurityLog(s.logger))
	r.Use(chimw.Recoverer)
	r.Use(chimw.Timeout(s.opts.RequestTimeout))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   s.opts.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", operatorTokenHeader},
		AllowCredentials: false,
		MaxAge:           300,
	}))
	r.Use(middleware.RateLimit(s.guard))

	r.Get("/api/security/health", s.handleHealth)
	if s.opts.MetricsHandler != nil {
		r.Method(http.MethodGet, "/metrics", s.opts.MetricsHandler)
	}

	r.Route("/api/auth", func(r chi.Router) {
		r.Post("/login", s.handleLogin)
		r.Post("/signin", s.handleLogin)
		r.Post("/register", s.handleRegister)
		r.Post("/signup", s.handleRegister)
		r.With(middleware.Authenticate(s.guard, s.tokens)).Post("/logout", s.handleLogout)
	})
	r.With(middleware.Authenticate(s.guard, s.tokens)).Get("/api/me", s.handleMe)

	r.Route("/api/security", func(r chi.Router) {
		r.Use(s.operatorOnly)
		r.Get("/metrics", s.handleMetrics)
		r.Post("/cleanup", s.handleCleanup)
		r.Get("/check-ip/{ip}", s.handleCheckIP)
		r.Get("/check-user/{username}", s.handleCheckUser)
		r.Get("/report", s.handleReport)
		r.Get("/alerts", s.handleAlerts)
		r.Post("/2fa/generate", s.handleGenerateCode)
		r.Post("/2fa/verify", s.handleVerifyCode)
	})

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusNotFound, "endpoint not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	})

	return r
}

func (s *Server) operatorOnly(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got := r.Header.Get(operatorTokenHeader)
		if s.opts.OperatorToken == "" || subtle.ConstantTimeCompare([]byte(got), []byte(s.opts.OperatorToken)) != 1 {
			writeError(w, http.StatusForbidden, "forbidden")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func clientIP(r *http.Request) string {
	if ip := goGuard.ClientIPFromContext(r.Context()); ip != "" {
		return ip
	}
	return middleware.ClientIP(r)
}
