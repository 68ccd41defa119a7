package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	goGuard "github.com/MrEthical07/goGuard"
	"github.com/MrEthical07/goGuard/jwt"
)

func newGuard(t *testing.T, mutate func(*goGuard.Config)) *goGuard.Guard {
	t.Helper()
	cfg := goGuard.DefaultConfig()
	cfg.Audit.Enabled = false
	if mutate != nil {
		mutate(&cfg)
	}
	g, err := goGuard.New().WithConfig(cfg).Build()
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	t.Cleanup(g.Close)
	return g
}

func newTokens(t *testing.T) *jwt.Manager {
	t.Helper()
	m, err := jwt.NewManager(jwt.Config{
		AccessTTL:     time.Minute,
		SigningMethod: jwt.MethodHS256,
		PrivateKey:    []byte("0123456789abcdef0123456789abcdef"),
	})
	if err != nil {
		t.Fatalf("NewManager: %v", err)
	}
	return m
}

var okHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
})

func TestClientIP(t *testing.T) {
	tests := []struct {
		name    string
		headers map[string]string
		remote  string
		want    string
	}{
		{"forwarded first hop", map[string]string{"X-Forwarded-For": "203.0.113.1, 10.0.0.1"}, "10.0.0.2:1234", "203.0.113.1"},
		{"forwarded unknown falls through", map[string]string{"X-Forwarded-For": "unknown", "X-Real-IP": "198.51.100.4"}, "10.0.0.2:1234", "198.51.100.4"},
		{"real ip", map[string]string{"X-Real-IP": " 198.51.100.5 "}, "10.0.0.2:1234", "198.51.100.5"},
		{"remote addr", nil, "192.0.2.9:5555", "192.0.2.9"},
		{"remote addr without port", nil, "192.0.2.10", "192.0.2.10"},
		{"ipv6 remote", nil, "[2001:db8::1]:443", "2001:db8::1"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodGet, "/", nil)
			r.RemoteAddr = tt.remote
			for k, v := range tt.headers {
				r.Header.Set(k, v)
			}
			if got := ClientIP(r); got != tt.want {
				t.Fatalf("expected %q, got %q", tt.want, got)
			}
		})
	}
}

func TestRateLimitDeniesWith429(t *testing.T) {
	g := newGuard(t, func(c *goGuard.Config) { c.RateLimit.AuthCapacity = 1 })

	var seenIP string
	h := RateLimit(g)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seenIP = goGuard.ClientIPFromContext(r.Context())
	}))

	send := func() *httptest.ResponseRecorder {
		r := httptest.NewRequest(http.MethodPost, "/api/auth/login", nil)
		r.RemoteAddr = "192.0.2.1:999"
		w := httptest.NewRecorder()
		h.ServeHTTP(w, r)
		return w
	}

	if w := send(); w.Code != http.StatusOK || seenIP != "192.0.2.1" {
		t.Fatalf("first request: %d ip=%q", w.Code, seenIP)
	}
	w := send()
	if w.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429, got %d", w.Code)
	}
	if w.Body.String() != rateLimitedBody || w.Header().Get("Content-Type") != "application/json" {
		t.Fatalf("unexpected 429 response %q", w.Body.String())
	}
}

func TestAuthenticate(t *testing.T) {
	g := newGuard(t, nil)
	tokens := newTokens(t)

	var gotUser string
	h := Authenticate(g, tokens)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims, ok := ClaimsFromContext(r.Context())
		if !ok {
			t.Fatal("claims missing")
		}
		if _, ok := TokenFromContext(r.Context()); !ok {
			t.Fatal("token missing")
		}
		gotUser = claims.Subject
	}))

	token, claims, err := tokens.Issue("alice", "user")
	if err != nil {
		t.Fatal(err)
	}

	call := func(auth string) int {
		r := httptest.NewRequest(http.MethodGet, "/api/me", nil)
		if auth != "" {
			r.Header.Set("Authorization", auth)
		}
		w := httptest.NewRecorder()
		h.ServeHTTP(w, r)
		return w.Code
	}

	if code := call("Bearer " + token); code != http.StatusOK || gotUser != "alice" {
		t.Fatalf("valid token: %d user=%q", code, gotUser)
	}
	for _, bad := range []string{"", "Bearer ", "Basic abc", "Bearer not-a-jwt"} {
		if code := call(bad); code != http.StatusUnauthorized {
			t.Fatalf("%q: expected 401, got %d", bad, code)
		}
	}

	g.Revoke(claims.TokenID(), claims.Expiry())
	if code := call("Bearer " + token); code != http.StatusUnauthorized {
		t.Fatalf("revoked token: expected 401, got %d", code)
	}
}

func TestSecurityLogSensitivePaths(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	var requestID string
	h := SecurityLog(zap.New(core))(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID = goGuard.RequestIDFromContext(r.Context())
		if r.URL.Path == "/api/denied" {
			w.WriteHeader(http.StatusForbidden)
		}
	}))

	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/items", nil))
	if logs.Len() != 0 {
		t.Fatalf("ordinary 200 should not be logged, got %d entries", logs.Len())
	}
	if len(requestID) != 8 {
		t.Fatalf("expected 8 character request id, got %q", requestID)
	}

	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodPost, "/api/auth/login", nil))
	if got := logs.FilterMessage("incoming request").Len(); got != 1 {
		t.Fatalf("expected incoming request log, got %d", got)
	}

	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/denied", nil))
	if got := logs.FilterMessage("forbidden access").Len(); got != 1 {
		t.Fatalf("expected forbidden access warning, got %d", got)
	}
}

func TestIsSensitivePath(t *testing.T) {
	for path, want := range map[string]bool{
		"/api/auth/login":      true,
		"/api/admin/users":     true,
		"/api/reset-password":  true,
		"/api/token/refresh":   true,
		"/api/items":           false,
		"/api/security/health": false,
	} {
		if got := IsSensitivePath(path); got != want {
			t.Errorf("IsSensitivePath(%q) = %v, want %v", path, got, want)
		}
	}
}
