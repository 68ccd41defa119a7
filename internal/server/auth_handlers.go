package server

import (
	"errors"
	"net/http"
	"strings"

	"github.com/MrEthical07/goGuard/middleware"
	"go.uber.org/zap"
)

const (
	maxUsernameLength = 50
	maxEmailLength    = 100
)

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token     string `json:"token"`
	Type      string `json:"type"`
	ID        string `json:"id"`
	Username  string `json:"username"`
	Email     string `json:"email"`
	ExpiresAt int64  `json:"expires_at"`
}

type registerRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	ip := clientIP(r)

	if strings.TrimSpace(req.Username) == "" {
		s.logger.Warn("login attempt with empty username", zap.String("ip", ip))
		writeError(w, http.StatusBadRequest, "Username cannot be empty")
		return
	}
	if req.Password == "" {
		s.logger.Warn("login attempt with empty password", zap.String("ip", ip), zap.String("username", req.Username))
		writeError(w, http.StatusBadRequest, "Password cannot be empty")
		return
	}
	username := sanitize(req.Username)

	if s.guard.IsUserLocked(username) {
		s.logger.Warn("login attempt on locked account", zap.String("ip", ip), zap.String("username", username))
		writeError(w, http.StatusTooManyRequests, "Too many failed login attempts. Please try again later.")
		return
	}

	user, err := s.auth.Authenticate(r.Context(), username, req.Password)
	if errors.Is(err, ErrInvalidCredentials) {
		s.guard.RecordFailedLogin(ip, username)
		s.logger.Warn("failed login attempt", zap.String("ip", ip), zap.String("username", username))
		writeError(w, http.StatusUnauthorized, "Invalid username or password")
		return
	}
	if err != nil {
		s.logger.Error("login error", zap.String("ip", ip), zap.String("username", username), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "Authentication failed")
		return
	}

	token, claims, err := s.tokens.Issue(user.Username, user.Role)
	if err != nil {
		s.logger.Error("token issue failed", zap.String("username", user.Username), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "Authentication failed")
		return
	}

	s.guard.RecordSuccessfulLogin(ip, user.Username)
	s.logger.Info("successful login", zap.String("ip", ip), zap.String("username", user.Username), zap.String("user_id", user.ID))

	writeJSON(w, http.StatusOK, loginResponse{
		Token:     token,
		Type:      "Bearer",
		ID:        user.ID,
		Username:  user.Username,
		Email:     user.Email,
		ExpiresAt: claims.Expiry().Unix(),
	})
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	ip := clientIP(r)

	if !s.guard.RecordRegistrationAttempt(ip) {
		s.logger.Warn("registration rate limited", zap.String("ip", ip))
		writeError(w, http.StatusTooManyRequests, "Too many registration attempts. Please try again later.")
		return
	}

	switch {
	case strings.TrimSpace(req.Username) == "":
		writeError(w, http.StatusBadRequest, "Username cannot be empty")
		return
	case strings.TrimSpace(req.Email) == "":
		writeError(w, http.StatusBadRequest, "Email cannot be empty")
		return
	case len(req.Username) > maxUsernameLength:
		writeError(w, http.StatusBadRequest, "Username must not exceed 50 characters")
		return
	case len(req.Email) > maxEmailLength:
		writeError(w, http.StatusBadRequest, "Email must not exceed 100 characters")
		return
	}

	username, email := sanitize(req.Username), sanitize(req.Email)
	user, err := s.reg.Register(r.Context(), username, email, req.Password)
	switch {
	case errors.Is(err, ErrWeakPassword):
		s.logger.Warn("weak password attempt", zap.String("ip", ip), zap.String("username", username))
		writeError(w, http.StatusBadRequest, strings.TrimPrefix(err.Error(), ErrWeakPassword.Error()+": "))
		return
	case errors.Is(err, ErrUsernameTaken):
		s.logger.Warn("duplicate username attempt", zap.String("ip", ip), zap.String("username", username))
		writeError(w, http.StatusConflict, "Username is already taken")
		return
	case errors.Is(err, ErrEmailTaken):
		s.logger.Warn("duplicate email attempt", zap.String("ip", ip), zap.String("email", email))
		writeError(w, http.StatusConflict, "Email is already in use")
		return
	case err != nil:
		s.logger.Error("registration error", zap.String("ip", ip), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "Registration failed")
		return
	}

	s.logger.Info("successful registration", zap.String("ip", ip), zap.String("username", user.Username))
	writeJSON(w, http.StatusCreated, map[string]string{
		"message":  "User registered successfully",
		"id":       user.ID,
		"username": user.Username,
	})
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	s.guard.Revoke(claims.TokenID(), claims.Expiry())
	s.logger.Info("logout", zap.String("ip", clientIP(r)), zap.String("username", claims.Username))
	writeJSON(w, http.StatusOK, map[string]string{"message": "Logged out successfully"})
}

func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"username":   claims.Username,
		"role":       claims.Role,
		"expires_at": claims.Expiry().Unix(),
	})
}
