package server

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

const (
	defaultAlertLimit = 50
	maxAlertLimit     = 1000
)

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status": "healthy",
		"services": map[string]string{
			"security_monitoring": "active",
			"token_revocation":    "active",
			"two_factor_auth":     "active",
		},
		"timestamp": millis(time.Now()),
	})
}

func (s *Server) handleMetrics(w http.ResponseWriter, r *http.Request) {
	s.logger.Info("security metrics requested", zap.String("ip", clientIP(r)))
	writeJSON(w, http.StatusOK, map[string]any{
		"metrics":   s.guard.SecurityMetrics(),
		"timestamp": millis(time.Now()),
	})
}

func (s *Server) handleCleanup(w http.ResponseWriter, r *http.Request) {
	s.logger.Info("security cleanup requested", zap.String("ip", clientIP(r)))
	res := s.guard.Cleanup()
	writeJSON(w, http.StatusOK, map[string]any{
		"message":   "Security cleanup completed successfully",
		"evicted":   res,
		"timestamp": millis(time.Now()),
	})
}

func (s *Server) handleCheckIP(w http.ResponseWriter, r *http.Request) {
	ip := chi.URLParam(r, "ip")
	s.logger.Info("ip status check requested", zap.String("ip", clientIP(r)), zap.String("check_ip", ip))
	byIP, _ := s.guard.FailedLogins(ip, "")
	writeJSON(w, http.StatusOK, map[string]any{
		"ip":            ip,
		"suspicious":    s.guard.IsSuspiciousIP(ip),
		"failed_logins": byIP,
		"timestamp":     millis(time.Now()),
	})
}

func (s *Server) handleCheckUser(w http.ResponseWriter, r *http.Request) {
	username := chi.URLParam(r, "username")
	_, byUser := s.guard.FailedLogins("", username)
	writeJSON(w, http.StatusOK, map[string]any{
		"username":      username,
		"locked":        s.guard.IsUserLocked(username),
		"failed_logins": byUser,
		"timestamp":     millis(time.Now()),
	})
}

func (s *Server) handleReport(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.guard.SecurityReport())
}

func (s *Server) handleAlerts(w http.ResponseWriter, r *http.Request) {
	limit := defaultAlertLimit
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			writeError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = min(n, maxAlertLimit)
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"alerts": s.guard.RecentAlerts(limit),
	})
}

type codeRequest struct {
	Identifier string `json:"identifier"`
	Code       string `json:"code,omitempty"`
}

func (s *Server) handleGenerateCode(w http.ResponseWriter, r *http.Request) {
	var req codeRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.Identifier) == "" {
		writeError(w, http.StatusBadRequest, "Identifier is required")
		return
	}
	s.logger.Info("2fa code generation requested", zap.String("ip", clientIP(r)), zap.String("identifier", req.Identifier))

	code, err := s.guard.GenerateCode(req.Identifier)
	if err != nil {
		s.logger.Error("2fa code generation failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "Failed to generate 2FA code")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"code":               code,
		"identifier":         req.Identifier,
		"expiration_minutes": int(s.guard.CodeTTL().Minutes()),
		"message":            "2FA code generated successfully",
	})
}

func (s *Server) handleVerifyCode(w http.ResponseWriter, r *http.Request) {
	var req codeRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.Identifier == "" || req.Code == "" {
		writeError(w, http.StatusBadRequest, "Identifier and code are required")
		return
	}
	s.logger.Info("2fa code verification requested", zap.String("ip", clientIP(r)), zap.String("identifier", req.Identifier))

	res := s.guard.VerifyCode(req.Identifier, req.Code)
	writeJSON(w, http.StatusOK, map[string]any{
		"valid":              res.Valid,
		"message":            res.Reason,
		"identifier":         req.Identifier,
		"attempts_remaining": res.AttemptsRemaining,
	})
}
