package goGuard

import (
	"strconv"

	"go.uber.org/zap"

	"github.com/MrEthical07/goGuard/internal/monitor"
)

// RecordFailedLogin counts a failed login for ip and, when non-empty,
// username. Reaching a threshold raises an alert.
func (g *Guard) RecordFailedLogin(ip, username string) {
	g.metricInc(MetricLoginFailure)
	g.monitor.RecordFailedLogin(ip, username)
	g.emitAudit(AuditLoginFailed, false, username, ip, "", nil)
}

// RecordSuccessfulLogin clears the failure history of ip and username.
func (g *Guard) RecordSuccessfulLogin(ip, username string) {
	g.metricInc(MetricLoginSuccess)
	g.monitor.RecordSuccessfulLogin(ip, username)
	g.logger.Info("login succeeded; failure history cleared",
		zap.String("ip", ip),
		zap.String("username", username),
	)
	g.emitAudit(AuditLoginSucceeded, true, username, ip, "", nil)
}

// RecordRegistrationAttempt counts a registration attempt from ip and reports
// whether the caller may proceed.
func (g *Guard) RecordRegistrationAttempt(ip string) bool {
	if g.monitor.RecordRegistrationAttempt(ip) {
		g.metricInc(MetricRegistrationAllowed)
		return true
	}
	g.metricInc(MetricRegistrationBlocked)
	g.emitAudit(AuditRegistrationBlocked, false, "", ip, ErrRegistrationBlocked.Error(), nil)
	return false
}

// IsSuspiciousIP reports whether ip has reached the failed-login threshold.
func (g *Guard) IsSuspiciousIP(ip string) bool {
	return g.monitor.IsSuspiciousIP(ip)
}

// IsUserLocked reports whether username has reached the failed-login threshold.
func (g *Guard) IsUserLocked(username string) bool {
	return g.monitor.IsUserLocked(username)
}

// FailedLogins returns the live failure counts for ip and username.
func (g *Guard) FailedLogins(ip, username string) (byIP, byUser int) {
	return g.monitor.FailedLogins(ip, username)
}

// RecentAlerts returns up to limit alerts still inside the monitor window,
// newest first. limit <= 0 returns all of them.
func (g *Guard) RecentAlerts(limit int) []Alert {
	events := g.monitor.RecentAlerts(limit)
	out := make([]Alert, 0, len(events))
	for _, e := range events {
		out = append(out, alertFromEvent(e))
	}
	return out
}

func (g *Guard) handleAlert(e monitor.Event) {
	alert := alertFromEvent(e)

	g.metricInc(MetricAlertRaised)
	switch alert.Kind {
	case AlertSuspiciousIP:
		g.metricInc(MetricSuspiciousIPAlert)
	case AlertSuspiciousUser:
		g.metricInc(MetricSuspiciousUserAlert)
	case AlertSuspiciousRegistration:
		g.metricInc(MetricSuspiciousRegistrationAlert)
	}

	g.logger.Warn("security alert",
		zap.String("alert_id", alert.ID),
		zap.String("kind", alert.Kind),
		zap.String("subject", alert.Subject),
		zap.Int("count", alert.Count),
		zap.String("message", alert.Message),
	)

	if g.audit != nil {
		event := AuditEvent{
			ID:        alert.ID,
			Timestamp: alert.OccurredAt.UTC(),
			EventType: AuditSecurityAlert,
			Subject:   alert.Subject,
			Success:   false,
			Reason:    alert.Kind,
			Count:     alert.Count,
			Metadata:  map[string]string{"message": alert.Message, "count": strconv.Itoa(alert.Count)},
		}
		if alert.Kind != AlertSuspiciousUser {
			event.IP = alert.Subject
		}
		g.dispatch(event)
	}

	g.notifyAlert(alert)
}

func (g *Guard) notifyAlert(alert Alert) {
	if g.alertHook == nil {
		return
	}
	defer func() {
		if r := recover(); r != nil {
			g.logger.Error("alert hook panicked", zap.String("alert_id", alert.ID), zap.Any("panic", r))
		}
	}()
	g.alertHook(alert)
}

func alertFromEvent(e monitor.Event) Alert {
	return Alert{
		ID:         e.ID,
		Kind:       string(e.Kind),
		Subject:    e.Subject,
		Message:    e.Message,
		Count:      e.Count,
		OccurredAt: e.OccurredAt,
	}
}
