package goGuard

import (
	"time"

	"github.com/MrEthical07/goGuard/internal/security"
)

// SecurityReport describes the effective policy of a Guard.
type SecurityReport struct {
	RateLimitingActive     bool          `json:"rate_limiting_active"`
	General                BucketReport  `json:"general"`
	Auth                   BucketReport  `json:"auth"`
	AuthPathPrefixes       []string      `json:"auth_path_prefixes"`
	MaxFailedLoginsPerIP   int           `json:"max_failed_logins_per_ip"`
	MaxFailedLoginsPerUser int           `json:"max_failed_logins_per_user"`
	MaxRegistrationsPerIP  int           `json:"max_registrations_per_ip"`
	MonitorWindow          time.Duration `json:"monitor_window"`
	DeduplicatedAlerts     bool          `json:"deduplicated_alerts"`
	AlertCapacity          int           `json:"alert_capacity"`
	CodeDigits             int           `json:"code_digits"`
	CodeTTL                time.Duration `json:"code_ttl"`
	CodeMaxAttempts        int           `json:"code_max_attempts"`
	AuditActive            bool          `json:"audit_active"`
	AuditLossy             bool          `json:"audit_lossy"`
	AuditMaxWait           time.Duration `json:"audit_max_wait"`
	MetricsActive          bool          `json:"metrics_active"`
}

type BucketReport struct {
	Capacity      int           `json:"capacity"`
	Period        time.Duration `json:"period"`
	RatePerSecond float64       `json:"rate_per_second"`
}

func (g *Guard) SecurityReport() SecurityReport {
	if g == nil {
		return SecurityReport{}
	}

	c := g.config
	r := security.BuildReport(security.ReportInput{
		RateLimitEnabled:       c.RateLimit.Enabled,
		GeneralCapacity:        c.RateLimit.GeneralCapacity,
		GeneralPeriod:          c.RateLimit.GeneralPeriod,
		AuthCapacity:           c.RateLimit.AuthCapacity,
		AuthPeriod:             c.RateLimit.AuthPeriod,
		AuthPathPrefixes:       c.RateLimit.AuthPathPrefixes,
		MaxFailedLoginsPerIP:   c.Monitor.MaxFailedLoginsPerIP,
		MaxFailedLoginsPerUser: c.Monitor.MaxFailedLoginsPerUser,
		MaxRegistrationsPerIP:  c.Monitor.MaxRegistrationsPerIP,
		MonitorWindow:          c.Monitor.Window,
		DeduplicateAlerts:      c.Monitor.DeduplicateAlerts,
		AlertCapacity:          c.Monitor.AlertCapacity,
		CodeDigits:             c.OneTimeCode.Digits,
		CodeTTL:                c.OneTimeCode.TTL,
		CodeMaxAttempts:        c.OneTimeCode.MaxAttempts,
		AuditEnabled:           c.Audit.Enabled,
		AuditDropIfFull:        c.Audit.DropIfFull,
		AuditEmitTimeout:       c.Audit.EmitTimeout,
		MetricsEnabled:         c.Metrics.Enabled,
	})

	return SecurityReport{
		RateLimitingActive:     r.RateLimitingActive,
		General:                BucketReport(r.General),
		Auth:                   BucketReport(r.Auth),
		AuthPathPrefixes:       r.AuthPathPrefixes,
		MaxFailedLoginsPerIP:   r.MaxFailedLoginsPerIP,
		MaxFailedLoginsPerUser: r.MaxFailedLoginsPerUser,
		MaxRegistrationsPerIP:  r.MaxRegistrationsPerIP,
		MonitorWindow:          r.MonitorWindow,
		DeduplicatedAlerts:     r.DeduplicatedAlerts,
		AlertCapacity:          r.AlertCapacity,
		CodeDigits:             r.CodeDigits,
		CodeTTL:                r.CodeTTL,
		CodeMaxAttempts:        r.CodeMaxAttempts,
		AuditActive:            r.AuditActive,
		AuditLossy:             r.AuditLossy,
		AuditMaxWait:           r.AuditMaxWait,
		MetricsActive:          r.MetricsActive,
	}
}
