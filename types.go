package goGuard

import (
	"time"

	"github.com/MrEthical07/goGuard/internal/rate"
	"github.com/MrEthical07/goGuard/internal/stores"
)

// Category selects which token bucket a request draws from.
type Category string

const (
	CategoryGeneral Category = Category(rate.CategoryGeneral)
	CategoryAuth    Category = Category(rate.CategoryAuth)
)

// Verification reasons reported in [VerifyResult.Reason].
const (
	ReasonVerified        = stores.ReasonVerified
	ReasonNoActiveCode    = stores.ReasonNoActiveCode
	ReasonExpired         = stores.ReasonExpired
	ReasonTooManyAttempts = stores.ReasonTooManyAttempts
	ReasonInvalidCode     = stores.ReasonInvalidCode
)

// Alert kinds.
const (
	AlertSuspiciousIP           = "suspicious_ip_activity"
	AlertSuspiciousUser         = "suspicious_user_activity"
	AlertSuspiciousRegistration = "suspicious_registration_activity"
)

// VerifyResult is the outcome of [Guard.VerifyCode].
type VerifyResult struct {
	Valid  bool
	Reason string
	// AttemptsRemaining is how many more wrong codes the live code tolerates
	// before it is discarded. Zero when no code remains.
	AttemptsRemaining int
}

// Alert is an immutable record of a detected abuse pattern.
type Alert struct {
	ID         string    `json:"id"`
	Kind       string    `json:"kind"`
	Subject    string    `json:"subject"`
	Message    string    `json:"message"`
	Count      int       `json:"count"`
	OccurredAt time.Time `json:"occurred_at"`
}

// AlertFunc is notified of every raised alert. It runs on the goroutine that
// recorded the triggering attempt; a panic is recovered and logged.
type AlertFunc func(Alert)

// SecurityMetrics is the operator view of live security state. Expired
// entries are swept before counting.
type SecurityMetrics struct {
	SuspiciousIPs        int    `json:"suspicious_ips"`
	LockedUsers          int    `json:"locked_users"`
	RegistrationTrackers int    `json:"registration_trackers"`
	RecentAlerts         int    `json:"recent_security_events"`
	AlertsOverwritten    uint64 `json:"alerts_overwritten"`
	RevokedTokens        int    `json:"revoked_tokens"`
	ActiveCodes          int    `json:"active_codes"`
	RateLimitBuckets     int    `json:"rate_limit_buckets"`
	AuditDropped         uint64 `json:"audit_dropped"`
}

// CleanupResult reports how many expired entries one [Guard.Cleanup] removed.
type CleanupResult struct {
	RateLimitBuckets int           `json:"rate_limit_buckets"`
	MonitorEntries   int           `json:"monitor_entries"`
	RevokedTokens    int           `json:"revoked_tokens"`
	Codes            int           `json:"codes"`
	Duration         time.Duration `json:"duration"`
}

// Total returns the number of entries removed across all stores.
func (r CleanupResult) Total() int {
	return r.RateLimitBuckets + r.MonitorEntries + r.RevokedTokens + r.Codes
}
