package internaldefs

import (
	goGuard "github.com/MrEthical07/goGuard"
)

// CounterDef maps a [goGuard.MetricID] to its exported name.
type CounterDef struct {
	ID   goGuard.MetricID
	Name string
	Help string
}

type HistogramDef struct {
	ID   goGuard.MetricID
	Name string
	Help string
}

// GaugeDef exports one live size from [goGuard.SecurityMetrics].
type GaugeDef struct {
	Name  string
	Help  string
	Value func(goGuard.SecurityMetrics) float64
}

var CounterDefs = []CounterDef{
	{ID: goGuard.MetricRequestAllowed, Name: "goguard_request_allowed_total", Help: "Requests admitted by the rate limiter."},
	{ID: goGuard.MetricRequestRateLimited, Name: "goguard_request_rate_limited_total", Help: "Requests denied by the general bucket."},
	{ID: goGuard.MetricAuthRequestRateLimited, Name: "goguard_auth_request_rate_limited_total", Help: "Requests denied by the auth bucket."},
	{ID: goGuard.MetricLoginFailure, Name: "goguard_login_failure_total", Help: "Recorded failed logins."},
	{ID: goGuard.MetricLoginSuccess, Name: "goguard_login_success_total", Help: "Recorded successful logins."},
	{ID: goGuard.MetricAlertRaised, Name: "goguard_alert_raised_total", Help: "Security alerts raised by the abuse monitor."},
	{ID: goGuard.MetricSuspiciousIPAlert, Name: "goguard_suspicious_ip_alert_total", Help: "Alerts for IPs over the failed login threshold."},
	{ID: goGuard.MetricSuspiciousUserAlert, Name: "goguard_suspicious_user_alert_total", Help: "Alerts for usernames over the failed login threshold."},
	{ID: goGuard.MetricSuspiciousRegistrationAlert, Name: "goguard_suspicious_registration_alert_total", Help: "Alerts for IPs over the registration threshold."},
	{ID: goGuard.MetricRegistrationAllowed, Name: "goguard_registration_allowed_total", Help: "Registration attempts within budget."},
	{ID: goGuard.MetricRegistrationBlocked, Name: "goguard_registration_blocked_total", Help: "Registration attempts over budget."},
	{ID: goGuard.MetricTokenRevoked, Name: "goguard_token_revoked_total", Help: "Tokens added to the revocation store."},
	{ID: goGuard.MetricRevokedTokenRejected, Name: "goguard_revoked_token_rejected_total", Help: "Revocation checks that found a live entry."},
	{ID: goGuard.MetricCodeGenerated, Name: "goguard_code_generated_total", Help: "One-time codes issued."},
	{ID: goGuard.MetricCodeVerified, Name: "goguard_code_verified_total", Help: "One-time codes verified successfully."},
	{ID: goGuard.MetricCodeInvalid, Name: "goguard_code_invalid_total", Help: "One-time code submissions that did not match."},
	{ID: goGuard.MetricCodeExpired, Name: "goguard_code_expired_total", Help: "One-time code submissions after expiry."},
	{ID: goGuard.MetricCodeAttemptsExceeded, Name: "goguard_code_attempts_exceeded_total", Help: "One-time code submissions after the attempt cap."},
	{ID: goGuard.MetricCodeMissing, Name: "goguard_code_missing_total", Help: "One-time code submissions with no active code."},
	{ID: goGuard.MetricCleanupRun, Name: "goguard_cleanup_run_total", Help: "Completed cleanup sweeps."},
	{ID: goGuard.MetricCleanupEvicted, Name: "goguard_cleanup_evicted_total", Help: "Entries evicted by cleanup sweeps."},
}

var HistogramDefs = []HistogramDef{
	{ID: goGuard.MetricSweepLatency, Name: "goguard_sweep_latency_seconds", Help: "Cleanup sweep latency."},
}

var GaugeDefs = []GaugeDef{
	{Name: "goguard_suspicious_ips", Help: "IPs with live failed login entries.", Value: func(m goGuard.SecurityMetrics) float64 { return float64(m.SuspiciousIPs) }},
	{Name: "goguard_locked_users", Help: "Usernames with live failed login entries.", Value: func(m goGuard.SecurityMetrics) float64 { return float64(m.LockedUsers) }},
	{Name: "goguard_registration_trackers", Help: "IPs with live registration entries.", Value: func(m goGuard.SecurityMetrics) float64 { return float64(m.RegistrationTrackers) }},
	{Name: "goguard_recent_security_events", Help: "Alerts retained in the event log.", Value: func(m goGuard.SecurityMetrics) float64 { return float64(m.RecentAlerts) }},
	{Name: "goguard_revoked_tokens", Help: "Live revocation entries.", Value: func(m goGuard.SecurityMetrics) float64 { return float64(m.RevokedTokens) }},
	{Name: "goguard_active_codes", Help: "Live one-time codes.", Value: func(m goGuard.SecurityMetrics) float64 { return float64(m.ActiveCodes) }},
	{Name: "goguard_rate_limit_buckets", Help: "Client identities holding token buckets.", Value: func(m goGuard.SecurityMetrics) float64 { return float64(m.RateLimitBuckets) }},
}

// AuditDroppedName is the counter for events lost to a full audit buffer.
const (
	AuditDroppedName = "goguard_audit_dropped_total"
	AuditDroppedHelp = "Audit events dropped due to dispatcher backpressure."
)

// HistogramUpperBounds are the finite bucket bounds in seconds; the eighth
// bucket is +Inf.
var HistogramUpperBounds = []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5}

var HistogramBoundSuffix = []string{
	"0_005",
	"0_01",
	"0_025",
	"0_05",
	"0_1",
	"0_25",
	"0_5",
	"inf",
}

// NormalizeBuckets copies raw into a fixed 8 bucket array, zero filling.
func NormalizeBuckets(raw []uint64) [8]uint64 {
	var out [8]uint64
	copy(out[:], raw)
	return out
}

// CumulativeBuckets turns per-bucket counts into running totals.
func CumulativeBuckets(raw [8]uint64) [8]uint64 {
	var out [8]uint64
	var running uint64
	for i, v := range raw {
		running += v
		out[i] = running
	}
	return out
}
