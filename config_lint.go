package goGuard

import (
	"fmt"
	"time"
)

// LintSeverity ranks advisory findings from [Config.Lint].
type LintSeverity int

const (
	LintInfo LintSeverity = iota
	LintWarn
	LintHigh
)

func (s LintSeverity) String() string {
	switch s {
	case LintInfo:
		return "INFO"
	case LintWarn:
		return "WARN"
	case LintHigh:
		return "HIGH"
	default:
		return fmt.Sprintf("LintSeverity(%d)", int(s))
	}
}

// LintWarning is one advisory finding. Code is stable and safe to match on.
type LintWarning struct {
	Code     string
	Severity LintSeverity
	Message  string
}

// LintResult is the ordered list of findings.
type LintResult []LintWarning

// Codes returns the finding codes in order.
func (r LintResult) Codes() []string {
	out := make([]string, 0, len(r))
	for _, w := range r {
		out = append(out, w.Code)
	}
	return out
}

// BySeverity returns findings at or above min.
func (r LintResult) BySeverity(min LintSeverity) LintResult {
	var out LintResult
	for _, w := range r {
		if w.Severity >= min {
			out = append(out, w)
		}
	}
	return out
}

// Lint reports legal but questionable settings. Unlike [Config.Validate] it
// never fails; a Guard builds fine with any of these.
func (c Config) Lint() LintResult {
	var ws LintResult
	add := func(code string, sev LintSeverity, format string, args ...any) {
		ws = append(ws, LintWarning{Code: code, Severity: sev, Message: fmt.Sprintf(format, args...)})
	}

	if !c.RateLimit.Enabled {
		add("rate_limits_disabled", LintHigh, "request admission is disabled; every request is allowed")
	} else {
		if len(c.RateLimit.AuthPathPrefixes) == 0 {
			add("auth_prefixes_default", LintInfo, "no auth path prefixes configured; /api/auth/ is used")
		}
		if authPerSecond(c) > generalPerSecond(c) {
			add("auth_looser_than_general", LintWarn,
				"auth bucket refills faster than the general bucket (%.3f/s > %.3f/s)",
				authPerSecond(c), generalPerSecond(c))
		}
	}

	if c.Monitor.Window > 0 && c.Monitor.Window < time.Minute {
		add("monitor_window_short", LintWarn,
			"monitor window %s forgets failed logins quickly; brute force can pace under it", c.Monitor.Window)
	}
	if c.Monitor.MaxFailedLoginsPerUser > c.Monitor.MaxFailedLoginsPerIP {
		add("user_threshold_above_ip", LintInfo,
			"per-user threshold %d is above per-IP threshold %d",
			c.Monitor.MaxFailedLoginsPerUser, c.Monitor.MaxFailedLoginsPerIP)
	}
	if c.Monitor.DeduplicateAlerts {
		add("alerts_deduplicated", LintInfo, "alerts fire once per threshold crossing, not per attempt")
	}

	if c.OneTimeCode.TTL > 15*time.Minute {
		add("code_ttl_long", LintWarn, "one-time codes live %s; consider 5 minutes or less", c.OneTimeCode.TTL)
	}
	if c.OneTimeCode.Digits > 0 && c.OneTimeCode.Digits < 6 {
		add("code_digits_short", LintHigh, "%d digit codes are easy to guess", c.OneTimeCode.Digits)
	}
	if c.OneTimeCode.MaxAttempts > 5 {
		add("code_attempts_high", LintWarn, "%d attempts per code widens the guessing budget", c.OneTimeCode.MaxAttempts)
	}

	if !c.Audit.Enabled {
		add("audit_disabled", LintWarn, "audit events are not dispatched")
	} else if !c.Audit.DropIfFull {
		add("audit_blocking", LintInfo, "a full audit buffer delays callers up to %s before the event is dropped", c.Audit.EmitTimeout)
	}

	return ws
}

func generalPerSecond(c Config) float64 {
	if c.RateLimit.GeneralPeriod <= 0 {
		return 0
	}
	return float64(c.RateLimit.GeneralCapacity) / c.RateLimit.GeneralPeriod.Seconds()
}

func authPerSecond(c Config) float64 {
	if c.RateLimit.AuthPeriod <= 0 {
		return 0
	}
	return float64(c.RateLimit.AuthCapacity) / c.RateLimit.AuthPeriod.Seconds()
}
