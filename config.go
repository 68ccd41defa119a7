package goGuard

import (
	"fmt"
	"strings"
	"time"
)

// Config defines the full policy of a [Guard].
//
// Config instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Config struct {
	RateLimit   RateLimitConfig
	Monitor     MonitorConfig
	Revocation  RevocationConfig
	OneTimeCode OneTimeCodeConfig
	Audit       AuditConfig
	Metrics     MetricsConfig
}

/*
====================================
RATE LIMIT CONFIG
====================================
*/

// RateLimitConfig configures request admission. Each client identity gets a
// general bucket and a stricter auth bucket; a request draws from the auth
// bucket when its path starts with one of AuthPathPrefixes.
type RateLimitConfig struct {
	Enabled          bool
	GeneralCapacity  int
	GeneralPeriod    time.Duration
	AuthCapacity     int
	AuthPeriod       time.Duration
	AuthPathPrefixes []string
	Shards           int
}

/*
====================================
MONITOR CONFIG
====================================
*/

// MonitorConfig configures failed-login and registration tracking.
type MonitorConfig struct {
	MaxFailedLoginsPerIP   int
	MaxFailedLoginsPerUser int
	MaxRegistrationsPerIP  int
	Window                 time.Duration
	// DeduplicateAlerts raises one alert per threshold crossing instead of
	// one per attempt at or above the threshold.
	DeduplicateAlerts bool
	AlertCapacity     int
	Shards            int
}

/*
====================================
REVOCATION CONFIG
====================================
*/

// RevocationConfig configures the revoked token store.
type RevocationConfig struct {
	Shards int
}

/*
====================================
ONE-TIME CODE CONFIG
====================================
*/

// OneTimeCodeConfig configures 2FA challenge codes.
type OneTimeCodeConfig struct {
	Digits      int
	TTL         time.Duration
	MaxAttempts int
	Shards      int
}

// AuditConfig controls the async audit dispatcher.
type AuditConfig struct {
	Enabled    bool
	BufferSize int
	DropIfFull bool
	// EmitTimeout bounds how long a Guard call waits for buffer room when
	// DropIfFull is false. The event is dropped and counted once it lapses.
	EmitTimeout time.Duration
}

// MetricsConfig controls in-process counters.
type MetricsConfig struct {
	Enabled                 bool
	EnableLatencyHistograms bool
}

// DefaultConfig returns the stock policy: 60 requests per minute in general
// and 5 per minute on auth paths, alerts at 10 failed logins per IP, 5 per
// user and 3 registrations per IP within 15 minutes, and 6 digit codes
// valid for 5 minutes with 3 attempts.
func DefaultConfig() Config {
	return Config{
		RateLimit: RateLimitConfig{
			Enabled:          true,
			GeneralCapacity:  60,
			GeneralPeriod:    time.Minute,
			AuthCapacity:     5,
			AuthPeriod:       time.Minute,
			AuthPathPrefixes: []string{"/api/auth/"},
			Shards:           32,
		},
		Monitor: MonitorConfig{
			MaxFailedLoginsPerIP:   10,
			MaxFailedLoginsPerUser: 5,
			MaxRegistrationsPerIP:  3,
			Window:                 15 * time.Minute,
			AlertCapacity:          1024,
			Shards:                 32,
		},
		Revocation: RevocationConfig{
			Shards: 32,
		},
		OneTimeCode: OneTimeCodeConfig{
			Digits:      6,
			TTL:         5 * time.Minute,
			MaxAttempts: 3,
			Shards:      32,
		},
		Audit: AuditConfig{
			Enabled:     true,
			BufferSize:  1024,
			DropIfFull:  true,
			EmitTimeout: 20 * time.Millisecond,
		},
		Metrics: MetricsConfig{
			Enabled:                 true,
			EnableLatencyHistograms: false,
		},
	}
}

func cloneConfig(cfg Config) Config {
	out := cfg
	if cfg.RateLimit.AuthPathPrefixes != nil {
		out.RateLimit.AuthPathPrefixes = append([]string(nil), cfg.RateLimit.AuthPathPrefixes...)
	}
	return out
}

// Validate checks c for values a Guard cannot run with. Every failure wraps
// [ErrInvalidConfig].
func (c *Config) Validate() error {
	// Rate limit
	if c.RateLimit.Enabled {
		if c.RateLimit.GeneralCapacity <= 0 {
			return invalidConfig("RateLimit GeneralCapacity must be > 0")
		}
		if c.RateLimit.GeneralPeriod <= 0 {
			return invalidConfig("RateLimit GeneralPeriod must be > 0")
		}
		if c.RateLimit.AuthCapacity <= 0 {
			return invalidConfig("RateLimit AuthCapacity must be > 0")
		}
		if c.RateLimit.AuthPeriod <= 0 {
			return invalidConfig("RateLimit AuthPeriod must be > 0")
		}
		for _, p := range c.RateLimit.AuthPathPrefixes {
			if !strings.HasPrefix(p, "/") {
				return invalidConfig("RateLimit AuthPathPrefixes entries must start with '/'")
			}
		}
	}
	if err := validateShards("RateLimit", c.RateLimit.Shards); err != nil {
		return err
	}

	// Monitor
	if c.Monitor.MaxFailedLoginsPerIP <= 0 {
		return invalidConfig("Monitor MaxFailedLoginsPerIP must be > 0")
	}
	if c.Monitor.MaxFailedLoginsPerUser <= 0 {
		return invalidConfig("Monitor MaxFailedLoginsPerUser must be > 0")
	}
	if c.Monitor.MaxRegistrationsPerIP <= 0 {
		return invalidConfig("Monitor MaxRegistrationsPerIP must be > 0")
	}
	if c.Monitor.Window <= 0 {
		return invalidConfig("Monitor Window must be > 0")
	}
	if c.Monitor.AlertCapacity <= 0 {
		return invalidConfig("Monitor AlertCapacity must be > 0")
	}
	if err := validateShards("Monitor", c.Monitor.Shards); err != nil {
		return err
	}

	if err := validateShards("Revocation", c.Revocation.Shards); err != nil {
		return err
	}

	// One-time codes
	if c.OneTimeCode.Digits < 4 || c.OneTimeCode.Digits > 10 {
		return invalidConfig("OneTimeCode Digits must be between 4 and 10")
	}
	if c.OneTimeCode.TTL <= 0 {
		return invalidConfig("OneTimeCode TTL must be > 0")
	}
	if c.OneTimeCode.MaxAttempts <= 0 {
		return invalidConfig("OneTimeCode MaxAttempts must be > 0")
	}
	if err := validateShards("OneTimeCode", c.OneTimeCode.Shards); err != nil {
		return err
	}

	// Audit
	if c.Audit.Enabled && c.Audit.BufferSize <= 0 {
		return invalidConfig("Audit BufferSize must be > 0 when audit is enabled")
	}
	if c.Audit.Enabled && !c.Audit.DropIfFull {
		if c.Audit.EmitTimeout <= 0 || c.Audit.EmitTimeout > maxAuditEmitTimeout {
			return invalidConfig("Audit EmitTimeout must be in (0, 1s] when DropIfFull is false")
		}
	}

	if c.Metrics.EnableLatencyHistograms && !c.Metrics.Enabled {
		return invalidConfig("Metrics EnableLatencyHistograms requires Metrics Enabled")
	}

	return nil
}

const maxAuditEmitTimeout = time.Second

// validateShards accepts 0 (use the default) or a power of two.
func validateShards(section string, n int) error {
	if n == 0 {
		return nil
	}
	if n < 0 || n&(n-1) != 0 {
		return invalidConfig(section + " Shards must be 0 or a power of two")
	}
	return nil
}

func invalidConfig(msg string) error {
	return fmt.Errorf("%w: %s", ErrInvalidConfig, msg)
}
