package monitor

import (
	"fmt"
	"time"

	"github.com/MrEthical07/goGuard/internal"
	"github.com/MrEthical07/goGuard/internal/limiters"
)

const (
	defaultMaxFailedLoginsPerIP   = 10
	defaultMaxFailedLoginsPerUser = 5
	defaultMaxRegistrationsPerIP  = 3
	defaultWindow                 = 15 * time.Minute
	defaultAlertCapacity          = 1024
)

// Config holds the abuse thresholds. Zero values use 10 failed logins per
// IP, 5 per username, 3 registrations per IP, all over 15 minutes.
type Config struct {
	MaxFailedLoginsPerIP   int
	MaxFailedLoginsPerUser int
	MaxRegistrationsPerIP  int
	Window                 time.Duration
	AlertCapacity          int
	// DeduplicateAlerts raises an alert only when a count first reaches its
	// threshold instead of on every attempt at or above it.
	DeduplicateAlerts bool
	Shards            int
	Now               func() time.Time
}

// AlertFunc receives raised alerts. It is called synchronously on the
// recording goroutine and must not block.
type AlertFunc func(Event)

// Metrics is a point-in-time view taken right after a full sweep.
type Metrics struct {
	SuspiciousIPs        int
	LockedUsers          int
	RegistrationTrackers int
	RecentAlerts         int
	AlertsOverwritten    uint64
}

// Monitor tracks failed logins per IP and per username, and registrations
// per IP, raising alerts when thresholds are reached.
type Monitor struct {
	cfg           Config
	ipFailures    *limiters.Window
	userFailures  *limiters.Window
	registrations *limiters.Window
	events        *eventLog
	onAlert       AlertFunc
	now           func() time.Time
}

// New creates a [Monitor]. onAlert may be nil.
func New(cfg Config, onAlert AlertFunc) *Monitor {
	if cfg.MaxFailedLoginsPerIP <= 0 {
		cfg.MaxFailedLoginsPerIP = defaultMaxFailedLoginsPerIP
	}
	if cfg.MaxFailedLoginsPerUser <= 0 {
		cfg.MaxFailedLoginsPerUser = defaultMaxFailedLoginsPerUser
	}
	if cfg.MaxRegistrationsPerIP <= 0 {
		cfg.MaxRegistrationsPerIP = defaultMaxRegistrationsPerIP
	}
	if cfg.Window <= 0 {
		cfg.Window = defaultWindow
	}
	if cfg.AlertCapacity <= 0 {
		cfg.AlertCapacity = defaultAlertCapacity
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}

	windowCfg := limiters.WindowConfig{Window: cfg.Window, Shards: cfg.Shards, Now: cfg.Now}
	return &Monitor{
		cfg:           cfg,
		ipFailures:    limiters.NewWindow(windowCfg),
		userFailures:  limiters.NewWindow(windowCfg),
		registrations: limiters.NewWindow(windowCfg),
		events:        newEventLog(cfg.AlertCapacity, cfg.Window),
		onAlert:       onAlert,
		now:           cfg.Now,
	}
}

// RecordFailedLogin counts a failed login against ip and, when non-empty,
// username.
func (m *Monitor) RecordFailedLogin(ip, username string) {
	count := m.ipFailures.Record(ip)
	if m.shouldAlert(count, m.cfg.MaxFailedLoginsPerIP) {
		m.raise(KindSuspiciousIP, ip, count,
			fmt.Sprintf("IP %s exceeded maximum failed login attempts: %d", ip, count))
	}

	if username == "" {
		return
	}
	count = m.userFailures.Record(username)
	if m.shouldAlert(count, m.cfg.MaxFailedLoginsPerUser) {
		m.raise(KindSuspiciousUser, username, count,
			fmt.Sprintf("User %s exceeded maximum failed login attempts: %d", username, count))
	}
}

// RecordSuccessfulLogin forgives all recorded failures for ip and username.
func (m *Monitor) RecordSuccessfulLogin(ip, username string) {
	m.ipFailures.Clear(ip)
	m.userFailures.Clear(username)
}

// RecordRegistrationAttempt counts a registration attempt from ip and
// reports whether it is still within budget. Attempts over budget are still
// counted.
func (m *Monitor) RecordRegistrationAttempt(ip string) bool {
	count := m.registrations.Record(ip)
	if m.shouldAlert(count, m.cfg.MaxRegistrationsPerIP) {
		m.raise(KindSuspiciousRegistration, ip, count,
			fmt.Sprintf("IP %s exceeded maximum registration attempts: %d", ip, count))
	}
	return count < m.cfg.MaxRegistrationsPerIP
}

// IsSuspiciousIP reports whether ip has reached the failed-login threshold.
func (m *Monitor) IsSuspiciousIP(ip string) bool {
	return m.ipFailures.Over(ip, m.cfg.MaxFailedLoginsPerIP)
}

// IsUserLocked reports whether username has reached the failed-login threshold.
func (m *Monitor) IsUserLocked(username string) bool {
	return m.userFailures.Over(username, m.cfg.MaxFailedLoginsPerUser)
}

// FailedLogins returns the live failure counts for ip and username.
func (m *Monitor) FailedLogins(ip, username string) (byIP, byUser int) {
	return m.ipFailures.Count(ip), m.userFailures.Count(username)
}

// Sweep evicts expired window entries and alerts, returning the number of
// entries removed.
func (m *Monitor) Sweep() int {
	removed := m.ipFailures.Sweep()
	removed += m.userFailures.Sweep()
	removed += m.registrations.Sweep()
	removed += m.events.prune(m.now())
	return removed
}

// Metrics sweeps and reports live sizes.
func (m *Monitor) Metrics() Metrics {
	m.Sweep()
	return Metrics{
		SuspiciousIPs:        m.ipFailures.Len(),
		LockedUsers:          m.userFailures.Len(),
		RegistrationTrackers: m.registrations.Len(),
		RecentAlerts:         m.events.len(),
		AlertsOverwritten:    m.events.dropped(),
	}
}

// RecentAlerts returns up to limit live alerts, newest first.
func (m *Monitor) RecentAlerts(limit int) []Event {
	return m.events.recent(m.now(), limit)
}

// Config returns the effective configuration.
func (m *Monitor) Config() Config {
	return m.cfg
}

func (m *Monitor) shouldAlert(count, threshold int) bool {
	if m.cfg.DeduplicateAlerts {
		return count == threshold
	}
	return count >= threshold
}

func (m *Monitor) raise(kind Kind, subject string, count int, message string) {
	event := Event{
		ID:         internal.NewID(),
		Kind:       kind,
		Subject:    subject,
		Message:    message,
		Count:      count,
		OccurredAt: m.now(),
	}
	m.events.add(event)
	if m.onAlert != nil {
		m.onAlert(event)
	}
}
