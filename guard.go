package goGuard

import (
	"strconv"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/MrEthical07/goGuard/internal/audit"
	"github.com/MrEthical07/goGuard/internal/monitor"
	"github.com/MrEthical07/goGuard/internal/rate"
	"github.com/MrEthical07/goGuard/internal/stores"
)

// Guard is the single entry point for admission, abuse tracking, token
// revocation and one-time codes. All methods are safe for concurrent use.
// Build one with [New] and [Builder.Build].
type Guard struct {
	config Config
	logger *zap.Logger
	now    func() time.Time

	limiter     *rate.Limiter
	monitor     *monitor.Monitor
	revocations *stores.Revocations
	codes       *stores.Codes

	audit     *audit.Dispatcher
	metrics   *Metrics
	alertHook AlertFunc

	closed atomic.Bool
}

// Config returns a copy of the effective configuration.
func (g *Guard) Config() Config {
	return cloneConfig(g.config)
}

// Cleanup evicts every expired entry from every store. It is idempotent and
// never removes live state. Hosts should call it periodically.
func (g *Guard) Cleanup() CleanupResult {
	start := time.Now()

	res := CleanupResult{
		RateLimitBuckets: g.limiter.Sweep(),
		MonitorEntries:   g.monitor.Sweep(),
		RevokedTokens:    g.revocations.Sweep(),
		Codes:            g.codes.Sweep(),
	}
	res.Duration = time.Since(start)

	g.metricInc(MetricCleanupRun)
	g.metrics.Add(MetricCleanupEvicted, uint64(res.Total()))
	g.metrics.Observe(MetricSweepLatency, res.Duration)

	g.logger.Debug("cleanup completed",
		zap.Int("rate_limit_buckets", res.RateLimitBuckets),
		zap.Int("monitor_entries", res.MonitorEntries),
		zap.Int("revoked_tokens", res.RevokedTokens),
		zap.Int("codes", res.Codes),
		zap.Duration("duration", res.Duration),
	)
	g.emitAudit(AuditCleanup, true, "", "", "", func() map[string]string {
		return map[string]string{"evicted": strconv.Itoa(res.Total())}
	})

	return res
}

// SecurityMetrics sweeps expired state and reports live sizes.
func (g *Guard) SecurityMetrics() SecurityMetrics {
	m := g.monitor.Metrics()
	g.limiter.Sweep()
	return SecurityMetrics{
		SuspiciousIPs:        m.SuspiciousIPs,
		LockedUsers:          m.LockedUsers,
		RegistrationTrackers: m.RegistrationTrackers,
		RecentAlerts:         m.RecentAlerts,
		AlertsOverwritten:    m.AlertsOverwritten,
		RevokedTokens:        g.revocations.Size(),
		ActiveCodes:          g.codes.Active(),
		RateLimitBuckets:     g.limiter.Len(),
		AuditDropped:         g.AuditDropped(),
	}
}

// Close flushes pending audit events and stops the dispatcher. Guard
// decisions keep working after Close; only auditing stops.
func (g *Guard) Close() {
	if g == nil || !g.closed.CompareAndSwap(false, true) {
		return
	}
	g.audit.Close()
	_ = g.logger.Sync()
}
