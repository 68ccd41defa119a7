package goGuard

import (
	"time"

	"go.uber.org/zap"

	"github.com/MrEthical07/goGuard/internal/audit"
	"github.com/MrEthical07/goGuard/internal/monitor"
	"github.com/MrEthical07/goGuard/internal/rate"
	"github.com/MrEthical07/goGuard/internal/stores"
)

// Builder assembles a [Guard]. A Builder is single-use.
type Builder struct {
	config    Config
	logger    *zap.Logger
	auditSink AuditSink
	alertHook AlertFunc
	now       func() time.Time
	codeGen   func(digits int) (string, error)

	built bool
}

// New returns a Builder seeded with [DefaultConfig].
func New() *Builder {
	return &Builder{
		config: DefaultConfig(),
	}
}

func (b *Builder) WithConfig(cfg Config) *Builder {
	b.config = cloneConfig(cfg)
	return b
}

// WithLogger sets the structured logger. The default discards everything.
func (b *Builder) WithLogger(logger *zap.Logger) *Builder {
	b.logger = logger
	return b
}

func (b *Builder) WithAuditSink(sink AuditSink) *Builder {
	b.auditSink = sink
	return b
}

// WithAlertHook registers fn to receive every raised alert.
func (b *Builder) WithAlertHook(fn AlertFunc) *Builder {
	b.alertHook = fn
	return b
}

// WithClock replaces time.Now for every store. Intended for tests.
func (b *Builder) WithClock(now func() time.Time) *Builder {
	b.now = now
	return b
}

// WithCodeGenerator replaces the crypto/rand backed one-time code source.
func (b *Builder) WithCodeGenerator(gen func(digits int) (string, error)) *Builder {
	b.codeGen = gen
	return b
}

func (b *Builder) WithMetricsEnabled(enabled bool) *Builder {
	b.config.Metrics.Enabled = enabled
	return b
}

func (b *Builder) WithLatencyHistograms(enabled bool) *Builder {
	b.config.Metrics.EnableLatencyHistograms = enabled
	return b
}

// Build validates the configuration and wires every store.
func (b *Builder) Build() (*Guard, error) {
	if b.built {
		return nil, ErrBuilderUsed
	}

	cfg := cloneConfig(b.config)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	logger := b.logger
	if logger == nil {
		logger = zap.NewNop()
	}
	now := b.now
	if now == nil {
		now = time.Now
	}

	g := &Guard{
		config:    cfg,
		logger:    logger.Named("goguard"),
		now:       now,
		alertHook: b.alertHook,
		metrics:   NewMetrics(cfg.Metrics),
	}

	g.limiter = rate.New(rate.Config{
		General: rate.Bucket{Capacity: cfg.RateLimit.GeneralCapacity, Period: cfg.RateLimit.GeneralPeriod},
		Auth:    rate.Bucket{Capacity: cfg.RateLimit.AuthCapacity, Period: cfg.RateLimit.AuthPeriod},
		Shards:  cfg.RateLimit.Shards,
		Now:     now,
	})
	g.monitor = monitor.New(monitor.Config{
		MaxFailedLoginsPerIP:   cfg.Monitor.MaxFailedLoginsPerIP,
		MaxFailedLoginsPerUser: cfg.Monitor.MaxFailedLoginsPerUser,
		MaxRegistrationsPerIP:  cfg.Monitor.MaxRegistrationsPerIP,
		Window:                 cfg.Monitor.Window,
		AlertCapacity:          cfg.Monitor.AlertCapacity,
		DeduplicateAlerts:      cfg.Monitor.DeduplicateAlerts,
		Shards:                 cfg.Monitor.Shards,
		Now:                    now,
	}, g.handleAlert)
	g.revocations = stores.NewRevocations(stores.RevocationConfig{
		Shards: cfg.Revocation.Shards,
		Now:    now,
	})
	g.codes = stores.NewCodes(stores.CodesConfig{
		Digits:      cfg.OneTimeCode.Digits,
		TTL:         cfg.OneTimeCode.TTL,
		MaxAttempts: cfg.OneTimeCode.MaxAttempts,
		Shards:      cfg.OneTimeCode.Shards,
		Now:         now,
		Generate:    b.codeGen,
	})
	g.audit = audit.NewDispatcher(audit.Config{
		Enabled:    cfg.Audit.Enabled,
		BufferSize: cfg.Audit.BufferSize,
		DropIfFull: cfg.Audit.DropIfFull,
	}, b.auditSink)

	for _, w := range cfg.Lint().BySeverity(LintWarn) {
		g.logger.Warn("config lint", zap.String("code", w.Code), zap.String("severity", w.Severity.String()), zap.String("message", w.Message))
	}

	b.built = true

	return g, nil
}
