package security

import "time"

type BucketReport struct {
	Capacity      int
	Period        time.Duration
	RatePerSecond float64
}

type Report struct {
	RateLimitingActive     bool
	General                BucketReport
	Auth                   BucketReport
	AuthPathPrefixes       []string
	MaxFailedLoginsPerIP   int
	MaxFailedLoginsPerUser int
	MaxRegistrationsPerIP  int
	MonitorWindow          time.Duration
	DeduplicatedAlerts     bool
	AlertCapacity          int
	CodeDigits             int
	CodeTTL                time.Duration
	CodeMaxAttempts        int
	AuditActive            bool
	AuditLossy             bool
	AuditMaxWait           time.Duration
	MetricsActive          bool
}

type ReportInput struct {
	RateLimitEnabled       bool
	GeneralCapacity        int
	GeneralPeriod          time.Duration
	AuthCapacity           int
	AuthPeriod             time.Duration
	AuthPathPrefixes       []string
	MaxFailedLoginsPerIP   int
	MaxFailedLoginsPerUser int
	MaxRegistrationsPerIP  int
	MonitorWindow          time.Duration
	DeduplicateAlerts      bool
	AlertCapacity          int
	CodeDigits             int
	CodeTTL                time.Duration
	CodeMaxAttempts        int
	AuditEnabled           bool
	AuditDropIfFull        bool
	AuditEmitTimeout       time.Duration
	MetricsEnabled         bool
}

func BuildReport(input ReportInput) Report {
	limiting := input.RateLimitEnabled &&
		(input.GeneralCapacity > 0 || input.AuthCapacity > 0)

	var auditWait time.Duration
	if input.AuditEnabled && !input.AuditDropIfFull {
		auditWait = input.AuditEmitTimeout
	}

	prefixes := make([]string, len(input.AuthPathPrefixes))
	copy(prefixes, input.AuthPathPrefixes)

	return Report{
		RateLimitingActive:     limiting,
		General:                bucketReport(input.GeneralCapacity, input.GeneralPeriod),
		Auth:                   bucketReport(input.AuthCapacity, input.AuthPeriod),
		AuthPathPrefixes:       prefixes,
		MaxFailedLoginsPerIP:   input.MaxFailedLoginsPerIP,
		MaxFailedLoginsPerUser: input.MaxFailedLoginsPerUser,
		MaxRegistrationsPerIP:  input.MaxRegistrationsPerIP,
		MonitorWindow:          input.MonitorWindow,
		DeduplicatedAlerts:     input.DeduplicateAlerts,
		AlertCapacity:          input.AlertCapacity,
		CodeDigits:             input.CodeDigits,
		CodeTTL:                input.CodeTTL,
		CodeMaxAttempts:        input.CodeMaxAttempts,
		AuditActive:            input.AuditEnabled,
		AuditLossy:             input.AuditEnabled,
		AuditMaxWait:           auditWait,
		MetricsActive:          input.MetricsEnabled,
	}
}

func bucketReport(capacity int, period time.Duration) BucketReport {
	r := BucketReport{Capacity: capacity, Period: period}
	if capacity > 0 && period > 0 {
		r.RatePerSecond = float64(capacity) / period.Seconds()
	}
	return r
}
