package security

import (
	"testing"
	"time"
)

func TestBuildReport(t *testing.T) {
	prefixes := []string{"/api/auth/"}
	r := BuildReport(ReportInput{
		RateLimitEnabled: true,
		GeneralCapacity:  60,
		GeneralPeriod:    time.Minute,
		AuthCapacity:     5,
		AuthPeriod:       time.Minute,
		AuthPathPrefixes: prefixes,
		AuditEnabled:     true,
		AuditDropIfFull:  true,
	})

	if !r.RateLimitingActive || r.General.RatePerSecond != 1 {
		t.Fatalf("unexpected general report %+v", r.General)
	}
	if !r.AuditLossy {
		t.Fatal("drop-if-full auditing is lossy")
	}
	if r.AuditMaxWait != 0 {
		t.Fatalf("drop-if-full auditing never waits, got %s", r.AuditMaxWait)
	}

	prefixes[0] = "/changed"
	if r.AuthPathPrefixes[0] != "/api/auth/" {
		t.Fatal("report must copy prefixes")
	}
}

func TestBuildReportInactive(t *testing.T) {
	r := BuildReport(ReportInput{RateLimitEnabled: true})
	if r.RateLimitingActive {
		t.Fatal("zero capacities mean no limiting")
	}
	if r.Auth.RatePerSecond != 0 {
		t.Fatal("zero period has no rate")
	}
	if r.AuditLossy {
		t.Fatal("disabled audit is not lossy")
	}
}

func TestBuildReportBoundedAuditWait(t *testing.T) {
	r := BuildReport(ReportInput{
		AuditEnabled:     true,
		AuditDropIfFull:  false,
		AuditEmitTimeout: 20 * time.Millisecond,
	})
	if !r.AuditLossy {
		t.Fatal("bounded waits still drop once the timeout lapses")
	}
	if r.AuditMaxWait != 20*time.Millisecond {
		t.Fatalf("expected 20ms max wait, got %s", r.AuditMaxWait)
	}
}
