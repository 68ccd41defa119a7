package prometheus

import (
	"io"
	"net/http/httptest"
	"strings"
	"testing"

	goGuard "github.com/MrEthical07/goGuard"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

type fakeSource struct {
	snapshot goGuard.MetricsSnapshot
	dropped  uint64
}

func (f fakeSource) MetricsSnapshot() goGuard.MetricsSnapshot { return f.snapshot }
func (f fakeSource) AuditDropped() uint64                     { return f.dropped }

type gaugeFakeSource struct {
	fakeSource
	sm goGuard.SecurityMetrics
}

func (g gaugeFakeSource) SecurityMetrics() goGuard.SecurityMetrics { return g.sm }

func TestCollectorCountersAndHistogram(t *testing.T) {
	c := NewCollectorFromSource(fakeSource{
		snapshot: goGuard.MetricsSnapshot{
			Counters: map[goGuard.MetricID]uint64{
				goGuard.MetricLoginFailure:       7,
				goGuard.MetricRequestRateLimited: 2,
			},
			Histograms: map[goGuard.MetricID][]uint64{
				goGuard.MetricSweepLatency: {1, 2, 3, 4, 5, 6, 7, 8},
			},
		},
		dropped: 2,
	})

	reg := prometheus.NewRegistry()
	reg.MustRegister(c)

	expected := `
# HELP goguard_login_failure_total Recorded failed logins.
# TYPE goguard_login_failure_total counter
goguard_login_failure_total 7
# HELP goguard_audit_dropped_total Audit events dropped due to dispatcher backpressure.
# TYPE goguard_audit_dropped_total counter
goguard_audit_dropped_total 2
`
	if err := testutil.GatherAndCompare(reg, strings.NewReader(expected),
		"goguard_login_failure_total", "goguard_audit_dropped_total"); err != nil {
		t.Fatal(err)
	}

	srv := httptest.NewServer(Handler(NewCollectorFromSource(c.source)))
	defer srv.Close()
	resp, err := srv.Client().Get(srv.URL)
	if err != nil {
		t.Fatalf("GET: %v", err)
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	out := string(body)
	if !strings.Contains(out, `goguard_sweep_latency_seconds_bucket{le="0.005"} 1`) {
		t.Fatalf("missing first bucket:\n%s", out)
	}
	if !strings.Contains(out, `goguard_sweep_latency_seconds_bucket{le="+Inf"} 36`) {
		t.Fatalf("missing +Inf bucket:\n%s", out)
	}
	if strings.Contains(out, "goguard_active_codes") {
		t.Fatal("gauges must not be exported for sources without SecurityMetrics")
	}
}

func TestCollectorGauges(t *testing.T) {
	c := NewCollectorFromSource(gaugeFakeSource{
		fakeSource: fakeSource{snapshot: goGuard.MetricsSnapshot{}},
		sm:         goGuard.SecurityMetrics{ActiveCodes: 4, RevokedTokens: 9},
	})
	if got := testutil.CollectAndCount(c, "goguard_active_codes", "goguard_revoked_tokens"); got != 2 {
		t.Fatalf("expected 2 gauge series, got %d", got)
	}
	expected := `
# HELP goguard_revoked_tokens Live revocation entries.
# TYPE goguard_revoked_tokens gauge
goguard_revoked_tokens 9
`
	if err := testutil.CollectAndCompare(c, strings.NewReader(expected), "goguard_revoked_tokens"); err != nil {
		t.Fatal(err)
	}
}

func TestCollectorOverGuard(t *testing.T) {
	g, err := goGuard.New().Build()
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	defer g.Close()
	g.RecordFailedLogin("203.0.113.9", "alice")

	expected := `
# HELP goguard_login_failure_total Recorded failed logins.
# TYPE goguard_login_failure_total counter
goguard_login_failure_total 1
# HELP goguard_locked_users Usernames with live failed login entries.
# TYPE goguard_locked_users gauge
goguard_locked_users 1
`
	if err := testutil.CollectAndCompare(NewCollector(g), strings.NewReader(expected),
		"goguard_login_failure_total", "goguard_locked_users"); err != nil {
		t.Fatal(err)
	}
}
