package goGuard

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"sync"
	"testing"
	"time"
)

type gateSink struct {
	gate chan struct{}
}

func newGateSink() *gateSink {
	return &gateSink{gate: make(chan struct{})}
}

func (s *gateSink) Emit(context.Context, AuditEvent) {
	<-s.gate
}

type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func auditConfig() Config {
	cfg := testConfig()
	cfg.Audit = AuditConfig{Enabled: true, BufferSize: 16, DropIfFull: true}
	return cfg
}

func nextEvent(t *testing.T, sink *ChannelSink) AuditEvent {
	t.Helper()
	select {
	case e := <-sink.Events():
		return e
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for audit event")
		return AuditEvent{}
	}
}

func TestAuditRevocationEvent(t *testing.T) {
	clock := newFakeClock()
	sink := NewChannelSink(16)
	g := buildTestGuard(t, auditConfig(), clock, func(b *Builder) { b.WithAuditSink(sink) })

	g.Revoke("jti-7", clock.Now().Add(time.Minute))

	e := nextEvent(t, sink)
	if e.EventType != AuditTokenRevoked || e.Subject != "jti-7" || !e.Success {
		t.Fatalf("unexpected event %+v", e)
	}
	if e.Metadata["expires_at"] == "" {
		t.Fatal("expected expires_at metadata")
	}
}

func TestAuditAlertEvent(t *testing.T) {
	cfg := auditConfig()
	cfg.Monitor.MaxFailedLoginsPerIP = 1
	sink := NewChannelSink(16)
	g := buildTestGuard(t, cfg, newFakeClock(), func(b *Builder) { b.WithAuditSink(sink) })

	g.RecordFailedLogin("10.0.0.4", "")

	alert := nextEvent(t, sink)
	if alert.EventType != AuditSecurityAlert || alert.IP != "10.0.0.4" || alert.Reason != AlertSuspiciousIP {
		t.Fatalf("unexpected alert event %+v", alert)
	}
	if alert.ID == "" || alert.Count != 1 {
		t.Fatalf("alert event should carry id and count: %+v", alert)
	}

	failed := nextEvent(t, sink)
	if failed.EventType != AuditLoginFailed || failed.Success {
		t.Fatalf("unexpected login event %+v", failed)
	}
}

func TestAuditDropIfFull(t *testing.T) {
	cfg := auditConfig()
	cfg.Audit.BufferSize = 1
	sink := newGateSink()
	clock := newFakeClock()

	g, err := New().WithConfig(cfg).WithClock(clock.Now).WithAuditSink(sink).Build()
	if err != nil {
		t.Fatal(err)
	}

	for i := 0; i < 10; i++ {
		g.Revoke("jti", clock.Now().Add(time.Minute))
	}
	if got := g.AuditDropped(); got < 8 {
		t.Fatalf("expected at least 8 drops, got %d", got)
	}
	if got := g.SecurityMetrics().AuditDropped; got < 8 {
		t.Fatalf("security metrics should surface drops, got %d", got)
	}

	close(sink.gate)
	g.Close()
}

func TestAuditStalledSinkDoesNotBlockGuard(t *testing.T) {
	cfg := auditConfig()
	cfg.Audit.BufferSize = 1
	cfg.Audit.DropIfFull = false
	cfg.Audit.EmitTimeout = 5 * time.Millisecond
	sink := newGateSink()

	g, err := New().WithConfig(cfg).WithAuditSink(sink).Build()
	if err != nil {
		t.Fatal(err)
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < 5; i++ {
			g.RecordFailedLogin("10.0.0.9", "mallory")
		}
		g.Revoke("jti", time.Now().Add(time.Minute))
		g.IsRevoked("jti")
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("guard calls blocked behind a stalled audit sink")
	}
	if g.AuditDropped() == 0 {
		t.Fatal("events that timed out waiting for room should be counted as dropped")
	}

	close(sink.gate)
	g.Close()
}

func TestAuditDisabledEmitsNothing(t *testing.T) {
	sink := NewChannelSink(4)
	g := buildTestGuard(t, testConfig(), newFakeClock(), func(b *Builder) { b.WithAuditSink(sink) })

	g.Revoke("jti", time.Now().Add(time.Minute))
	g.Close()

	select {
	case e := <-sink.Events():
		t.Fatalf("unexpected event %+v", e)
	default:
	}
}

func TestAuditJSONWriterSinkFlushedOnClose(t *testing.T) {
	var buf syncBuffer
	cfg := auditConfig()
	cfg.Audit.DropIfFull = false

	g, err := New().WithConfig(cfg).WithAuditSink(NewJSONWriterSink(&buf)).Build()
	if err != nil {
		t.Fatal(err)
	}
	g.RecordRegistrationAttempt("10.0.0.8")
	g.RecordRegistrationAttempt("10.0.0.8")
	g.RecordRegistrationAttempt("10.0.0.8")
	g.Cleanup()
	g.Close()

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	var types []string
	for _, line := range lines {
		var e AuditEvent
		if err := json.Unmarshal([]byte(line), &e); err != nil {
			t.Fatalf("bad line %q: %v", line, err)
		}
		types = append(types, e.EventType)
	}
	want := []string{AuditSecurityAlert, AuditRegistrationBlocked, AuditCleanup}
	if strings.Join(types, ",") != strings.Join(want, ",") {
		t.Fatalf("expected %v, got %v", want, types)
	}
}

func TestMultiSinkFansOut(t *testing.T) {
	a, b := NewChannelSink(1), NewChannelSink(1)
	MultiSink{a, nil, b}.Emit(context.Background(), AuditEvent{EventType: "x"})

	if (<-a.Events()).EventType != "x" || (<-b.Events()).EventType != "x" {
		t.Fatal("every sink should receive the event")
	}
}
