package zaplog

import (
	"context"
	"testing"

	goGuard "github.com/MrEthical07/goGuard"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestEmitLevelsAndFields(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	s := New(zap.New(core))
	ctx := context.Background()

	s.Emit(ctx, goGuard.AuditEvent{
		EventType: goGuard.AuditSecurityAlert,
		Success:   true,
		Subject:   "203.0.113.1",
		Count:     10,
		Metadata:  map[string]string{"kind": "suspicious_ip_activity"},
	})
	s.Emit(ctx, goGuard.AuditEvent{EventType: goGuard.AuditCodeVerified, Success: true, Subject: "alice"})
	s.Emit(ctx, goGuard.AuditEvent{EventType: goGuard.AuditCodeRejected, Reason: "invalid code"})

	entries := logs.All()
	if len(entries) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(entries))
	}
	if entries[0].Level != zapcore.WarnLevel || entries[0].Message != goGuard.AuditSecurityAlert {
		t.Fatalf("alert entry: %+v", entries[0])
	}
	ctxMap := entries[0].ContextMap()
	if ctxMap["subject"] != "203.0.113.1" || ctxMap["count"] != int64(10) || ctxMap["meta.kind"] != "suspicious_ip_activity" {
		t.Fatalf("alert fields: %v", ctxMap)
	}
	if entries[1].Level != zapcore.InfoLevel {
		t.Fatalf("verified level = %s", entries[1].Level)
	}
	if entries[2].Level != zapcore.WarnLevel || entries[2].ContextMap()["reason"] != "invalid code" {
		t.Fatalf("rejected entry: %+v", entries[2])
	}
}

func TestEmitRespectsLevel(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	s := New(zap.New(core))
	s.Emit(context.Background(), goGuard.AuditEvent{EventType: goGuard.AuditCodeGenerated, Success: true})
	if logs.Len() != 0 {
		t.Fatal("info event logged below configured level")
	}
}
