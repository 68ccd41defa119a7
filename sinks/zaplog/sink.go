// Package zaplog renders goGuard audit events as zap log entries.
package zaplog

import (
	"context"

	goGuard "github.com/MrEthical07/goGuard"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Sink writes audit events as structured log lines. Alerts and failed
// outcomes log at Warn, everything else at Info.
type Sink struct {
	logger *zap.Logger
}

func New(logger *zap.Logger) *Sink {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Sink{logger: logger.Named("audit")}
}

func (s *Sink) Emit(_ context.Context, event goGuard.AuditEvent) {
	level := zapcore.InfoLevel
	if !event.Success || event.EventType == goGuard.AuditSecurityAlert {
		level = zapcore.WarnLevel
	}
	ce := s.logger.Check(level, event.EventType)
	if ce == nil {
		return
	}

	fields := make([]zap.Field, 0, 8+len(event.Metadata))
	fields = append(fields,
		zap.String("event_id", event.ID),
		zap.Time("occurred_at", event.Timestamp),
		zap.Bool("success", event.Success),
	)
	if event.Subject != "" {
		fields = append(fields, zap.String("subject", event.Subject))
	}
	if event.IP != "" {
		fields = append(fields, zap.String("ip", event.IP))
	}
	if event.Reason != "" {
		fields = append(fields, zap.String("reason", event.Reason))
	}
	if event.Count > 0 {
		fields = append(fields, zap.Int("count", event.Count))
	}
	for k, v := range event.Metadata {
		fields = append(fields, zap.String("meta."+k, v))
	}
	ce.Write(fields...)
}
