package goGuard

import (
	"context"
)

func (g *Guard) emitAudit(
	eventType string,
	success bool,
	subject string,
	ip string,
	reason string,
	metadataBuilder func() map[string]string,
) {
	if g == nil || g.audit == nil {
		return
	}

	var metadata map[string]string
	if metadataBuilder != nil {
		metadata = metadataBuilder()
	}

	g.dispatch(AuditEvent{
		Timestamp: g.now().UTC(),
		EventType: eventType,
		Subject:   subject,
		IP:        ip,
		Success:   success,
		Reason:    reason,
		Metadata:  metadata,
	})
}

// dispatch hands event to the dispatcher without ever waiting longer than
// the configured emit timeout.
func (g *Guard) dispatch(event AuditEvent) {
	if g.config.Audit.DropIfFull {
		g.audit.Emit(context.Background(), event)
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), g.config.Audit.EmitTimeout)
	defer cancel()
	g.audit.Emit(ctx, event)
}

func (g *Guard) metricInc(id MetricID) {
	if g == nil || g.metrics == nil {
		return
	}
	g.metrics.Inc(id)
}

// MetricsSnapshot returns a copy of the in-process counters.
func (g *Guard) MetricsSnapshot() MetricsSnapshot {
	if g == nil {
		return MetricsSnapshot{}
	}
	return g.metrics.Snapshot()
}

// AuditDropped returns how many audit events were lost to a full buffer.
func (g *Guard) AuditDropped() uint64 {
	if g == nil {
		return 0
	}
	return g.audit.Dropped()
}
