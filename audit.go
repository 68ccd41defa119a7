package goGuard

import (
	internalaudit "github.com/MrEthical07/goGuard/internal/audit"
)

// Audit event types emitted by a [Guard].
const (
	AuditRateLimited          = "rate_limited"
	AuditLoginFailed          = "login_failed"
	AuditLoginSucceeded       = "login_succeeded"
	AuditSecurityAlert        = "security_alert"
	AuditRegistrationBlocked  = "registration_blocked"
	AuditTokenRevoked         = "token_revoked"
	AuditRevokedTokenRejected = "revoked_token_rejected"
	AuditCodeGenerated        = "code_generated"
	AuditCodeVerified         = "code_verified"
	AuditCodeRejected         = "code_rejected"
	AuditCleanup              = "cleanup"
)

type (
	AuditEvent     = internalaudit.Event
	AuditSink      = internalaudit.Sink
	AuditSinkFunc  = internalaudit.SinkFunc
	NoOpSink       = internalaudit.NoOpSink
	ChannelSink    = internalaudit.ChannelSink
	JSONWriterSink = internalaudit.JSONWriterSink
	MultiSink      = internalaudit.MultiSink
)

var (
	NewChannelSink    = internalaudit.NewChannelSink
	NewJSONWriterSink = internalaudit.NewJSONWriterSink
)
