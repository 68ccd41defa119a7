package goGuard

import (
	"fmt"
	"time"

	"go.uber.org/zap"
)

// GenerateCode issues a fresh one-time code for identifier, replacing any
// live one. The only failure is the system random source.
func (g *Guard) GenerateCode(identifier string) (string, error) {
	code, expiresAt, err := g.codes.Generate(identifier)
	if err != nil {
		g.logger.Error("one-time code generation failed", zap.String("identifier", identifier), zap.Error(err))
		return "", fmt.Errorf("%w: %w", ErrCodeGeneration, err)
	}

	g.metricInc(MetricCodeGenerated)
	g.logger.Info("one-time code generated", zap.String("identifier", identifier), zap.Time("expires_at", expiresAt))
	g.emitAudit(AuditCodeGenerated, true, identifier, "", "", func() map[string]string {
		return map[string]string{"expires_at": expiresAt.UTC().Format(time.RFC3339)}
	})
	return code, nil
}

// CodeTTL returns the lifetime of newly generated codes.
func (g *Guard) CodeTTL() time.Duration {
	return g.codes.TTL()
}

// VerifyCode checks code against identifier's live code. A correct code, an
// expired code and an exhausted attempt budget all consume the code.
func (g *Guard) VerifyCode(identifier, code string) VerifyResult {
	out := g.codes.Verify(identifier, code)
	res := VerifyResult{Valid: out.Valid, Reason: out.Reason}
	if out.Reason == ReasonInvalidCode {
		res.AttemptsRemaining = g.config.OneTimeCode.MaxAttempts - out.Attempts
		if res.AttemptsRemaining < 0 {
			res.AttemptsRemaining = 0
		}
	}

	switch out.Reason {
	case ReasonVerified:
		g.metricInc(MetricCodeVerified)
	case ReasonInvalidCode:
		g.metricInc(MetricCodeInvalid)
	case ReasonExpired:
		g.metricInc(MetricCodeExpired)
	case ReasonTooManyAttempts:
		g.metricInc(MetricCodeAttemptsExceeded)
	case ReasonNoActiveCode:
		g.metricInc(MetricCodeMissing)
	}

	if res.Valid {
		g.logger.Info("one-time code verified", zap.String("identifier", identifier))
		g.emitAudit(AuditCodeVerified, true, identifier, "", out.Reason, nil)
	} else {
		g.logger.Info("one-time code rejected", zap.String("identifier", identifier), zap.String("reason", out.Reason))
		g.emitAudit(AuditCodeRejected, false, identifier, "", out.Reason, nil)
	}
	return res
}

// HasActiveCode reports whether identifier has an unexpired code.
func (g *Guard) HasActiveCode(identifier string) bool {
	return g.codes.HasActive(identifier)
}

// InvalidateCode discards any code for identifier.
func (g *Guard) InvalidateCode(identifier string) {
	g.codes.Invalidate(identifier)
}

// ActiveCodes sweeps expired codes and returns how many remain.
func (g *Guard) ActiveCodes() int {
	return g.codes.Active()
}
