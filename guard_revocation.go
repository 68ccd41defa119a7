package goGuard

import (
	"time"

	"go.uber.org/zap"
)

// Revoke blacklists tokenID until expiresAt, normally the token's own
// expiry. Revoking again overwrites the expiry.
func (g *Guard) Revoke(tokenID string, expiresAt time.Time) {
	g.revocations.Revoke(tokenID, expiresAt)
	g.metricInc(MetricTokenRevoked)
	g.logger.Info("token revoked",
		zap.String("token_id", tokenID),
		zap.Time("expires_at", expiresAt),
	)
	g.emitAudit(AuditTokenRevoked, true, tokenID, "", "", func() map[string]string {
		return map[string]string{"expires_at": expiresAt.UTC().Format(time.RFC3339)}
	})
}

// IsRevoked reports whether tokenID is blacklisted and not yet past its
// expiry.
func (g *Guard) IsRevoked(tokenID string) bool {
	if !g.revocations.IsRevoked(tokenID) {
		return false
	}
	g.metricInc(MetricRevokedTokenRejected)
	g.emitAudit(AuditRevokedTokenRejected, false, tokenID, "", ErrTokenRevoked.Error(), nil)
	return true
}

// RevokedCount sweeps expired entries and returns the live blacklist size.
func (g *Guard) RevokedCount() int {
	return g.revocations.Size()
}
