package goGuard

import (
	"go.uber.org/zap"

	"github.com/MrEthical07/goGuard/internal/rate"
)

// Classify maps a request path to the bucket category it draws from.
func (g *Guard) Classify(path string) Category {
	return Category(rate.Classify(path, g.config.RateLimit.AuthPathPrefixes))
}

// Allow admits or denies one request from client for path. Denials are
// immediate and never queue the caller.
func (g *Guard) Allow(client, path string) bool {
	return g.AllowCategory(client, g.Classify(path), 1)
}

// AllowCategory consumes cost tokens from client's bucket for category.
// A cost below 1 counts as 1.
func (g *Guard) AllowCategory(client string, category Category, cost int) bool {
	if !g.config.RateLimit.Enabled {
		return true
	}

	if g.limiter.Allow(client, rate.Category(category), cost) {
		g.metricInc(MetricRequestAllowed)
		return true
	}

	g.metricInc(MetricRequestRateLimited)
	if category == CategoryAuth {
		g.metricInc(MetricAuthRequestRateLimited)
	}
	g.logger.Info("rate limit exceeded",
		zap.String("client", client),
		zap.String("category", string(category)),
	)
	g.emitAudit(AuditRateLimited, false, "", client, "", func() map[string]string {
		return map[string]string{"category": string(category)}
	})
	return false
}

// Tokens returns the tokens client currently has for category.
func (g *Guard) Tokens(client string, category Category) float64 {
	return g.limiter.Tokens(client, rate.Category(category))
}
