package server

import (
	"context"
	"time"

	goGuard "github.com/MrEthical07/goGuard"
	"go.uber.org/zap"
)

// RunJanitor calls guard.Cleanup every interval until ctx is done. It
// always returns ctx.Err().
func RunJanitor(ctx context.Context, guard *goGuard.Guard, interval time.Duration, logger *zap.Logger) error {
	if logger == nil {
		logger = zap.NewNop()
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			res := guard.Cleanup()
			if n := res.Total(); n > 0 {
				logger.Info("expired security state evicted",
					zap.Int("evicted", n),
					zap.Int("rate_limit_buckets", res.RateLimitBuckets),
					zap.Int("monitor_entries", res.MonitorEntries),
					zap.Int("revoked_tokens", res.RevokedTokens),
					zap.Int("codes", res.Codes),
					zap.Duration("took", res.Duration),
				)
			}
		}
	}
}
