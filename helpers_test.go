package goGuard

import (
	"sync"
	"testing"
	"time"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

func fixedCode(code string) func(int) (string, error) {
	return func(int) (string, error) { return code, nil }
}

func testConfig() Config {
	cfg := DefaultConfig()
	cfg.RateLimit.GeneralCapacity = 3
	cfg.RateLimit.GeneralPeriod = time.Minute
	cfg.RateLimit.AuthCapacity = 2
	cfg.RateLimit.AuthPeriod = time.Minute
	cfg.Monitor.MaxFailedLoginsPerIP = 3
	cfg.Monitor.MaxFailedLoginsPerUser = 2
	cfg.Monitor.MaxRegistrationsPerIP = 3
	cfg.Monitor.Window = 15 * time.Minute
	cfg.Audit.Enabled = false
	return cfg
}

func buildTestGuard(t *testing.T, cfg Config, clock *fakeClock, opts ...func(*Builder)) *Guard {
	t.Helper()

	b := New().WithConfig(cfg).WithClock(clock.Now)
	for _, opt := range opts {
		opt(b)
	}
	g, err := b.Build()
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	t.Cleanup(g.Close)
	return g
}
