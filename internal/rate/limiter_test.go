package rate

import (
	"math"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

type clock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *clock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

func newTestLimiter(c *clock) *Limiter {
	return New(Config{
		General: Bucket{Capacity: 5, Period: 5 * time.Second},
		Auth:    Bucket{Capacity: 2, Period: time.Minute},
		Shards:  4,
		Now:     c.Now,
	})
}

func TestClassify(t *testing.T) {
	tests := []struct {
		path     string
		prefixes []string
		want     Category
	}{
		{"/api/auth/login", nil, CategoryAuth},
		{"/api/authz", nil, CategoryGeneral},
		{"/api/items", nil, CategoryGeneral},
		{"/login", []string{"/login", "/register"}, CategoryAuth},
		{"/register/confirm", []string{"/login", "/register"}, CategoryAuth},
		{"/api/auth/login", []string{"/login"}, CategoryGeneral},
		{"/anything", []string{""}, CategoryGeneral},
	}
	for _, tt := range tests {
		if got := Classify(tt.path, tt.prefixes); got != tt.want {
			t.Errorf("Classify(%q, %v) = %s, want %s", tt.path, tt.prefixes, got, tt.want)
		}
	}
}

func TestBurstThenDeny(t *testing.T) {
	c := &clock{now: time.Unix(1_700_000_000, 0)}
	l := newTestLimiter(c)

	for i := 0; i < 5; i++ {
		if !l.Allow("ip", CategoryGeneral, 1) {
			t.Fatalf("request %d should pass", i+1)
		}
	}
	if l.Allow("ip", CategoryGeneral, 1) {
		t.Fatal("bucket should be empty")
	}

	// 1 token per second.
	c.Advance(time.Second)
	if !l.Allow("ip", CategoryGeneral, 1) {
		t.Fatal("one token should have refilled")
	}
	if l.Allow("ip", CategoryGeneral, 1) {
		t.Fatal("only one token should have refilled")
	}
}

func TestRefillCapsAtCapacity(t *testing.T) {
	c := &clock{now: time.Unix(1_700_000_000, 0)}
	l := newTestLimiter(c)

	l.Allow("ip", CategoryGeneral, 5)
	c.Advance(time.Hour)
	if got := l.Tokens("ip", CategoryGeneral); math.Abs(got-5) > 1e-9 {
		t.Fatalf("tokens should cap at 5, got %v", got)
	}
}

func TestCategoriesIndependent(t *testing.T) {
	c := &clock{now: time.Unix(1_700_000_000, 0)}
	l := newTestLimiter(c)

	l.Allow("ip", CategoryAuth, 1)
	l.Allow("ip", CategoryAuth, 1)
	if l.Allow("ip", CategoryAuth, 1) {
		t.Fatal("auth bucket should be exhausted")
	}
	if !l.Allow("ip", CategoryGeneral, 1) {
		t.Fatal("general bucket is separate")
	}
	if Key("ip", CategoryAuth) != "ip:auth" {
		t.Fatal("unexpected key format")
	}
}

func TestZeroCapacityAdmitsEverything(t *testing.T) {
	l := New(Config{General: Bucket{}, Auth: Bucket{Capacity: 1, Period: time.Second}})
	for i := 0; i < 10; i++ {
		if !l.Allow("ip", CategoryGeneral, 1) {
			t.Fatal("a zero capacity bucket is unlimited")
		}
	}
	if l.Len() != 0 {
		t.Fatal("unlimited categories keep no state")
	}
}

func TestSweepDropsFullBuckets(t *testing.T) {
	c := &clock{now: time.Unix(1_700_000_000, 0)}
	l := newTestLimiter(c)

	l.Allow("a", CategoryGeneral, 1)
	l.Allow("b", CategoryGeneral, 5)
	if removed := l.Sweep(); removed != 0 {
		t.Fatalf("partially drained buckets stay, removed %d", removed)
	}

	c.Advance(2 * time.Second)
	if removed := l.Sweep(); removed != 1 {
		t.Fatalf("only a should have refilled, removed %d", removed)
	}
	if l.Len() != 1 {
		t.Fatalf("expected 1 bucket, got %d", l.Len())
	}
}

func TestConcurrentAllowNeverOveradmits(t *testing.T) {
	c := &clock{now: time.Unix(1_700_000_000, 0)}
	l := newTestLimiter(c)

	var admitted atomic.Int64
	var wg sync.WaitGroup
	for g := 0; g < 32; g++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 50; i++ {
				if l.Allow("shared", CategoryGeneral, 1) {
					admitted.Add(1)
				}
			}
		}()
	}
	wg.Wait()

	if got := admitted.Load(); got != 5 {
		t.Fatalf("expected exactly 5 admissions with a frozen clock, got %d", got)
	}
}

func TestTokensNeverNegative(t *testing.T) {
	c := &clock{now: time.Unix(1_700_000_000, 0)}
	l := New(Config{
		General: Bucket{Capacity: 7, Period: time.Minute},
		Auth:    Bucket{Capacity: 2, Period: time.Minute},
		Now:     c.Now,
	})

	for i := 0; i < 7; i++ {
		if !l.Allow("10.0.0.1", CategoryGeneral, 1) {
			t.Fatalf("request %d should be admitted", i)
		}
	}
	for i := 0; i < 20; i++ {
		c.Advance(time.Minute / 7)
		l.Allow("10.0.0.1", CategoryGeneral, 1)
		if got := l.Tokens("10.0.0.1", CategoryGeneral); got < 0 {
			t.Fatalf("step %d: tokens went negative: %g", i, got)
		}
	}
}
