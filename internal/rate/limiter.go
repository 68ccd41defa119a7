package rate

import (
	"strings"
	"time"

	"github.com/MrEthical07/goGuard/internal/stores"
	xrate "golang.org/x/time/rate"
)

// Category partitions a client's budget by the kind of path it requested.
type Category string

const (
	CategoryGeneral Category = "general"
	CategoryAuth    Category = "auth"
)

// DefaultAuthPrefix is the path prefix treated as authentication traffic
// when no prefixes are configured.
const DefaultAuthPrefix = "/api/auth/"

// Bucket configures one token bucket: Capacity tokens, refilled at
// Capacity per Period.
type Bucket struct {
	Capacity int
	Period   time.Duration
}

// PerSecond returns the refill rate in tokens per second.
func (b Bucket) PerSecond() float64 {
	if b.Period <= 0 {
		return 0
	}
	return float64(b.Capacity) / b.Period.Seconds()
}

// Config holds the two coexisting bucket configurations.
type Config struct {
	General Bucket
	Auth    Bucket
	Shards  int
	Now     func() time.Time
}

type bucketState struct {
	limiter  *xrate.Limiter
	capacity int
}

// Limiter is a per-key token bucket limiter. Refill is computed lazily on
// each consume, so idle keys cost nothing until [Limiter.Sweep] drops them.
// Denials are immediate; the limiter never queues or delays a caller.
type Limiter struct {
	buckets *stores.Shards[bucketState]
	config  Config
	now     func() time.Time
}

// New creates a token bucket [Limiter].
func New(cfg Config) *Limiter {
	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	return &Limiter{
		buckets: stores.NewShards[bucketState](cfg.Shards),
		config:  cfg,
		now:     now,
	}
}

// Key builds the bucket key for a client identity and category.
func Key(client string, category Category) string {
	return client + ":" + string(category)
}

// Classify maps a request path to its category. Paths starting with any of
// authPrefixes are [CategoryAuth]; an empty prefix list uses
// [DefaultAuthPrefix].
func Classify(path string, authPrefixes []string) Category {
	if len(authPrefixes) == 0 {
		return classifyPrefix(path, DefaultAuthPrefix)
	}
	for _, prefix := range authPrefixes {
		if prefix != "" && strings.HasPrefix(path, prefix) {
			return CategoryAuth
		}
	}
	return CategoryGeneral
}

func classifyPrefix(path, prefix string) Category {
	if strings.HasPrefix(path, prefix) {
		return CategoryAuth
	}
	return CategoryGeneral
}

// Allow consumes cost tokens from the bucket for client in category and
// reports whether the request is admitted.
func (l *Limiter) Allow(client string, category Category, cost int) bool {
	if cost <= 0 {
		cost = 1
	}
	bucket := l.bucketFor(category)
	if bucket.Capacity <= 0 {
		return true
	}

	now := l.now()
	allowed := false
	l.buckets.Update(Key(client, category), func(st bucketState, ok bool) (bucketState, bool) {
		if !ok {
			st = bucketState{
				limiter:  xrate.NewLimiter(xrate.Limit(bucket.PerSecond()), bucket.Capacity),
				capacity: bucket.Capacity,
			}
		}
		allowed = st.limiter.AllowN(now, cost)
		return st, true
	})
	return allowed
}

// Tokens returns the tokens currently available to client in category. A
// client with no bucket has a full one. The result is never negative.
func (l *Limiter) Tokens(client string, category Category) float64 {
	now := l.now()
	tokens := float64(l.bucketFor(category).Capacity)
	l.buckets.Update(Key(client, category), func(st bucketState, ok bool) (bucketState, bool) {
		if ok {
			tokens = st.limiter.TokensAt(now)
		}
		return st, ok
	})
	// x/time/rate admits a request whose remaining deficit rounds to a zero
	// wait, leaving a tiny negative balance.
	return max(tokens, 0)
}

// Sweep drops buckets that have refilled to capacity; they behave exactly
// like a fresh bucket. Returns how many were dropped.
func (l *Limiter) Sweep() int {
	now := l.now()
	return l.buckets.Prune(func(_ string, st bucketState) bool {
		return st.limiter.TokensAt(now) >= float64(st.capacity)
	})
}

// Len returns the number of tracked buckets.
func (l *Limiter) Len() int {
	return l.buckets.Len()
}

func (l *Limiter) bucketFor(category Category) Bucket {
	if category == CategoryAuth {
		return l.config.Auth
	}
	return l.config.General
}
