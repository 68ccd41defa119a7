package stores

import (
	"crypto/subtle"
	"time"

	"github.com/MrEthical07/goGuard/internal"
)

const (
	defaultCodeDigits      = 6
	defaultCodeTTL         = 5 * time.Minute
	defaultCodeMaxAttempts = 3
)

// Verification outcomes reported by [Codes.Verify].
const (
	ReasonVerified        = "verified"
	ReasonNoActiveCode    = "no active code"
	ReasonExpired         = "expired"
	ReasonTooManyAttempts = "too many attempts"
	ReasonInvalidCode     = "invalid code"
)

// CodesConfig controls the one-time code store. Zero values fall back to
// 6 digits, a 5 minute TTL and 3 attempts.
type CodesConfig struct {
	Digits      int
	TTL         time.Duration
	MaxAttempts int
	Shards      int
	Now         func() time.Time
	// Generate overrides the code source; it defaults to a crypto/rand
	// backed generator.
	Generate func(digits int) (string, error)
}

type codeRecord struct {
	code      string
	expiresAt time.Time
	attempts  int
}

// VerifyOutcome is the result of a single verification attempt.
type VerifyOutcome struct {
	Valid  bool
	Reason string
	// Attempts is the number of failed attempts recorded on the code after
	// this call; zero once the code has been removed.
	Attempts int
}

// Codes stores at most one live one-time code per identifier.
type Codes struct {
	entries     *Shards[codeRecord]
	digits      int
	ttl         time.Duration
	maxAttempts int
	now         func() time.Time
	generate    func(int) (string, error)
}

func NewCodes(cfg CodesConfig) *Codes {
	if cfg.Digits <= 0 {
		cfg.Digits = defaultCodeDigits
	}
	if cfg.TTL <= 0 {
		cfg.TTL = defaultCodeTTL
	}
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = defaultCodeMaxAttempts
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if cfg.Generate == nil {
		cfg.Generate = internal.NewOTP
	}
	return &Codes{
		entries:     NewShards[codeRecord](cfg.Shards),
		digits:      cfg.Digits,
		ttl:         cfg.TTL,
		maxAttempts: cfg.MaxAttempts,
		now:         cfg.Now,
		generate:    cfg.Generate,
	}
}

// TTL returns the lifetime applied to newly generated codes.
func (c *Codes) TTL() time.Duration {
	return c.ttl
}

// Generate issues a fresh code for identifier, replacing any previous code
// and its attempt count.
func (c *Codes) Generate(identifier string) (string, time.Time, error) {
	code, err := c.generate(c.digits)
	if err != nil {
		return "", time.Time{}, err
	}

	now := c.now()
	expiresAt := now.Add(c.ttl)
	c.entries.Set(identifier, codeRecord{code: code, expiresAt: expiresAt})

	c.entries.PruneShardOf(identifier, CompactBatch, codeExpired(now))
	return code, expiresAt, nil
}

// Verify checks submitted against the live code for identifier. A match, an
// expired code, or an exhausted attempt budget all remove the code.
func (c *Codes) Verify(identifier, submitted string) VerifyOutcome {
	now := c.now()
	out := VerifyOutcome{Reason: ReasonNoActiveCode}

	c.entries.Update(identifier, func(rec codeRecord, ok bool) (codeRecord, bool) {
		switch {
		case !ok:
			return rec, false
		case now.After(rec.expiresAt):
			out.Reason = ReasonExpired
			return rec, false
		case rec.attempts >= c.maxAttempts:
			out.Reason = ReasonTooManyAttempts
			return rec, false
		case subtle.ConstantTimeCompare([]byte(rec.code), []byte(submitted)) == 1:
			out.Valid = true
			out.Reason = ReasonVerified
			return rec, false
		default:
			rec.attempts++
			out.Reason = ReasonInvalidCode
			out.Attempts = rec.attempts
			return rec, true
		}
	})

	return out
}

// HasActive reports whether identifier has an unexpired code. An expired
// code is removed.
func (c *Codes) HasActive(identifier string) bool {
	now := c.now()
	active := false
	c.entries.Update(identifier, func(rec codeRecord, ok bool) (codeRecord, bool) {
		if !ok || now.After(rec.expiresAt) {
			return rec, false
		}
		active = true
		return rec, true
	})
	return active
}

// Invalidate removes any code for identifier.
func (c *Codes) Invalidate(identifier string) {
	c.entries.Delete(identifier)
}

// Sweep removes expired codes and reports how many were removed.
func (c *Codes) Sweep() int {
	return c.entries.Prune(codeExpired(c.now()))
}

// Active sweeps and then reports the number of live codes.
func (c *Codes) Active() int {
	c.Sweep()
	return c.entries.Len()
}

func codeExpired(now time.Time) func(string, codeRecord) bool {
	return func(_ string, rec codeRecord) bool {
		return now.After(rec.expiresAt)
	}
}
