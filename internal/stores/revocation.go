package stores

import (
	"sync/atomic"
	"time"
)

// CompactBatch caps how many entries a single lookup or write examines while
// opportunistically evicting expired state.
const CompactBatch = 16

// RevocationConfig controls the revoked-token store.
type RevocationConfig struct {
	Shards int
	Now    func() time.Time
}

// Revocations holds revoked token identifiers until the moment the token
// would expire on its own. Entries are never kept past that point: expired
// entries are evicted by the lookup that finds them, by the amortized
// per-lookup shard compaction, or by [Revocations.Sweep].
type Revocations struct {
	entries *Shards[time.Time]
	now     func() time.Time
	cursor  atomic.Uint32
}

func NewRevocations(cfg RevocationConfig) *Revocations {
	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	return &Revocations{
		entries: NewShards[time.Time](cfg.Shards),
		now:     now,
	}
}

// Revoke records tokenID as revoked until expiresAt. Calling it again for the
// same token overwrites the expiry.
func (r *Revocations) Revoke(tokenID string, expiresAt time.Time) {
	r.entries.Set(tokenID, expiresAt)
}

// IsRevoked reports whether tokenID is revoked and not yet expired.
func (r *Revocations) IsRevoked(tokenID string) bool {
	now := r.now()

	revoked := false
	r.entries.Update(tokenID, func(expiresAt time.Time, ok bool) (time.Time, bool) {
		if !ok {
			return expiresAt, false
		}
		if now.After(expiresAt) {
			return expiresAt, false
		}
		revoked = true
		return expiresAt, true
	})

	// Compact part of one shard per lookup, round-robin, so a store that only
	// sees reads still converges without a dedicated sweep.
	next := r.cursor.Add(1)
	r.entries.PruneShard(int(next%uint32(r.entries.Count())), CompactBatch, expiredBefore(now))

	return revoked
}

// Sweep removes every expired entry and reports how many were removed.
func (r *Revocations) Sweep() int {
	return r.entries.Prune(expiredBefore(r.now()))
}

// Size sweeps and then reports the number of live revocations.
func (r *Revocations) Size() int {
	r.Sweep()
	return r.entries.Len()
}

func expiredBefore(now time.Time) func(string, time.Time) bool {
	return func(_ string, expiresAt time.Time) bool {
		return expiresAt.Before(now)
	}
}
