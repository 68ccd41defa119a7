package stores

import (
	"sync"

	"github.com/spaolacci/murmur3"
)

// DefaultShardCount is used when a non-positive or non power-of-two count is requested.
const DefaultShardCount = 32

type shard[V any] struct {
	mu    sync.Mutex
	items map[string]V
}

// Shards is a keyed map split across independently locked shards. Keys are
// assigned to shards by murmur3 hash so operations on unrelated keys rarely
// contend.
type Shards[V any] struct {
	shards []*shard[V]
	mask   uint32
}

// NewShards creates a sharded map. count must be a power of two; other
// values fall back to [DefaultShardCount].
func NewShards[V any](count int) *Shards[V] {
	if count <= 0 || count&(count-1) != 0 {
		count = DefaultShardCount
	}
	s := &Shards[V]{
		shards: make([]*shard[V], count),
		mask:   uint32(count - 1),
	}
	for i := range s.shards {
		s.shards[i] = &shard[V]{items: make(map[string]V)}
	}
	return s
}

func (s *Shards[V]) index(key string) int {
	return int(murmur3.Sum32([]byte(key)) & s.mask)
}

func (s *Shards[V]) shardFor(key string) *shard[V] {
	return s.shards[s.index(key)]
}

// Update runs fn under the key's shard lock. fn receives the current value
// (ok=false when absent) and returns the value to store and whether to keep
// it; keep=false deletes the key.
func (s *Shards[V]) Update(key string, fn func(v V, ok bool) (V, bool)) {
	sh := s.shardFor(key)
	sh.mu.Lock()
	defer sh.mu.Unlock()

	cur, ok := sh.items[key]
	next, keep := fn(cur, ok)
	if keep {
		sh.items[key] = next
		return
	}
	if ok {
		delete(sh.items, key)
	}
}

// Set stores v under key unconditionally.
func (s *Shards[V]) Set(key string, v V) {
	sh := s.shardFor(key)
	sh.mu.Lock()
	sh.items[key] = v
	sh.mu.Unlock()
}

// Delete removes key. Missing keys are ignored.
func (s *Shards[V]) Delete(key string) {
	sh := s.shardFor(key)
	sh.mu.Lock()
	delete(sh.items, key)
	sh.mu.Unlock()
}

// Prune deletes every entry for which drop returns true and reports how many
// were removed. Shards are visited one at a time.
func (s *Shards[V]) Prune(drop func(key string, v V) bool) int {
	removed := 0
	for i := range s.shards {
		removed += s.pruneShard(i, 0, drop)
	}
	return removed
}

// PruneShardOf prunes the shard that owns key, examining at most limit
// entries. A non-positive limit examines the whole shard.
func (s *Shards[V]) PruneShardOf(key string, limit int, drop func(key string, v V) bool) int {
	return s.pruneShard(s.index(key), limit, drop)
}

// PruneShard prunes shard i modulo the shard count, examining at most limit
// entries. A non-positive limit examines the whole shard. Map iteration
// order is random, so repeated bounded passes reach every entry.
func (s *Shards[V]) PruneShard(i, limit int, drop func(key string, v V) bool) int {
	if i < 0 {
		i = -i
	}
	return s.pruneShard(i%len(s.shards), limit, drop)
}

func (s *Shards[V]) pruneShard(i, limit int, drop func(key string, v V) bool) int {
	sh := s.shards[i]
	sh.mu.Lock()
	defer sh.mu.Unlock()

	removed, seen := 0, 0
	for k, v := range sh.items {
		if limit > 0 && seen == limit {
			break
		}
		seen++
		if drop(k, v) {
			delete(sh.items, k)
			removed++
		}
	}
	return removed
}

// Len reports the number of stored keys. The result is a per-shard snapshot
// and may be stale under concurrent writes.
func (s *Shards[V]) Len() int {
	n := 0
	for _, sh := range s.shards {
		sh.mu.Lock()
		n += len(sh.items)
		sh.mu.Unlock()
	}
	return n
}

// Count reports the number of shards.
func (s *Shards[V]) Count() int {
	return len(s.shards)
}
