package limiters

import (
	"time"

	"github.com/MrEthical07/goGuard/internal/stores"
)

const defaultWindow = 15 * time.Minute

// WindowConfig controls a sliding attempt window.
type WindowConfig struct {
	// Window is the idle period after which a key's count starts over.
	Window time.Duration
	Shards int
	Now    func() time.Time
}

type windowEntry struct {
	count       int
	lastTouched time.Time
}

// Window counts attempts per key. The window rolls on inactivity: a key's
// entry expires once more than Window has passed since it was last
// recorded, not since it was created.
type Window struct {
	entries *stores.Shards[windowEntry]
	window  time.Duration
	now     func() time.Time
}

func NewWindow(cfg WindowConfig) *Window {
	if cfg.Window <= 0 {
		cfg.Window = defaultWindow
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	return &Window{
		entries: stores.NewShards[windowEntry](cfg.Shards),
		window:  cfg.Window,
		now:     cfg.Now,
	}
}

// Length returns the configured window.
func (w *Window) Length() time.Duration {
	return w.window
}

// Record adds one attempt for key and returns the resulting count. An
// expired or missing entry starts again at 1.
func (w *Window) Record(key string) int {
	now := w.now()
	count := 0
	w.entries.Update(key, func(e windowEntry, ok bool) (windowEntry, bool) {
		if !ok || w.expired(e, now) {
			e = windowEntry{}
		}
		e.count++
		e.lastTouched = now
		count = e.count
		return e, true
	})
	return count
}

// Over reports whether key has a live entry whose count is at least
// threshold. A stale entry is removed and treated as absent.
func (w *Window) Over(key string, threshold int) bool {
	return w.Count(key) >= threshold && threshold > 0
}

// Count returns the live count for key, or 0 when absent or expired.
func (w *Window) Count(key string) int {
	now := w.now()
	count := 0
	w.entries.Update(key, func(e windowEntry, ok bool) (windowEntry, bool) {
		if !ok || w.expired(e, now) {
			return e, false
		}
		count = e.count
		return e, true
	})
	return count
}

// Clear forgets key.
func (w *Window) Clear(key string) {
	w.entries.Delete(key)
}

// Sweep removes every expired entry and reports how many were removed.
func (w *Window) Sweep() int {
	now := w.now()
	return w.entries.Prune(func(_ string, e windowEntry) bool {
		return w.expired(e, now)
	})
}

// Len returns the number of tracked keys, including any not yet swept.
func (w *Window) Len() int {
	return w.entries.Len()
}

func (w *Window) expired(e windowEntry, now time.Time) bool {
	return now.Sub(e.lastTouched) > w.window
}
