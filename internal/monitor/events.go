package monitor

import (
	"sync"
	"time"
)

// Kind identifies the type of a security alert.
type Kind string

const (
	KindSuspiciousIP           Kind = "suspicious_ip_activity"
	KindSuspiciousUser         Kind = "suspicious_user_activity"
	KindSuspiciousRegistration Kind = "suspicious_registration_activity"
)

// Event is an immutable record of a raised alert.
type Event struct {
	ID         string
	Kind       Kind
	Subject    string
	Message    string
	Count      int
	OccurredAt time.Time
}

// eventLog is a fixed-capacity ring of recent events. When full, the oldest
// event is overwritten. Events older than the horizon are treated as gone.
type eventLog struct {
	mu          sync.Mutex
	buf         []Event
	head        int
	size        int
	horizon     time.Duration
	overwritten uint64
}

func newEventLog(capacity int, horizon time.Duration) *eventLog {
	if capacity <= 0 {
		capacity = 1
	}
	return &eventLog{
		buf:     make([]Event, capacity),
		horizon: horizon,
	}
}

func (l *eventLog) add(e Event) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.pruneLocked(e.OccurredAt)
	if l.size == len(l.buf) {
		l.head = (l.head + 1) % len(l.buf)
		l.size--
		l.overwritten++
	}
	l.buf[(l.head+l.size)%len(l.buf)] = e
	l.size++
}

// prune drops expired events from the front of the ring.
func (l *eventLog) prune(now time.Time) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.pruneLocked(now)
}

func (l *eventLog) pruneLocked(now time.Time) int {
	removed := 0
	for l.size > 0 {
		oldest := l.buf[l.head]
		if now.Sub(oldest.OccurredAt) <= l.horizon {
			break
		}
		l.buf[l.head] = Event{}
		l.head = (l.head + 1) % len(l.buf)
		l.size--
		removed++
	}
	return removed
}

func (l *eventLog) len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.size
}

func (l *eventLog) dropped() uint64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.overwritten
}

// recent returns up to limit live events, newest first. limit <= 0 returns
// all of them.
func (l *eventLog) recent(now time.Time, limit int) []Event {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.pruneLocked(now)
	n := l.size
	if limit > 0 && limit < n {
		n = limit
	}
	out := make([]Event, 0, n)
	for i := 0; i < n; i++ {
		idx := (l.head + l.size - 1 - i) % len(l.buf)
		out = append(out, l.buf[idx])
	}
	return out
}
