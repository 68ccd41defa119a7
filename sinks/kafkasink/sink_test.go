package kafkasink

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	goGuard "github.com/MrEthical07/goGuard"
	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

type fakeWriter struct {
	mu     sync.Mutex
	msgs   []kafka.Message
	err    error
	closed bool
}

func (f *fakeWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.msgs = append(f.msgs, msgs...)
	return nil
}

func (f *fakeWriter) Close() error {
	f.closed = true
	return nil
}

func TestPublishKeysBySubject(t *testing.T) {
	w := &fakeWriter{}
	s := newWithWriter(w, 0, zap.NewNop())

	ts := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	if err := s.Publish(context.Background(), goGuard.AuditEvent{
		EventType: goGuard.AuditSecurityAlert,
		Subject:   "bob",
		IP:        "198.51.100.2",
		Timestamp: ts,
	}); err != nil {
		t.Fatalf("Publish: %v", err)
	}

	if len(w.msgs) != 1 {
		t.Fatalf("expected 1 message, got %d", len(w.msgs))
	}
	m := w.msgs[0]
	if string(m.Key) != "bob" {
		t.Fatalf("key = %q", m.Key)
	}
	if !m.Time.Equal(ts) {
		t.Fatalf("time = %v", m.Time)
	}
	if len(m.Headers) != 1 || string(m.Headers[0].Value) != goGuard.AuditSecurityAlert {
		t.Fatalf("headers = %+v", m.Headers)
	}
	var decoded goGuard.AuditEvent
	if err := json.Unmarshal(m.Value, &decoded); err != nil || decoded.IP != "198.51.100.2" {
		t.Fatalf("decoded %+v, err %v", decoded, err)
	}
}

func TestPublishFallsBackToIPKey(t *testing.T) {
	w := &fakeWriter{}
	s := newWithWriter(w, 0, zap.NewNop())
	_ = s.Publish(context.Background(), goGuard.AuditEvent{EventType: goGuard.AuditRateLimited, IP: "10.0.0.1"})
	if string(w.msgs[0].Key) != "10.0.0.1" {
		t.Fatalf("key = %q", w.msgs[0].Key)
	}
}

func TestEmitCountsFailures(t *testing.T) {
	w := &fakeWriter{err: errors.New("broker down")}
	s := newWithWriter(w, 0, zap.NewNop())
	s.Emit(context.Background(), goGuard.AuditEvent{EventType: goGuard.AuditRateLimited})
	if s.Failed() != 1 {
		t.Fatalf("failed = %d", s.Failed())
	}
	if err := s.Close(); err != nil || !w.closed {
		t.Fatalf("Close: %v closed=%v", err, w.closed)
	}
}

func TestNewRequiresBrokers(t *testing.T) {
	if _, err := New(Config{}, nil); !errors.Is(err, ErrNoBrokers) {
		t.Fatalf("expected ErrNoBrokers, got %v", err)
	}
	s, err := New(Config{Brokers: []string{"localhost:9092"}}, nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	_ = s.Close()
}
