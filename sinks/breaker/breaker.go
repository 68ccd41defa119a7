// Package breaker wraps an audit publisher in a sony/gobreaker circuit
// breaker. While open, events are counted and skipped without touching the
// network.
package breaker

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	goGuard "github.com/MrEthical07/goGuard"
	"github.com/sony/gobreaker"
	"go.uber.org/zap"
)

// Publisher is a sink that reports delivery errors.
type Publisher interface {
	Publish(ctx context.Context, event goGuard.AuditEvent) error
}

type Config struct {
	Name string
	// MaxFailures consecutive errors open the breaker.
	MaxFailures uint32
	// OpenTimeout is how long the breaker stays open before probing.
	OpenTimeout time.Duration
	// HalfOpenRequests is how many trial requests pass while half-open.
	HalfOpenRequests uint32
}

// Sink short-circuits a failing Publisher so a dead broker costs callers
// nothing but a counter increment.
type Sink struct {
	cb       *gobreaker.CircuitBreaker
	next     Publisher
	logger   *zap.Logger
	rejected atomic.Uint64
	failed   atomic.Uint64
}

func New(next Publisher, cfg Config, logger *zap.Logger) *Sink {
	if cfg.Name == "" {
		cfg.Name = "audit-sink"
	}
	if cfg.MaxFailures == 0 {
		cfg.MaxFailures = 5
	}
	if cfg.OpenTimeout <= 0 {
		cfg.OpenTimeout = 30 * time.Second
	}
	if cfg.HalfOpenRequests == 0 {
		cfg.HalfOpenRequests = 1
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	logger = logger.Named("breaker")

	s := &Sink{next: next, logger: logger}
	s.cb = gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        cfg.Name,
		MaxRequests: cfg.HalfOpenRequests,
		Timeout:     cfg.OpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= cfg.MaxFailures
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("audit sink breaker state changed",
				zap.String("breaker", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()),
			)
		},
	})
	return s
}

// Publish forwards event unless the breaker is open.
func (s *Sink) Publish(ctx context.Context, event goGuard.AuditEvent) error {
	_, err := s.cb.Execute(func() (interface{}, error) {
		return nil, s.next.Publish(ctx, event)
	})
	if err != nil {
		return fmt.Errorf("breaker (%s): %w", s.cb.Name(), err)
	}
	return nil
}

// Emit implements [goGuard.AuditSink].
func (s *Sink) Emit(ctx context.Context, event goGuard.AuditEvent) {
	err := s.Publish(ctx, event)
	switch {
	case err == nil:
	case errors.Is(err, gobreaker.ErrOpenState), errors.Is(err, gobreaker.ErrTooManyRequests):
		s.rejected.Add(1)
	default:
		s.failed.Add(1)
		s.logger.Warn("audit event not published", zap.String("event_type", event.EventType), zap.Error(err))
	}
}

func (s *Sink) State() gobreaker.State {
	return s.cb.State()
}

// Rejected counts events skipped while the breaker was open.
func (s *Sink) Rejected() uint64 {
	return s.rejected.Load()
}

// Failed counts events the wrapped publisher returned an error for.
func (s *Sink) Failed() uint64 {
	return s.failed.Load()
}
