// Package redisstream appends goGuard audit events to a Redis stream so
// external monitors can consume them with XREAD or consumer groups.
package redisstream

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	goGuard "github.com/MrEthical07/goGuard"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const (
	DefaultStream  = "goguard:security-events"
	defaultTimeout = 2 * time.Second
)

var ErrNilClient = errors.New("redisstream: nil redis client")

// Config controls stream naming and trimming. MaxLen 0 keeps every entry.
type Config struct {
	Stream string
	MaxLen int64
	// Approximate trims with "MAXLEN ~", which Redis can do much more cheaply.
	Approximate bool
	Timeout     time.Duration
}

// Sink appends audit events to a Redis stream with XADD. Each entry carries
// the event type and the JSON encoded event.
type Sink struct {
	client redis.UniversalClient
	cfg    Config
	logger *zap.Logger
	failed atomic.Uint64
}

func New(client redis.UniversalClient, cfg Config, logger *zap.Logger) (*Sink, error) {
	if client == nil {
		return nil, ErrNilClient
	}
	if cfg.Stream == "" {
		cfg.Stream = DefaultStream
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Sink{client: client, cfg: cfg, logger: logger.Named("redisstream")}, nil
}

// Publish writes one event and returns the Redis error, if any.
func (s *Sink) Publish(ctx context.Context, event goGuard.AuditEvent) error {
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("redisstream: encode event: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, s.cfg.Timeout)
	defer cancel()

	args := &redis.XAddArgs{
		Stream: s.cfg.Stream,
		MaxLen: s.cfg.MaxLen,
		Approx: s.cfg.Approximate,
		Values: map[string]any{
			"type":  event.EventType,
			"event": data,
		},
	}
	if err := s.client.XAdd(ctx, args).Err(); err != nil {
		return fmt.Errorf("redisstream: xadd %s: %w", s.cfg.Stream, err)
	}
	return nil
}

// Emit implements [goGuard.AuditSink]. Failures are logged and counted.
func (s *Sink) Emit(ctx context.Context, event goGuard.AuditEvent) {
	if err := s.Publish(ctx, event); err != nil {
		s.failed.Add(1)
		s.logger.Warn("audit event not published", zap.String("event_type", event.EventType), zap.Error(err))
	}
}

// Failed returns the number of events Emit could not publish.
func (s *Sink) Failed() uint64 {
	return s.failed.Load()
}
