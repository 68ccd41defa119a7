// Package kafkasink publishes goGuard audit events to a Kafka topic with
// segmentio/kafka-go. [Sink.Publish] returns delivery errors so the sink can be
// wrapped by sinks/breaker; [Sink.Emit] logs and counts them instead.
package kafkasink

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	goGuard "github.com/MrEthical07/goGuard"
	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

const DefaultTopic = "goguard.security-events"

var ErrNoBrokers = errors.New("kafka: no brokers configured")

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

type Config struct {
	Brokers      []string
	Topic        string
	BatchTimeout time.Duration
	Timeout      time.Duration
}

// Sink publishes audit events to a Kafka topic. Messages are keyed by
// subject so events about one IP or account stay ordered in a partition.
type Sink struct {
	writer  messageWriter
	timeout time.Duration
	logger  *zap.Logger
	failed  atomic.Uint64
}

func New(cfg Config, logger *zap.Logger) (*Sink, error) {
	if len(cfg.Brokers) == 0 {
		return nil, ErrNoBrokers
	}
	if cfg.Topic == "" {
		cfg.Topic = DefaultTopic
	}
	if cfg.BatchTimeout <= 0 {
		cfg.BatchTimeout = 10 * time.Millisecond
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	logger = logger.Named("kafka")

	w := &kafka.Writer{
		Addr:         kafka.TCP(cfg.Brokers...),
		Topic:        cfg.Topic,
		Balancer:     &kafka.Hash{},
		MaxAttempts:  3,
		BatchSize:    100,
		BatchTimeout: cfg.BatchTimeout,
		RequiredAcks: kafka.RequireOne,
	}
	return newWithWriter(w, cfg.Timeout, logger), nil
}

func newWithWriter(w messageWriter, timeout time.Duration, logger *zap.Logger) *Sink {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Sink{writer: w, timeout: timeout, logger: logger}
}

func message(event goGuard.AuditEvent) (kafka.Message, error) {
	data, err := json.Marshal(event)
	if err != nil {
		return kafka.Message{}, err
	}
	key := event.Subject
	if key == "" {
		key = event.IP
	}
	return kafka.Message{
		Key:     []byte(key),
		Value:   data,
		Time:    event.Timestamp,
		Headers: []kafka.Header{{Key: "event_type", Value: []byte(event.EventType)}},
	}, nil
}

// Publish writes one event synchronously.
func (s *Sink) Publish(ctx context.Context, event goGuard.AuditEvent) error {
	msg, err := message(event)
	if err != nil {
		return fmt.Errorf("kafka: encode event: %w", err)
	}
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	if err := s.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("kafka: write: %w", err)
	}
	return nil
}

// Emit implements [goGuard.AuditSink]. Failures are logged and counted.
func (s *Sink) Emit(ctx context.Context, event goGuard.AuditEvent) {
	if err := s.Publish(ctx, event); err != nil {
		s.failed.Add(1)
		s.logger.Error("failed to write kafka message", zap.String("event_type", event.EventType), zap.Error(err))
	}
}

func (s *Sink) Failed() uint64 {
	return s.failed.Load()
}

func (s *Sink) Close() error {
	if err := s.writer.Close(); err != nil {
		s.logger.Error("failed to close kafka writer", zap.Error(err))
		return err
	}
	return nil
}
