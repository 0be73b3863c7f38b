// Package nats carries change events over core NATS, one subject per kind.
// Core NATS has no redelivery: a batch that fails is logged and dropped.
package nats

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	nats "github.com/nats-io/nats.go"

	"idbridge/internal/pipeline"
)

const (
	defaultBatchSize = 200
	defaultBuffer    = 1024
)

// Publisher publishes change events on "<prefix>.<kind>".
type Publisher struct {
	conn   *nats.Conn
	prefix string
}

func NewPublisher(conn *nats.Conn, subjectPrefix string) (*Publisher, error) {
	if conn == nil {
		return nil, errors.New("nats connection is nil")
	}
	return &Publisher{conn: conn, prefix: strings.TrimSuffix(subjectPrefix, ".")}, nil
}

func (p *Publisher) Publish(_ context.Context, ev pipeline.ChangeEvent) error {
	data, err := pipeline.Encode(ev)
	if err != nil {
		return err
	}
	if err := p.conn.Publish(p.prefix+"."+ev.Kind.String(), data); err != nil {
		return fmt.Errorf("nats publish: %w", err)
	}
	return nil
}

// Subscriber drains a queue subscription into per-kind batches.
type Subscriber struct {
	conn      *nats.Conn
	prefix    string
	queue     string
	handler   pipeline.BatchHandler
	batchSize int
	logger    *slog.Logger
}

type Option func(*Subscriber)

func WithBatchSize(n int) Option {
	return func(s *Subscriber) {
		if n > 0 {
			s.batchSize = n
		}
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(s *Subscriber) {
		s.logger = logger
	}
}

func NewSubscriber(conn *nats.Conn, subjectPrefix, queue string, handler pipeline.BatchHandler, opts ...Option) (*Subscriber, error) {
	if conn == nil {
		return nil, errors.New("nats connection is nil")
	}
	s := &Subscriber{
		conn:      conn,
		prefix:    strings.TrimSuffix(subjectPrefix, "."),
		queue:     queue,
		handler:   handler,
		batchSize: defaultBatchSize,
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Run subscribes and delivers until ctx is cancelled. Each wake-up takes
// every message already buffered, up to the batch size.
func (s *Subscriber) Run(ctx context.Context) error {
	msgs := make(chan *nats.Msg, defaultBuffer)
	sub, err := s.conn.ChanQueueSubscribe(s.prefix+".*", s.queue, msgs)
	if err != nil {
		return fmt.Errorf("nats subscribe: %w", err)
	}
	defer func() {
		_ = sub.Unsubscribe()
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case first := <-msgs:
			batch := []*nats.Msg{first}
		drain:
			for len(batch) < s.batchSize {
				select {
				case m := <-msgs:
					batch = append(batch, m)
				default:
					break drain
				}
			}
			s.deliver(ctx, batch)
		}
	}
}

func (s *Subscriber) deliver(ctx context.Context, msgs []*nats.Msg) {
	batches := make(map[pipeline.Kind][]pipeline.ChangeEvent)
	var order []pipeline.Kind
	for _, m := range msgs {
		ev, err := pipeline.Decode(m.Data)
		if err != nil {
			s.logger.ErrorContext(ctx, "failed to decode change event",
				"subject", m.Subject,
				"error", err,
			)
			continue
		}
		if _, seen := batches[ev.Kind]; !seen {
			order = append(order, ev.Kind)
		}
		batches[ev.Kind] = append(batches[ev.Kind], ev)
	}
	for _, kind := range order {
		start := time.Now()
		if err := s.handler.HandleBatch(ctx, kind, batches[kind]); err != nil {
			s.logger.WarnContext(ctx, "dropping failed change event batch",
				"kind", kind,
				"size", len(batches[kind]),
				"error", err,
				"elapsed", time.Since(start),
			)
		}
	}
}
