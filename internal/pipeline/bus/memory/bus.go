// Package memory is the in-process outbox. Published events are buffered
// and delivered to a batch handler by a background worker, or on demand
// through Deliver.
package memory

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"idbridge/internal/pipeline"
)

var ErrOutboxFull = errors.New("change event outbox is full")

var ErrClosed = errors.New("change event outbox is closed")

const (
	defaultCapacity  = 1024
	defaultBatchSize = 200
	defaultLinger    = 50 * time.Millisecond
)

// Bus buffers events until the worker or Deliver hands them to the handler.
// Deliveries never overlap, and each delivery groups pending events by kind
// in first-published order.
type Bus struct {
	handler   pipeline.BatchHandler
	capacity  int
	batchSize int
	linger    time.Duration
	logger    *slog.Logger

	mu      sync.Mutex
	pending []pipeline.ChangeEvent
	closed  bool

	deliverMu sync.Mutex
	notify    chan struct{}
}

type Option func(*Bus)

func WithCapacity(n int) Option {
	return func(b *Bus) {
		if n > 0 {
			b.capacity = n
		}
	}
}

func WithBatchSize(n int) Option {
	return func(b *Bus) {
		if n > 0 {
			b.batchSize = n
		}
	}
}

// WithLinger sets how long the worker waits after the first pending event
// so events published close together share a batch.
func WithLinger(d time.Duration) Option {
	return func(b *Bus) {
		if d >= 0 {
			b.linger = d
		}
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(b *Bus) {
		b.logger = logger
	}
}

func New(handler pipeline.BatchHandler, opts ...Option) *Bus {
	b := &Bus{
		handler:   handler,
		capacity:  defaultCapacity,
		batchSize: defaultBatchSize,
		linger:    defaultLinger,
		logger:    slog.Default(),
		notify:    make(chan struct{}, 1),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Publish enqueues ev and returns without waiting for delivery.
func (b *Bus) Publish(_ context.Context, ev pipeline.ChangeEvent) error {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return ErrClosed
	}
	if len(b.pending) >= b.capacity {
		b.mu.Unlock()
		return ErrOutboxFull
	}
	b.pending = append(b.pending, ev)
	b.mu.Unlock()

	select {
	case b.notify <- struct{}{}:
	default:
	}
	return nil
}

// Pending reports how many events await delivery.
func (b *Bus) Pending() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.pending)
}

// Run delivers pending events until ctx is cancelled, then drains what is
// left. Batch failures are logged by the handler and not redelivered.
func (b *Bus) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			b.mu.Lock()
			b.closed = true
			b.mu.Unlock()
			if err := b.Deliver(context.WithoutCancel(ctx)); err != nil {
				b.logger.Warn("outbox drained with failed batches", "error", err)
			}
			return nil
		case <-b.notify:
			if b.linger > 0 {
				timer := time.NewTimer(b.linger)
				select {
				case <-ctx.Done():
					timer.Stop()
				case <-timer.C:
				}
			}
			if err := b.Deliver(ctx); err != nil {
				b.logger.DebugContext(ctx, "outbox delivery had failed batches", "error", err)
			}
		}
	}
}

// Deliver synchronously hands every pending event to the handler. It is the
// "force delivery now" hook used by tests before asserting on stores.
func (b *Bus) Deliver(ctx context.Context) error {
	b.deliverMu.Lock()
	defer b.deliverMu.Unlock()

	b.mu.Lock()
	events := b.pending
	b.pending = nil
	b.mu.Unlock()

	var errs []error
	for _, group := range groupByKind(events) {
		for start := 0; start < len(group.events); start += b.batchSize {
			end := min(start+b.batchSize, len(group.events))
			if err := b.handler.HandleBatch(ctx, group.kind, group.events[start:end]); err != nil {
				errs = append(errs, err)
			}
		}
	}
	return errors.Join(errs...)
}

type kindGroup struct {
	kind   pipeline.Kind
	events []pipeline.ChangeEvent
}

func groupByKind(events []pipeline.ChangeEvent) []kindGroup {
	var groups []kindGroup
	index := make(map[pipeline.Kind]int)
	for _, ev := range events {
		i, ok := index[ev.Kind]
		if !ok {
			i = len(groups)
			index[ev.Kind] = i
			groups = append(groups, kindGroup{kind: ev.Kind})
		}
		groups[i].events = append(groups[i].events, ev)
	}
	return groups
}
