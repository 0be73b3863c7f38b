// Package pipeline is the event-sourced write path. Publishers validate,
// authorize and truncate a requested write, then hand a ChangeEvent to a
// Bus and return. A Consumer, running as a privileged writer, applies
// delivered batches to the stores.
package pipeline

import "context"

// Bus accepts change events for asynchronous delivery. Publish returns once
// the event is handed off; it never waits for persistence and gives no
// ordering guarantee relative to the caller's later reads.
type Bus interface {
	Publish(ctx context.Context, ev ChangeEvent) error
}

// BatchHandler applies a batch of events that share a kind.
type BatchHandler interface {
	HandleBatch(ctx context.Context, kind Kind, batch []ChangeEvent) error
}

// BatchHandlerFunc adapts a function to BatchHandler.
type BatchHandlerFunc func(ctx context.Context, kind Kind, batch []ChangeEvent) error

func (f BatchHandlerFunc) HandleBatch(ctx context.Context, kind Kind, batch []ChangeEvent) error {
	return f(ctx, kind, batch)
}
