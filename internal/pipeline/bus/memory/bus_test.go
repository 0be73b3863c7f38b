package memory

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"idbridge/internal/pipeline"
)

type recorder struct {
	mu      sync.Mutex
	batches [][]pipeline.ChangeEvent
	kinds   []pipeline.Kind
	fail    pipeline.Kind
}

func (r *recorder) HandleBatch(_ context.Context, kind pipeline.Kind, batch []pipeline.ChangeEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.kinds = append(r.kinds, kind)
	r.batches = append(r.batches, append([]pipeline.ChangeEvent(nil), batch...))
	if kind == r.fail {
		return errors.New("denied")
	}
	return nil
}

func (r *recorder) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, b := range r.batches {
		n += len(b)
	}
	return n
}

func event(kind pipeline.Kind, principal string) pipeline.ChangeEvent {
	return pipeline.ChangeEvent{Kind: kind, ProviderName: "Acme", PrincipalID: principal}
}

func TestPublishDoesNotDeliver(t *testing.T) {
	rec := &recorder{}
	bus := New(rec)

	require.NoError(t, bus.Publish(context.Background(), event(pipeline.KindLogCreate, "u1")))
	assert.Equal(t, 1, bus.Pending())
	assert.Zero(t, rec.count())
}

func TestDeliverGroupsByKind(t *testing.T) {
	rec := &recorder{}
	bus := New(rec, WithBatchSize(2))
	ctx := context.Background()

	for _, ev := range []pipeline.ChangeEvent{
		event(pipeline.KindMappingTouch, "u1"),
		event(pipeline.KindLogCreate, "u1"),
		event(pipeline.KindMappingTouch, "u2"),
		event(pipeline.KindMappingTouch, "u3"),
	} {
		require.NoError(t, bus.Publish(ctx, ev))
	}

	require.NoError(t, bus.Deliver(ctx))
	assert.Equal(t, []pipeline.Kind{pipeline.KindMappingTouch, pipeline.KindMappingTouch, pipeline.KindLogCreate}, rec.kinds)
	assert.Len(t, rec.batches[0], 2)
	assert.Len(t, rec.batches[1], 1)
	assert.Zero(t, bus.Pending())
}

func TestDeliverReportsFailedBatchesAndContinues(t *testing.T) {
	rec := &recorder{fail: pipeline.KindLogCreate}
	bus := New(rec)
	ctx := context.Background()
	require.NoError(t, bus.Publish(ctx, event(pipeline.KindLogCreate, "u1")))
	require.NoError(t, bus.Publish(ctx, event(pipeline.KindMappingTouch, "u1")))

	err := bus.Deliver(ctx)
	require.Error(t, err)
	assert.Equal(t, 2, rec.count())
	assert.Zero(t, bus.Pending(), "failed batches are not redelivered")
}

func TestPublishRejectsWhenFull(t *testing.T) {
	bus := New(&recorder{}, WithCapacity(1))
	ctx := context.Background()

	require.NoError(t, bus.Publish(ctx, event(pipeline.KindLogCreate, "u1")))
	assert.ErrorIs(t, bus.Publish(ctx, event(pipeline.KindLogCreate, "u2")), ErrOutboxFull)
}

func TestRunDeliversAndDrainsOnShutdown(t *testing.T) {
	rec := &recorder{}
	bus := New(rec, WithLinger(time.Millisecond))
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() { done <- bus.Run(ctx) }()

	require.NoError(t, bus.Publish(ctx, event(pipeline.KindLogCreate, "u1")))
	assert.Eventually(t, func() bool { return rec.count() == 1 }, time.Second, 5*time.Millisecond)

	cancel()
	require.NoError(t, <-done)
	assert.ErrorIs(t, bus.Publish(context.Background(), event(pipeline.KindLogCreate, "u2")), ErrClosed)
}
