package kafka

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/twmb/franz-go/pkg/kgo"

	"idbridge/internal/pipeline"
	dErrors "idbridge/pkg/domain-errors"
)

type commitLog struct {
	committed []*kgo.Record
}

func (l *commitLog) commit(_ context.Context, records ...*kgo.Record) error {
	l.committed = append(l.committed, records...)
	return nil
}

func (l *commitLog) topics() []string {
	var out []string
	for _, r := range l.committed {
		out = append(out, r.Topic)
	}
	return out
}

func newTestConsumer(handler pipeline.BatchHandler, log *commitLog) *Consumer {
	return &Consumer{
		topics:  NewTopics("t."),
		handler: handler,
		commit:  log.commit,
		logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
}

func record(t *testing.T, topics Topics, kind pipeline.Kind) *kgo.Record {
	t.Helper()
	value, err := pipeline.Encode(pipeline.ChangeEvent{Kind: kind, ProviderName: "Acme", PrincipalID: "u1"})
	require.NoError(t, err)
	return &kgo.Record{Topic: topics.For(kind), Value: value}
}

func TestHandleCommitsEachKindAfterItsBatch(t *testing.T) {
	log := &commitLog{}
	var applied []pipeline.Kind
	c := newTestConsumer(pipeline.BatchHandlerFunc(func(_ context.Context, kind pipeline.Kind, _ []pipeline.ChangeEvent) error {
		applied = append(applied, kind)
		if kind == pipeline.KindMappingTouch {
			return errors.New("database unavailable")
		}
		return nil
	}), log)

	records := []*kgo.Record{
		record(t, c.topics, pipeline.KindLogCreate),
		record(t, c.topics, pipeline.KindMappingTouch),
		record(t, c.topics, pipeline.KindLoginHistoryCreate),
	}
	err := c.handle(context.Background(), records)
	require.Error(t, err)

	assert.Equal(t, []pipeline.Kind{pipeline.KindLogCreate, pipeline.KindMappingTouch}, applied)
	assert.Equal(t, []string{"t.log_create"}, log.topics(),
		"a kind applied before the failure must not be redelivered")
}

func TestHandleCommitsForbiddenBatch(t *testing.T) {
	log := &commitLog{}
	c := newTestConsumer(pipeline.BatchHandlerFunc(func(context.Context, pipeline.Kind, []pipeline.ChangeEvent) error {
		return dErrors.New(dErrors.CodeForbidden, "writer lacks access")
	}), log)

	require.NoError(t, c.handle(context.Background(), []*kgo.Record{record(t, c.topics, pipeline.KindLogCreate)}))
	assert.Equal(t, []string{"t.log_create"}, log.topics())
}

func TestHandleCommitsUndecodableAndStrayRecords(t *testing.T) {
	log := &commitLog{}
	calls := 0
	c := newTestConsumer(pipeline.BatchHandlerFunc(func(context.Context, pipeline.Kind, []pipeline.ChangeEvent) error {
		calls++
		return nil
	}), log)

	records := []*kgo.Record{
		{Topic: c.topics.For(pipeline.KindLogCreate), Value: []byte("not json")},
		{Topic: "elsewhere", Value: []byte("{}")},
	}
	require.NoError(t, c.handle(context.Background(), records))

	assert.Zero(t, calls)
	assert.ElementsMatch(t, []string{"t.log_create", "elsewhere"}, log.topics())
}
