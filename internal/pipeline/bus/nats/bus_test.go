package nats

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	nats "github.com/nats-io/nats.go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"idbridge/internal/pipeline"
)

type captured struct {
	kinds []pipeline.Kind
	sizes []int
}

func (c *captured) HandleBatch(_ context.Context, kind pipeline.Kind, batch []pipeline.ChangeEvent) error {
	c.kinds = append(c.kinds, kind)
	c.sizes = append(c.sizes, len(batch))
	if kind == pipeline.KindLogCreate {
		return errors.New("denied")
	}
	return nil
}

func msg(t *testing.T, ev pipeline.ChangeEvent) *nats.Msg {
	t.Helper()
	data, err := pipeline.Encode(ev)
	require.NoError(t, err)
	return &nats.Msg{Subject: "idbridge.events." + ev.Kind.String(), Data: data}
}

func TestDeliverGroupsAndSkipsMalformed(t *testing.T) {
	sink := &captured{}
	sub := &Subscriber{handler: sink, batchSize: defaultBatchSize, logger: discardLogger()}

	sub.deliver(context.Background(), []*nats.Msg{
		msg(t, pipeline.ChangeEvent{Kind: pipeline.KindMappingTouch, ProviderName: "Acme", PrincipalID: "u1"}),
		{Subject: "idbridge.events.mapping_touch", Data: []byte("{not json")},
		msg(t, pipeline.ChangeEvent{Kind: pipeline.KindLogCreate, ProviderName: "Acme", PrincipalID: "u1"}),
		msg(t, pipeline.ChangeEvent{Kind: pipeline.KindMappingTouch, ProviderName: "Acme", PrincipalID: "u2"}),
	})

	assert.Equal(t, []pipeline.Kind{pipeline.KindMappingTouch, pipeline.KindLogCreate}, sink.kinds)
	assert.Equal(t, []int{2, 1}, sink.sizes)
}

func TestConstructorsRejectNilConnection(t *testing.T) {
	_, err := NewPublisher(nil, "idbridge.events")
	assert.Error(t, err)
	_, err = NewSubscriber(nil, "idbridge.events", "writers", &captured{})
	assert.Error(t, err)
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
