package kafka

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/twmb/franz-go/pkg/kgo"

	"idbridge/internal/pipeline"
	dErrors "idbridge/pkg/domain-errors"
)

// Consumer reads every event topic in a consumer group and hands each
// poll's records to the handler, one batch per kind.
//
// Each kind lives on its own topic, so offsets are committed per kind as
// soon as that kind's batch is applied. An access-denied batch is committed
// (it would fail again); any other failure stops the consumer with that
// kind and every later kind of the poll uncommitted, so only those records
// are redelivered after restart.
type Consumer struct {
	client  *kgo.Client
	topics  Topics
	handler pipeline.BatchHandler
	commit  func(ctx context.Context, records ...*kgo.Record) error
	logger  *slog.Logger
}

func NewConsumer(cfg Config, handler pipeline.BatchHandler, opts ...Option) (*Consumer, error) {
	o := buildOptions(opts)
	topics := NewTopics(cfg.TopicPrefix)
	client, err := kgo.NewClient(
		kgo.SeedBrokers(cfg.Brokers...),
		kgo.ConsumerGroup(cfg.Group),
		kgo.ConsumeTopics(topics.All()...),
		kgo.DisableAutoCommit(),
	)
	if err != nil {
		return nil, fmt.Errorf("create kafka consumer: %w", err)
	}
	return &Consumer{
		client:  client,
		topics:  topics,
		handler: handler,
		commit:  client.CommitRecords,
		logger:  o.logger,
	}, nil
}

// Run polls until ctx is cancelled.
func (c *Consumer) Run(ctx context.Context) error {
	defer c.client.Close()
	for {
		fetches := c.client.PollFetches(ctx)
		if fetches.IsClientClosed() || ctx.Err() != nil {
			return nil
		}
		fetches.EachError(func(topic string, partition int32, err error) {
			c.logger.ErrorContext(ctx, "kafka fetch error",
				"topic", topic,
				"partition", partition,
				"error", err,
			)
		})

		var records []*kgo.Record
		fetches.EachRecord(func(r *kgo.Record) {
			records = append(records, r)
		})
		if len(records) == 0 {
			continue
		}

		if err := c.handle(ctx, records); err != nil {
			return err
		}
	}
}

// kindBatch holds the decoded events of one kind and every record read from
// that kind's topic, including ones that failed to decode.
type kindBatch struct {
	events  []pipeline.ChangeEvent
	records []*kgo.Record
}

func (c *Consumer) handle(ctx context.Context, records []*kgo.Record) error {
	batches := make(map[pipeline.Kind]*kindBatch)
	var order []pipeline.Kind
	var stray []*kgo.Record
	for _, r := range records {
		kind, ok := c.topics.KindOf(r.Topic)
		if !ok {
			c.logger.WarnContext(ctx, "record on unknown topic, skipping", "topic", r.Topic)
			stray = append(stray, r)
			continue
		}
		b, seen := batches[kind]
		if !seen {
			b = &kindBatch{}
			batches[kind] = b
			order = append(order, kind)
		}
		b.records = append(b.records, r)

		ev, err := pipeline.Decode(r.Value)
		if err != nil {
			// malformed records must not block the partition
			c.logger.ErrorContext(ctx, "failed to decode change event",
				"topic", r.Topic,
				"offset", r.Offset,
				"error", err,
			)
			continue
		}
		b.events = append(b.events, ev)
	}
	c.commitRecords(ctx, stray)

	for _, kind := range order {
		b := batches[kind]
		if len(b.events) > 0 {
			err := c.handler.HandleBatch(ctx, kind, b.events)
			if err != nil && !dErrors.HasCode(err, dErrors.CodeForbidden) {
				return fmt.Errorf("apply %s batch: %w", kind, err)
			}
		}
		c.commitRecords(ctx, b.records)
	}
	return nil
}

func (c *Consumer) commitRecords(ctx context.Context, records []*kgo.Record) {
	if len(records) == 0 {
		return
	}
	if err := c.commit(ctx, records...); err != nil {
		c.logger.ErrorContext(ctx, "kafka commit failed", "error", err)
	}
}
