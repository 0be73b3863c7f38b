// Package kafka carries change events over Kafka: one topic per event kind,
// records keyed by "<provider>/<principal>" so a pair stays on one partition.
package kafka

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/twmb/franz-go/pkg/kadm"
	"github.com/twmb/franz-go/pkg/kerr"
	"github.com/twmb/franz-go/pkg/kgo"

	"idbridge/internal/pipeline"
)

// Config selects brokers and naming.
type Config struct {
	Brokers     []string
	TopicPrefix string
	Group       string
	Partitions  int32
	Replication int16
}

// Producer publishes change events without waiting for broker acks.
type Producer struct {
	client *kgo.Client
	topics Topics
	logger *slog.Logger
}

type Option func(*options)

type options struct {
	logger *slog.Logger
}

func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

func buildOptions(opts []Option) options {
	o := options{logger: slog.Default()}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

func NewProducer(cfg Config, opts ...Option) (*Producer, error) {
	o := buildOptions(opts)
	client, err := kgo.NewClient(kgo.SeedBrokers(cfg.Brokers...))
	if err != nil {
		return nil, fmt.Errorf("create kafka producer: %w", err)
	}
	return &Producer{
		client: client,
		topics: NewTopics(cfg.TopicPrefix),
		logger: o.logger,
	}, nil
}

// Publish buffers the record and returns. Delivery failures are logged from
// the produce callback.
func (p *Producer) Publish(ctx context.Context, ev pipeline.ChangeEvent) error {
	value, err := pipeline.Encode(ev)
	if err != nil {
		return err
	}
	record := &kgo.Record{
		Topic: p.topics.For(ev.Kind),
		Key:   []byte(ev.ProviderName + "/" + ev.PrincipalID),
		Value: value,
	}
	// the caller's request context ends as soon as Publish returns
	p.client.Produce(context.WithoutCancel(ctx), record, func(r *kgo.Record, err error) {
		if err != nil {
			p.logger.Error("failed to produce change event",
				"topic", r.Topic,
				"error", err,
			)
		}
	})
	return nil
}

// Close flushes buffered records and closes the client.
func (p *Producer) Close(ctx context.Context) error {
	err := p.client.Flush(ctx)
	p.client.Close()
	return err
}

// EnsureTopics creates every event topic that does not exist yet.
func EnsureTopics(ctx context.Context, cfg Config) error {
	client, err := kgo.NewClient(kgo.SeedBrokers(cfg.Brokers...))
	if err != nil {
		return fmt.Errorf("create kafka admin client: %w", err)
	}
	defer client.Close()

	partitions, replication := cfg.Partitions, cfg.Replication
	if partitions <= 0 {
		partitions = 1
	}
	if replication <= 0 {
		replication = 1
	}

	adm := kadm.NewClient(client)
	resps, err := adm.CreateTopics(ctx, partitions, replication, nil, NewTopics(cfg.TopicPrefix).All()...)
	if err != nil {
		return fmt.Errorf("create topics: %w", err)
	}
	for _, r := range resps.Sorted() {
		if r.Err != nil && !errors.Is(r.Err, kerr.TopicAlreadyExists) {
			return fmt.Errorf("create topic %s: %w", r.Topic, r.Err)
		}
	}
	return nil
}
