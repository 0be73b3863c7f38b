package main

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/nats-io/nats.go"

	"idbridge/internal/pipeline"
	"idbridge/internal/pipeline/bus/kafka"
	"idbridge/internal/pipeline/bus/memory"
	natsbus "idbridge/internal/pipeline/bus/nats"
	"idbridge/internal/platform/config"
)

const producerFlushTimeout = 5 * time.Second

// eventChannel is the configured change-event transport plus the
// goroutines that deliver it.
type eventChannel struct {
	bus     pipeline.Bus
	workers []func(ctx context.Context) error
	closers []func()
}

func (e *eventChannel) close() {
	for i := len(e.closers) - 1; i >= 0; i-- {
		e.closers[i]()
	}
}

func openBus(ctx context.Context, cfg config.EventsConfig, handler pipeline.BatchHandler, log *slog.Logger) (*eventChannel, error) {
	switch strings.ToLower(cfg.Bus) {
	case config.BusKafka:
		return openKafka(ctx, cfg, handler, log)
	case config.BusNATS:
		return openNATS(cfg, handler, log)
	default:
		bus := memory.New(handler,
			memory.WithCapacity(cfg.BufferSize),
			memory.WithBatchSize(cfg.BatchSize),
			memory.WithLinger(cfg.FlushInterval),
			memory.WithLogger(log),
		)
		return &eventChannel{bus: bus, workers: []func(context.Context) error{bus.Run}}, nil
	}
}

func openKafka(ctx context.Context, cfg config.EventsConfig, handler pipeline.BatchHandler, log *slog.Logger) (*eventChannel, error) {
	kcfg := kafka.Config{
		Brokers:     cfg.KafkaBrokers,
		TopicPrefix: cfg.KafkaTopicPrefix,
		Group:       cfg.KafkaGroup,
	}
	if err := kafka.EnsureTopics(ctx, kcfg); err != nil {
		return nil, err
	}
	producer, err := kafka.NewProducer(kcfg, kafka.WithLogger(log))
	if err != nil {
		return nil, err
	}
	consumer, err := kafka.NewConsumer(kcfg, handler, kafka.WithLogger(log))
	if err != nil {
		_ = producer.Close(ctx)
		return nil, err
	}
	return &eventChannel{
		bus:     producer,
		workers: []func(context.Context) error{consumer.Run},
		closers: []func(){func() {
			flushCtx, cancel := context.WithTimeout(context.Background(), producerFlushTimeout)
			defer cancel()
			if err := producer.Close(flushCtx); err != nil {
				log.Warn("kafka producer flush failed", "error", err)
			}
		}},
	}, nil
}

func openNATS(cfg config.EventsConfig, handler pipeline.BatchHandler, log *slog.Logger) (*eventChannel, error) {
	conn, err := nats.Connect(cfg.NATSURL, nats.Name("idbridge"))
	if err != nil {
		return nil, fmt.Errorf("connect nats: %w", err)
	}
	publisher, err := natsbus.NewPublisher(conn, cfg.NATSSubjectPrefix)
	if err != nil {
		conn.Close()
		return nil, err
	}
	subscriber, err := natsbus.NewSubscriber(conn, cfg.NATSSubjectPrefix, cfg.NATSQueue, handler,
		natsbus.WithBatchSize(cfg.BatchSize),
		natsbus.WithLogger(log),
	)
	if err != nil {
		conn.Close()
		return nil, err
	}
	return &eventChannel{
		bus:     publisher,
		workers: []func(context.Context) error{subscriber.Run},
		closers: []func(){func() {
			if err := conn.Drain(); err != nil {
				conn.Close()
			}
		}},
	}, nil
}
