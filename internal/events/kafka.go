package events

import (
	"context"
	"fmt"
	"time"

	"agendador/internal/config"

	"github.com/rs/zerolog"
	"github.com/segmentio/kafka-go"
)

// KafkaWriter is the subset of kafka.Writer used by the publisher; tests
// substitute a fake.
type KafkaWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaPublisher forwards booking events to a Kafka topic. Events are keyed
// by booking ID so consumers see one booking's events in order.
type KafkaPublisher struct {
	writer KafkaWriter
	logger *zerolog.Logger
}

func NewKafkaWriter(cfg config.EventsConfig) *kafka.Writer {
	return &kafka.Writer{
		Addr:         kafka.TCP(cfg.Brokers...),
		Topic:        cfg.Topic,
		Balancer:     &kafka.Hash{}, // hash by key for per-booking ordering
		RequiredAcks: kafka.RequireAll,
		BatchTimeout: 50 * time.Millisecond,
		Logger:       kafka.LoggerFunc(func(msg string, args ...any) {}),
	}
}

func NewKafkaPublisher(writer KafkaWriter, logger *zerolog.Logger) *KafkaPublisher {
	return &KafkaPublisher{
		writer: writer,
		logger: logger,
	}
}

// Send writes a single event to the topic.
func (p *KafkaPublisher) Send(ctx context.Context, event *Event, key string) error {
	msg := kafka.Message{
		Key:   []byte(key),
		Value: event.Payload,
		Time:  event.CreatedAt,
		Headers: []kafka.Header{
			{Key: "event_type", Value: []byte(event.Type)},
		},
	}

	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("failed to write event to kafka: %w", err)
	}

	p.logger.Debug().Str("event_type", event.Type).Str("key", key).Msg("event delivered to kafka")
	return nil
}

func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}
