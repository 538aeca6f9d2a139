package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/Adithya-Monish-Kumar-K/Inverted-Index-Retrieval-Engine/pkg/config"
)

// Event is one message to publish. Key drives partition hashing, so token
// records keyed by doc_id keep a document's records on one partition. Value
// is JSON-serialised.
type Event struct {
	Key   string
	Value any
}

// Producer publishes JSON-encoded events to a Kafka topic. Events passed to
// Add are buffered and written in batches of batchSize.
type Producer struct {
	writer    *kafka.Writer
	logger    *slog.Logger
	batchSize int
	pending   []kafka.Message
	published int
}

// NewProducer creates a Producer for the given topic.
func NewProducer(cfg config.KafkaConfig, topic string) *Producer {
	w := &kafka.Writer{
		Addr:                   kafka.TCP(cfg.Brokers...),
		Topic:                  topic,
		Balancer:               &kafka.Hash{},
		BatchSize:              100,
		BatchTimeout:           10 * time.Millisecond,
		MaxAttempts:            3,
		RequiredAcks:           kafka.RequireAll,
		AllowAutoTopicCreation: true,
	}
	return &Producer{
		writer:    w,
		logger:    slog.Default().With("component", "kafka-producer", "topic", topic),
		batchSize: 100,
	}
}

// Publish writes events synchronously in one call.
func (p *Producer) Publish(ctx context.Context, events ...Event) error {
	messages := make([]kafka.Message, 0, len(events))
	for _, event := range events {
		msg, err := encode(event)
		if err != nil {
			return err
		}
		messages = append(messages, msg)
	}
	return p.write(ctx, messages)
}

// Add buffers an event and writes the buffer once it holds batchSize events.
func (p *Producer) Add(ctx context.Context, event Event) error {
	msg, err := encode(event)
	if err != nil {
		return err
	}
	p.pending = append(p.pending, msg)
	if len(p.pending) < p.batchSize {
		return nil
	}
	return p.Flush(ctx)
}

// Flush writes any buffered events.
func (p *Producer) Flush(ctx context.Context) error {
	if len(p.pending) == 0 {
		return nil
	}
	batch := p.pending
	p.pending = nil
	return p.write(ctx, batch)
}

// Published returns how many messages have been written.
func (p *Producer) Published() int {
	return p.published
}

func (p *Producer) write(ctx context.Context, messages []kafka.Message) error {
	if err := p.writer.WriteMessages(ctx, messages...); err != nil {
		p.logger.Error("failed to publish batch",
			"count", len(messages),
			"error", err,
		)
		return fmt.Errorf("publishing to kafka: %w", err)
	}
	p.published += len(messages)
	p.logger.Debug("batch published", "count", len(messages))
	return nil
}

func encode(event Event) (kafka.Message, error) {
	value, err := json.Marshal(event.Value)
	if err != nil {
		return kafka.Message{}, fmt.Errorf("marshaling event %q: %w", event.Key, err)
	}
	return kafka.Message{Key: []byte(event.Key), Value: value}, nil
}

// Close closes the underlying writer. Buffered events not yet flushed are
// dropped.
func (p *Producer) Close() error {
	return p.writer.Close()
}
