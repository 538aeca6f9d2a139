// Package consumer reads token records from Kafka and feeds them to the
// index builder. Consumption ends once the topic has been idle for the
// configured timeout, which marks the end of the batch build phase.
package consumer

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/Adithya-Monish-Kumar-K/Inverted-Index-Retrieval-Engine/internal/indexer/index"
	"github.com/Adithya-Monish-Kumar-K/Inverted-Index-Retrieval-Engine/pkg/config"
	"github.com/Adithya-Monish-Kumar-K/Inverted-Index-Retrieval-Engine/pkg/kafka"
)

// Source is a token stream backed by a Kafka topic.
type Source struct {
	cfg    config.KafkaConfig
	logger *slog.Logger
}

func NewSource(cfg config.KafkaConfig) *Source {
	return &Source{
		cfg:    cfg,
		logger: slog.Default().With("component", "token-consumer"),
	}
}

// Records drains the token stream topic, calling fn for every decoded record.
func (s *Source) Records(ctx context.Context, fn func(index.TokenRecord) error) error {
	c := kafka.NewConsumer(s.cfg, s.cfg.Topics.TokenStream, HandleMessage(fn))
	defer c.Close()

	idle := s.cfg.IdleTimeout
	if idle <= 0 {
		idle = 10 * time.Second
	}
	n, err := c.Drain(ctx, idle)
	if err != nil {
		return fmt.Errorf("consuming %s: %w", s.cfg.Topics.TokenStream, err)
	}
	s.logger.Info("token stream consumed", "topic", s.cfg.Topics.TokenStream, "messages", n)
	return nil
}

func (s *Source) String() string {
	return "kafka:" + s.cfg.Topics.TokenStream
}

// HandleMessage returns a kafka.MessageHandler that decodes a TokenRecord and
// passes it to fn. Undecodable messages are logged and skipped; errors from
// fn stop consumption.
func HandleMessage(fn func(index.TokenRecord) error) kafka.MessageHandler {
	logger := slog.Default().With("component", "token-consumer")
	return func(ctx context.Context, key []byte, value []byte) error {
		rec, err := kafka.DecodeJSON[index.TokenRecord](value)
		if err != nil {
			logger.Error("failed to decode token record",
				"error", err,
				"key", string(key),
			)
			return nil
		}
		if err := fn(rec); err != nil {
			return fmt.Errorf("indexing record %s: %w", rec.DocID, err)
		}
		logger.Debug("token record indexed", "doc_id", rec.DocID, "tokens", len(rec.Tokens))
		return nil
	}
}
