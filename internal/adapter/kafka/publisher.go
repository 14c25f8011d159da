package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	kafkago "github.com/segmentio/kafka-go"

	"github.com/couchcryptid/resilience-hubs/internal/config"
	"github.com/couchcryptid/resilience-hubs/internal/domain"
)

// messageWriter is the subset of *kafkago.Writer used by Publisher.
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafkago.Message) error
	Close() error
}

// Publisher produces hub status updates to the status topic.
type Publisher struct {
	writer messageWriter
	logger *slog.Logger
}

// NewPublisher creates a Kafka producer for the configured status topic.
func NewPublisher(cfg *config.Config, logger *slog.Logger) *Publisher {
	w := &kafkago.Writer{
		Addr:                   kafkago.TCP(cfg.KafkaBrokers...),
		Topic:                  cfg.KafkaStatusTopic,
		Balancer:               &kafkago.Hash{},
		RequiredAcks:           kafkago.RequireAll,
		AllowAutoTopicCreation: true,
	}
	return &Publisher{writer: w, logger: logger}
}

// Publish validates and writes updates in a single WriteMessages call. Updates
// are keyed by hub id so each hub's updates stay ordered on one partition.
func (p *Publisher) Publish(ctx context.Context, updates ...domain.StatusUpdate) error {
	if len(updates) == 0 {
		return nil
	}
	msgs := make([]kafkago.Message, len(updates))
	for i := range updates {
		if err := updates[i].Validate(); err != nil {
			return fmt.Errorf("invalid status update for %q: %w", updates[i].HubID, err)
		}
		msg, err := serializeToMessage(updates[i])
		if err != nil {
			return err
		}
		msgs[i] = msg
	}
	if err := p.writer.WriteMessages(ctx, msgs...); err != nil {
		return fmt.Errorf("publish status updates: %w", err)
	}
	p.logger.Info("status updates published", "count", len(msgs))
	return nil
}

func (p *Publisher) Close() error {
	return p.writer.Close()
}

// serializeToMessage marshals a StatusUpdate into a Kafka message.
func serializeToMessage(u domain.StatusUpdate) (kafkago.Message, error) {
	data, err := json.Marshal(u)
	if err != nil {
		return kafkago.Message{}, fmt.Errorf("serialize status update: %w", err)
	}
	return kafkago.Message{
		Key:   []byte(u.HubID),
		Value: data,
		Headers: []kafkago.Header{
			{Key: "open_state", Value: []byte(u.Status)},
			{Key: "last_verified", Value: []byte(u.LastVerified.UTC().Format(time.RFC3339))},
		},
	}, nil
}
