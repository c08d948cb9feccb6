package messaging

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/sirupsen/logrus"

	"github.com/Thalavaimanikandan/Karma-Recommendation-System/internal/config"
	"github.com/Thalavaimanikandan/Karma-Recommendation-System/pkg/models"
)

// InteractionStream publishes every tracked interaction event to Kafka for
// downstream analytics. Publishing is fire-and-forget from the caller's
// point of view: a broker failure is logged and absorbed, never surfaced.
type InteractionStream struct {
	writer  *kafka.Writer
	logger  *logrus.Logger
	enabled bool
}

func NewInteractionStream(cfg *config.Config, logger *logrus.Logger) *InteractionStream {
	if !cfg.Kafka.Enabled {
		logger.Info("Kafka interaction stream disabled")
		return &InteractionStream{logger: logger}
	}

	writer := &kafka.Writer{
		Addr:         kafka.TCP(cfg.Kafka.Brokers...),
		Topic:        cfg.Kafka.Topics.InteractionEvents,
		Balancer:     &kafka.Hash{}, // key by user for per-user ordering
		RequiredAcks: kafka.RequireOne,
		Async:        true,
		BatchTimeout: 10 * time.Millisecond,
		BatchSize:    100,
	}

	return &InteractionStream{
		writer:  writer,
		logger:  logger,
		enabled: true,
	}
}

func (s *InteractionStream) Publish(ctx context.Context, event *models.InteractionEvent) error {
	if !s.enabled {
		return nil
	}

	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal interaction event: %w", err)
	}

	msg := kafka.Message{
		Key:   []byte(event.UserID),
		Value: payload,
		Headers: []kafka.Header{
			{Key: "action", Value: []byte(event.Action)},
			{Key: "timestamp", Value: []byte(event.Timestamp.Format(time.RFC3339))},
		},
	}

	writeCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := s.writer.WriteMessages(writeCtx, msg); err != nil {
		return fmt.Errorf("failed to publish interaction event: %w", err)
	}

	s.logger.WithFields(logrus.Fields{
		"user_id": event.UserID,
		"item_id": event.ItemID,
		"action":  event.Action,
	}).Debug("Published interaction event")

	return nil
}

func (s *InteractionStream) Close() error {
	if s.writer == nil {
		return nil
	}
	return s.writer.Close()
}
