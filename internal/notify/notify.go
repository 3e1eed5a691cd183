package notify

import (
	"context"
	"time"

	"catalog-service/internal/broker"
	"catalog-service/internal/models"
	"catalog-service/internal/util"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Sink is a one-way message-send capability. Implementations never report
// delivery outcome to callers beyond the immediate hand-off error, and the
// core ignores even that.
type Sink interface {
	Send(ctx context.Context, destination, body string) error
}

// KafkaSink hands messages to the outbound topic. A delivery worker drains
// the topic; from here on the message is out of our hands.
type KafkaSink struct {
	producer *broker.Producer
	logger   *zap.Logger
}

// NewKafkaSink creates a Kafka-backed notification sink
func NewKafkaSink(producer *broker.Producer) *KafkaSink {
	return &KafkaSink{
		producer: producer,
		logger:   util.GetLogger(),
	}
}

// Send publishes one outbound message. An empty destination means messaging
// is disabled; the message is dropped silently.
func (s *KafkaSink) Send(ctx context.Context, destination, body string) error {
	if destination == "" {
		s.logger.Info("No contact destination configured, dropping message")
		util.NotificationsDroppedTotal.Inc()
		return nil
	}

	msg := models.OutboundMessage{
		MessageID:   uuid.New().String(),
		Destination: destination,
		Body:        body,
		CreatedAt:   time.Now(),
	}

	if err := s.producer.Publish(ctx, destination, msg); err != nil {
		util.NotificationsFailedTotal.Inc()
		return err
	}

	util.NotificationsPublishedTotal.Inc()
	return nil
}
