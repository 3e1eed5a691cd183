package worker

import (
	"context"
	"encoding/json"
	"log"

	"catalog-service/internal/broker"
	"catalog-service/internal/models"
	"catalog-service/internal/util"

	"github.com/segmentio/kafka-go"
)

// DeliveryWorker drains the outbound message topic. It stands in for the
// external messaging channel: once a message lands here, the catalog core
// already considers it sent.
type DeliveryWorker struct {
	consumer *broker.Consumer
}

// NewDeliveryWorker creates a new delivery worker
func NewDeliveryWorker(consumer *broker.Consumer) *DeliveryWorker {
	return &DeliveryWorker{consumer: consumer}
}

// Start starts the worker
func (w *DeliveryWorker) Start(ctx context.Context) error {
	log.Println("Starting delivery worker...")

	return w.consumer.StartConsuming(ctx, func(ctx context.Context, msg kafka.Message) error {
		var outbound models.OutboundMessage
		if err := json.Unmarshal(msg.Value, &outbound); err != nil {
			log.Printf("Dropping malformed outbound message: %v", err)
			return nil
		}

		log.Printf("Delivering message: id=%s, destination=%s, bytes=%d",
			outbound.MessageID, outbound.Destination, len(outbound.Body))
		util.NotificationsDeliveredTotal.Inc()
		return nil
	})
}

// Stop stops the worker
func (w *DeliveryWorker) Stop() error {
	log.Println("Stopping delivery worker...")
	return w.consumer.Close()
}
