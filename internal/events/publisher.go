package events

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/papershack/storefront-orders-service/internal/config"
	"github.com/papershack/storefront-orders-service/internal/models"
	"github.com/papershack/storefront-orders-service/internal/service"
)

var _ service.EventPublisher = (*KafkaPublisher)(nil)

// EventType identifies an order event on the wire.
type EventType string

const EventTypeOrderConfirmed EventType = "order.confirmed"

// OrderEvent is the envelope published for order lifecycle changes.
type OrderEvent struct {
	ID              string          `json:"id"`
	Type            EventType       `json:"type"`
	OrderID         string          `json:"order_id"`
	AuthorizationID string          `json:"authorization_id"`
	Data            json.RawMessage `json:"data"`
	Timestamp       time.Time       `json:"timestamp"`
}

// KafkaPublisher publishes order events to Kafka. Publishing is
// best-effort: the order is already committed by the time an event goes
// out, and a broker failure never unwinds it.
type KafkaPublisher struct {
	writer *kafka.Writer
	logger *zap.Logger
}

// NewKafkaPublisher creates a new Kafka-based event publisher.
func NewKafkaPublisher(cfg config.KafkaConfig, logger *zap.Logger) *KafkaPublisher {
	writer := &kafka.Writer{
		Addr:         kafka.TCP(cfg.Brokers...),
		Topic:        cfg.OrdersTopic,
		Balancer:     &kafka.LeastBytes{},
		WriteTimeout: 10 * time.Second,
		RequiredAcks: kafka.RequireOne,
	}

	return &KafkaPublisher{
		writer: writer,
		logger: logger,
	}
}

// PublishOrderConfirmed publishes an order confirmed event keyed by order id.
func (p *KafkaPublisher) PublishOrderConfirmed(ctx context.Context, order *models.Order) error {
	data, err := json.Marshal(order)
	if err != nil {
		return err
	}

	event := &OrderEvent{
		ID:              "evt_" + uuid.NewString(),
		Type:            EventTypeOrderConfirmed,
		OrderID:         order.ID,
		AuthorizationID: order.AuthorizationID,
		Data:            data,
		Timestamp:       time.Now().UTC(),
	}

	eventData, err := json.Marshal(event)
	if err != nil {
		return err
	}

	msg := kafka.Message{
		Key:   []byte(event.OrderID),
		Value: eventData,
		Headers: []kafka.Header{
			{Key: "event_type", Value: []byte(event.Type)},
			{Key: "event_id", Value: []byte(event.ID)},
		},
	}

	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		p.logger.Error("Failed to publish event",
			zap.String("event_id", event.ID),
			zap.String("order_id", event.OrderID),
			zap.Error(err),
		)
		return err
	}

	p.logger.Info("Event published",
		zap.String("event_id", event.ID),
		zap.String("order_id", event.OrderID),
	)

	return nil
}

// Close closes the Kafka writer.
func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}
