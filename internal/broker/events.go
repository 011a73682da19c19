package broker

import (
	"context"
	"encoding/json"
	"fmt"

	"ledger-service/internal/models"
	"ledger-service/internal/util"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// EventPublisher publishes ledger domain events through a Producer.
type EventPublisher struct {
	producer *Producer
}

// NewEventPublisher creates a new event publisher.
func NewEventPublisher(producer *Producer) *EventPublisher {
	return &EventPublisher{producer: producer}
}

// PublishOrderCreated publishes an order commit event keyed by order ID.
func (ep *EventPublisher) PublishOrderCreated(ctx context.Context, event *models.OrderCreatedEvent) error {
	key := fmt.Sprintf("order-%s", event.OrderID)
	return ep.producer.PublishEvent(ctx, key, event)
}

// PublishLedgerEntry publishes a receipt or payment event keyed by the
// order it settles against.
func (ep *EventPublisher) PublishLedgerEntry(ctx context.Context, event *models.LedgerEntryEvent) error {
	key := fmt.Sprintf("order-%s", event.OrderID)
	return ep.producer.PublishEvent(ctx, key, event)
}

// PublishCatalogChanged publishes a catalog mutation event keyed by the
// changed entity.
func (ep *EventPublisher) PublishCatalogChanged(ctx context.Context, event *models.CatalogChangedEvent) error {
	key := fmt.Sprintf("%s-%s", event.Entity, event.EntityID)
	return ep.producer.PublishEvent(ctx, key, event)
}

// EventHandler routes consumed ledger events to registered callbacks.
type EventHandler struct {
	logger *zap.Logger

	onOrderCreated   func(context.Context, *models.OrderCreatedEvent) error
	onLedgerEntry    func(context.Context, *models.LedgerEntryEvent) error
	onCatalogChanged func(context.Context, *models.CatalogChangedEvent) error
}

// NewEventHandler creates a new event handler.
func NewEventHandler() *EventHandler {
	return &EventHandler{logger: util.NamedLogger("events")}
}

// OnOrderCreated registers a handler for order commit events.
func (eh *EventHandler) OnOrderCreated(handler func(context.Context, *models.OrderCreatedEvent) error) {
	eh.onOrderCreated = handler
}

// OnLedgerEntry registers a handler for receipt and payment events.
func (eh *EventHandler) OnLedgerEntry(handler func(context.Context, *models.LedgerEntryEvent) error) {
	eh.onLedgerEntry = handler
}

// OnCatalogChanged registers a handler for catalog mutation events.
func (eh *EventHandler) OnCatalogChanged(handler func(context.Context, *models.CatalogChangedEvent) error) {
	eh.onCatalogChanged = handler
}

// HandleMessage routes messages to the appropriate handler.
func (eh *EventHandler) HandleMessage(ctx context.Context, msg kafka.Message) error {
	var baseEvent models.BaseEvent
	if err := json.Unmarshal(msg.Value, &baseEvent); err != nil {
		return fmt.Errorf("failed to unmarshal base event: %w", err)
	}

	eh.logger.Debug("handling event",
		zap.String("type", baseEvent.EventType),
		zap.String("id", baseEvent.EventID))

	switch baseEvent.EventType {
	case models.EventTypeSalesOrderCreated, models.EventTypePurchaseOrderCreated:
		if eh.onOrderCreated != nil {
			var event models.OrderCreatedEvent
			if err := json.Unmarshal(msg.Value, &event); err != nil {
				return fmt.Errorf("failed to unmarshal order event: %w", err)
			}
			return eh.onOrderCreated(ctx, &event)
		}

	case models.EventTypeReceiptRecorded, models.EventTypePaymentRecorded:
		if eh.onLedgerEntry != nil {
			var event models.LedgerEntryEvent
			if err := json.Unmarshal(msg.Value, &event); err != nil {
				return fmt.Errorf("failed to unmarshal ledger entry event: %w", err)
			}
			return eh.onLedgerEntry(ctx, &event)
		}

	case models.EventTypeCatalogChanged:
		if eh.onCatalogChanged != nil {
			var event models.CatalogChangedEvent
			if err := json.Unmarshal(msg.Value, &event); err != nil {
				return fmt.Errorf("failed to unmarshal catalog event: %w", err)
			}
			return eh.onCatalogChanged(ctx, &event)
		}

	default:
		eh.logger.Warn("unhandled event type", zap.String("type", baseEvent.EventType))
	}

	return nil
}
