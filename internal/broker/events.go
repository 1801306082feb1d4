package broker

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"timber-market/internal/models"

	"github.com/segmentio/kafka-go"
)

// EventPublisher handles publishing domain events
type EventPublisher struct {
	producer *Producer
}

// NewEventPublisher creates a new event publisher
func NewEventPublisher(producer *Producer) *EventPublisher {
	return &EventPublisher{producer: producer}
}

// PublishInterestDeclared publishes an InterestDeclared event
func (ep *EventPublisher) PublishInterestDeclared(ctx context.Context, event *models.InterestDeclaredEvent) error {
	key := fmt.Sprintf("suggestion-%s", event.SuggestionID)
	return ep.producer.PublishEvent(ctx, key, event)
}

// PublishDealConfirmed publishes a DealConfirmed event
func (ep *EventPublisher) PublishDealConfirmed(ctx context.Context, event *models.DealConfirmedEvent) error {
	key := fmt.Sprintf("deal-%s", event.DealID)
	return ep.producer.PublishEvent(ctx, key, event)
}

// PublishDealBilled publishes a DealBilled event
func (ep *EventPublisher) PublishDealBilled(ctx context.Context, event *models.DealBilledEvent) error {
	key := fmt.Sprintf("deal-%s", event.DealID)
	return ep.producer.PublishEvent(ctx, key, event)
}

// EventHandler routes incoming events to registered handlers
type EventHandler struct {
	onInvoiceIssued func(context.Context, *models.InvoiceIssuedEvent) error
}

// NewEventHandler creates a new event handler
func NewEventHandler() *EventHandler {
	return &EventHandler{}
}

// OnInvoiceIssued registers a handler for InvoiceIssued events
func (eh *EventHandler) OnInvoiceIssued(handler func(context.Context, *models.InvoiceIssuedEvent) error) {
	eh.onInvoiceIssued = handler
}

// HandleMessage routes messages to appropriate handlers
func (eh *EventHandler) HandleMessage(ctx context.Context, msg kafka.Message) error {
	var baseEvent models.BaseEvent
	if err := json.Unmarshal(msg.Value, &baseEvent); err != nil {
		return fmt.Errorf("failed to unmarshal base event: %w", err)
	}

	log.Printf("Handling event: type=%s, id=%s", baseEvent.EventType, baseEvent.EventID)

	switch baseEvent.EventType {
	case models.EventTypeInvoiceIssued:
		if eh.onInvoiceIssued != nil {
			var event models.InvoiceIssuedEvent
			if err := json.Unmarshal(msg.Value, &event); err != nil {
				return fmt.Errorf("failed to unmarshal InvoiceIssued event: %w", err)
			}
			return eh.onInvoiceIssued(ctx, &event)
		}

	default:
		log.Printf("Unhandled event type: %s", baseEvent.EventType)
	}

	return nil
}
