package broker

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"storefront-orders/internal/models"

	"github.com/segmentio/kafka-go"
)

// EventPublisher handles publishing order domain events. Events are
// keyed by order id so the per-order sequence stays ordered within a
// partition.
type EventPublisher struct {
	producer *Producer
}

// NewEventPublisher creates a new event publisher
func NewEventPublisher(producer *Producer) *EventPublisher {
	return &EventPublisher{producer: producer}
}

// PublishOrderRecorded publishes an OrderRecorded event
func (ep *EventPublisher) PublishOrderRecorded(ctx context.Context, event *models.OrderRecordedEvent) error {
	key := fmt.Sprintf("order-%d", event.OrderID)
	return ep.producer.PublishEvent(ctx, key, event)
}

// PublishCaptureReplayed publishes a CaptureReplayed event
func (ep *EventPublisher) PublishCaptureReplayed(ctx context.Context, event *models.CaptureReplayedEvent) error {
	key := fmt.Sprintf("order-%d", event.OrderID)
	return ep.producer.PublishEvent(ctx, key, event)
}

// PublishStatusChanged publishes a StatusChanged event
func (ep *EventPublisher) PublishStatusChanged(ctx context.Context, event *models.StatusChangedEvent) error {
	key := fmt.Sprintf("order-%d", event.OrderID)
	return ep.producer.PublishEvent(ctx, key, event)
}

// EventHandler routes consumed order events to registered handlers
type EventHandler struct {
	onOrderRecorded   func(context.Context, *models.OrderRecordedEvent) error
	onCaptureReplayed func(context.Context, *models.CaptureReplayedEvent) error
	onStatusChanged   func(context.Context, *models.StatusChangedEvent) error
}

// NewEventHandler creates a new event handler
func NewEventHandler() *EventHandler {
	return &EventHandler{}
}

// OnOrderRecorded registers a handler for OrderRecorded events
func (eh *EventHandler) OnOrderRecorded(handler func(context.Context, *models.OrderRecordedEvent) error) {
	eh.onOrderRecorded = handler
}

// OnCaptureReplayed registers a handler for CaptureReplayed events
func (eh *EventHandler) OnCaptureReplayed(handler func(context.Context, *models.CaptureReplayedEvent) error) {
	eh.onCaptureReplayed = handler
}

// OnStatusChanged registers a handler for StatusChanged events
func (eh *EventHandler) OnStatusChanged(handler func(context.Context, *models.StatusChangedEvent) error) {
	eh.onStatusChanged = handler
}

// HandleMessage routes messages to appropriate handlers
func (eh *EventHandler) HandleMessage(ctx context.Context, msg kafka.Message) error {
	var baseEvent models.BaseEvent
	if err := json.Unmarshal(msg.Value, &baseEvent); err != nil {
		return fmt.Errorf("failed to unmarshal base event: %w", err)
	}

	switch baseEvent.EventType {
	case models.EventTypeOrderRecorded:
		if eh.onOrderRecorded != nil {
			var event models.OrderRecordedEvent
			if err := json.Unmarshal(msg.Value, &event); err != nil {
				return fmt.Errorf("failed to unmarshal OrderRecorded event: %w", err)
			}
			return eh.onOrderRecorded(ctx, &event)
		}

	case models.EventTypeCaptureReplayed:
		if eh.onCaptureReplayed != nil {
			var event models.CaptureReplayedEvent
			if err := json.Unmarshal(msg.Value, &event); err != nil {
				return fmt.Errorf("failed to unmarshal CaptureReplayed event: %w", err)
			}
			return eh.onCaptureReplayed(ctx, &event)
		}

	case models.EventTypeStatusChanged:
		if eh.onStatusChanged != nil {
			var event models.StatusChangedEvent
			if err := json.Unmarshal(msg.Value, &event); err != nil {
				return fmt.Errorf("failed to unmarshal StatusChanged event: %w", err)
			}
			return eh.onStatusChanged(ctx, &event)
		}

	default:
		log.Printf("Unhandled event type: %s", baseEvent.EventType)
	}

	return nil
}
