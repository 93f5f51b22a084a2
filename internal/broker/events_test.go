package broker

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"storefront-orders/internal/models"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func message(t *testing.T, event interface{}) kafka.Message {
	t.Helper()
	data, err := json.Marshal(event)
	require.NoError(t, err)
	return kafka.Message{Value: data}
}

func TestEventHandlerRoutesOrderRecorded(t *testing.T) {
	eh := NewEventHandler()

	var got *models.OrderRecordedEvent
	eh.OnOrderRecorded(func(ctx context.Context, event *models.OrderRecordedEvent) error {
		got = event
		return nil
	})

	event := &models.OrderRecordedEvent{
		BaseEvent: models.BaseEvent{
			EventID:   "evt-1",
			EventType: models.EventTypeOrderRecorded,
			Timestamp: time.Now(),
		},
		OrderID:    7,
		PaymentRef: "PAY-7",
		Status:     models.PaymentStatusCompleted,
	}

	require.NoError(t, eh.HandleMessage(context.Background(), message(t, event)))
	require.NotNil(t, got)
	assert.Equal(t, int64(7), got.OrderID)
	assert.Equal(t, "PAY-7", got.PaymentRef)
}

func TestEventHandlerRoutesStatusChanged(t *testing.T) {
	eh := NewEventHandler()

	var got *models.StatusChangedEvent
	eh.OnStatusChanged(func(ctx context.Context, event *models.StatusChangedEvent) error {
		got = event
		return nil
	})

	event := &models.StatusChangedEvent{
		BaseEvent: models.BaseEvent{
			EventID:   "evt-2",
			EventType: models.EventTypeStatusChanged,
			Timestamp: time.Now(),
		},
		OrderID:    3,
		FromStatus: models.PaymentStatusPending,
		ToStatus:   models.PaymentStatusCancelled,
	}

	require.NoError(t, eh.HandleMessage(context.Background(), message(t, event)))
	require.NotNil(t, got)
	assert.Equal(t, models.PaymentStatusCancelled, got.ToStatus)
}

func TestEventHandlerIgnoresUnknownType(t *testing.T) {
	eh := NewEventHandler()

	event := models.BaseEvent{
		EventID:   "evt-3",
		EventType: "SOMETHING_ELSE",
		Timestamp: time.Now(),
	}

	assert.NoError(t, eh.HandleMessage(context.Background(), message(t, event)))
}

func TestEventHandlerRejectsMalformedPayload(t *testing.T) {
	eh := NewEventHandler()

	err := eh.HandleMessage(context.Background(), kafka.Message{Value: []byte("{not json")})
	assert.Error(t, err)
}
