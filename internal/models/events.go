package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Event types
const (
	EventTypeOrderRecorded   = "ORDER_RECORDED"
	EventTypeCaptureReplayed = "CAPTURE_REPLAYED"
	EventTypeStatusChanged   = "ORDER_STATUS_CHANGED"
)

// BaseEvent contains common fields for all events
type BaseEvent struct {
	EventID   string    `json:"event_id"`
	EventType string    `json:"event_type"`
	Timestamp time.Time `json:"timestamp"`
}

// OrderRecordedEvent published when a capture submission creates an order
type OrderRecordedEvent struct {
	BaseEvent
	OrderID    int64           `json:"order_id"`
	PaymentRef string          `json:"payment_ref"`
	Amount     decimal.Decimal `json:"amount"`
	Currency   string          `json:"currency"`
	Status     string          `json:"status"`
}

// CaptureReplayedEvent published when a duplicate submission is resolved
// by returning the already-recorded order
type CaptureReplayedEvent struct {
	BaseEvent
	OrderID    int64  `json:"order_id"`
	PaymentRef string `json:"payment_ref"`
}

// StatusChangedEvent published when an order moves along the state machine
type StatusChangedEvent struct {
	BaseEvent
	OrderID    int64  `json:"order_id"`
	FromStatus string `json:"from_status"`
	ToStatus   string `json:"to_status"`
}
