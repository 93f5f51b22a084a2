package models

import (
	"time"

	"github.com/shopspring/decimal"
)

func init() {
	// Amounts serialize as JSON numbers, not quoted strings.
	decimal.MarshalJSONWithoutQuotes = true
}

// Order is the unit of record in the ledger. Everything except
// PaymentStatus is immutable after creation.
type Order struct {
	ID          int64           `db:"id" json:"id"`
	PaymentRef  string          `db:"payment_ref" json:"payment_ref"`
	ProductName string          `db:"product_name" json:"product_name"`
	Amount      decimal.Decimal `db:"amount" json:"amount"`
	Currency    string          `db:"currency" json:"currency"`

	BuyerName  string `db:"buyer_name" json:"buyer_name"`
	BuyerEmail string `db:"buyer_email" json:"buyer_email"`

	AddressLine1 string `db:"address_line1" json:"address_line1,omitempty"`
	AddressLine2 string `db:"address_line2" json:"address_line2,omitempty"`
	City         string `db:"city" json:"city,omitempty"`
	State        string `db:"state" json:"state,omitempty"`
	PostalCode   string `db:"postal_code" json:"postal_code,omitempty"`
	CountryCode  string `db:"country_code" json:"country_code,omitempty"`

	PaymentStatus string    `db:"payment_status" json:"payment_status"`
	CreatedAt     time.Time `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time `db:"updated_at" json:"updated_at"`
}

// Payment statuses
const (
	PaymentStatusPending   = "PENDING"
	PaymentStatusCompleted = "COMPLETED"
	PaymentStatusCancelled = "CANCELLED"
	PaymentStatusRefunded  = "REFUNDED"
)

// statusTransitions defines the permitted edges of the payment status
// state machine. States with no outgoing edges (CANCELLED, REFUNDED)
// are terminal.
var statusTransitions = map[string][]string{
	PaymentStatusPending:   {PaymentStatusCompleted, PaymentStatusCancelled},
	PaymentStatusCompleted: {PaymentStatusRefunded},
}

// ValidStatus reports whether s is a known payment status.
func ValidStatus(s string) bool {
	switch s {
	case PaymentStatusPending, PaymentStatusCompleted, PaymentStatusCancelled, PaymentStatusRefunded:
		return true
	}
	return false
}

// TerminalStatus reports whether no transition out of s is permitted.
func TerminalStatus(s string) bool {
	return ValidStatus(s) && len(statusTransitions[s]) == 0
}

// CanTransition reports whether the state machine permits from -> to.
func CanTransition(from, to string) bool {
	for _, next := range statusTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// Stats is an aggregate snapshot over the ledger. TotalRevenue sums
// amounts of COMPLETED orders in the reporting currency only.
type Stats struct {
	TotalOrders     int64           `db:"total_orders" json:"total_orders"`
	CompletedOrders int64           `db:"completed_orders" json:"completed_orders"`
	TotalRevenue    decimal.Decimal `db:"total_revenue" json:"total_revenue"`
	Currency        string          `db:"-" json:"currency"`
}

// AuditEntry is one row of the append-only order audit trail,
// written by the audit worker from consumed order events.
type AuditEntry struct {
	ID         int64     `db:"id" json:"id"`
	OrderID    int64     `db:"order_id" json:"order_id"`
	EventID    string    `db:"event_id" json:"event_id"`
	EventType  string    `db:"event_type" json:"event_type"`
	FromStatus string    `db:"from_status" json:"from_status,omitempty"`
	ToStatus   string    `db:"to_status" json:"to_status,omitempty"`
	RecordedAt time.Time `db:"recorded_at" json:"recorded_at"`
}

// ProcessedEvent marks a consumed event id so the audit worker
// stays idempotent across redeliveries.
type ProcessedEvent struct {
	EventID     string    `db:"event_id"`
	EventType   string    `db:"event_type"`
	ProcessedAt time.Time `db:"processed_at"`
}
