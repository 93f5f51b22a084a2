package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"storefront-orders/internal/models"
)

// InsertOrder persists a new order. The unique index on payment_ref
// plus ON CONFLICT DO NOTHING make the insert-if-absent atomic: of two
// concurrent submissions with the same ref exactly one row wins, the
// other sees no returned row and reports the duplicate.
func (s *Store) InsertOrder(ctx context.Context, order *models.Order) error {
	query := `
		INSERT INTO orders (
			payment_ref, product_name, amount, currency,
			buyer_name, buyer_email,
			address_line1, address_line2, city, state, postal_code, country_code,
			payment_status
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		ON CONFLICT (payment_ref) DO NOTHING
		RETURNING id, created_at, updated_at`

	err := s.db.QueryRowxContext(ctx, query,
		order.PaymentRef, order.ProductName, order.Amount, order.Currency,
		order.BuyerName, order.BuyerEmail,
		order.AddressLine1, order.AddressLine2, order.City, order.State,
		order.PostalCode, order.CountryCode,
		order.PaymentStatus,
	).Scan(&order.ID, &order.CreatedAt, &order.UpdatedAt)

	if errors.Is(err, sql.ErrNoRows) {
		return models.ErrDuplicatePaymentRef
	}
	if err != nil {
		return &models.StoreUnavailableError{Err: fmt.Errorf("insert order: %w", err)}
	}
	return nil
}

// GetOrderByID retrieves an order by ID
func (s *Store) GetOrderByID(ctx context.Context, id int64) (*models.Order, error) {
	var order models.Order
	err := s.db.GetContext(ctx, &order, "SELECT * FROM orders WHERE id = $1", id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, &models.NotFoundError{OrderID: id}
	}
	if err != nil {
		return nil, &models.StoreUnavailableError{Err: err}
	}
	return &order, nil
}

// GetOrderByPaymentRef retrieves an order by its external payment ref.
// Returns (nil, nil) when no order is recorded for the ref.
func (s *Store) GetOrderByPaymentRef(ctx context.Context, ref string) (*models.Order, error) {
	var order models.Order
	err := s.db.GetContext(ctx, &order, "SELECT * FROM orders WHERE payment_ref = $1", ref)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, &models.StoreUnavailableError{Err: err}
	}
	return &order, nil
}

// ListOrders retrieves all orders in creation order
func (s *Store) ListOrders(ctx context.Context) ([]models.Order, error) {
	var orders []models.Order
	err := s.db.SelectContext(ctx, &orders, "SELECT * FROM orders ORDER BY id")
	if err != nil {
		return nil, &models.StoreUnavailableError{Err: err}
	}
	return orders, nil
}

// UpdateOrderStatus applies a status transition within a transaction.
// The row lock serializes concurrent updates on the same order, and the
// transition is validated against the state read under the lock, so a
// stale admin request loses to the first writer instead of overwriting
// it. The prior status observed under the lock is returned alongside
// the updated order.
func (s *Store) UpdateOrderStatus(ctx context.Context, id int64, newStatus string) (*models.Order, string, error) {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, "", &models.StoreUnavailableError{Err: err}
	}
	defer tx.Rollback()

	var order models.Order
	err = tx.GetContext(ctx, &order, "SELECT * FROM orders WHERE id = $1 FOR UPDATE", id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, "", &models.NotFoundError{OrderID: id}
	}
	if err != nil {
		return nil, "", &models.StoreUnavailableError{Err: fmt.Errorf("lock order: %w", err)}
	}

	prevStatus := order.PaymentStatus
	if !models.CanTransition(prevStatus, newStatus) {
		return nil, "", &models.InvalidTransitionError{From: prevStatus, To: newStatus}
	}

	err = tx.GetContext(ctx, &order, `
		UPDATE orders SET payment_status = $1, updated_at = NOW()
		WHERE id = $2
		RETURNING *`, newStatus, id)
	if err != nil {
		return nil, "", &models.StoreUnavailableError{Err: fmt.Errorf("update status: %w", err)}
	}

	if err := tx.Commit(); err != nil {
		return nil, "", &models.StoreUnavailableError{Err: err}
	}
	return &order, prevStatus, nil
}

// ComputeStats aggregates the ledger in a single statement, so the
// counts and the revenue sum come from one consistent snapshot.
func (s *Store) ComputeStats(ctx context.Context, currency string) (*models.Stats, error) {
	var stats models.Stats
	err := s.db.GetContext(ctx, &stats, `
		SELECT
			COUNT(*) AS total_orders,
			COUNT(*) FILTER (WHERE payment_status = $1) AS completed_orders,
			COALESCE(SUM(amount) FILTER (WHERE payment_status = $1 AND currency = $2), 0) AS total_revenue
		FROM orders`,
		models.PaymentStatusCompleted, currency)
	if err != nil {
		return nil, &models.StoreUnavailableError{Err: err}
	}
	stats.Currency = currency
	return &stats, nil
}

// InsertAuditEntry appends a row to the audit trail
func (s *Store) InsertAuditEntry(ctx context.Context, entry *models.AuditEntry) error {
	query := `
		INSERT INTO order_audit (order_id, event_id, event_type, from_status, to_status)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, recorded_at`

	err := s.db.QueryRowxContext(ctx, query,
		entry.OrderID, entry.EventID, entry.EventType, entry.FromStatus, entry.ToStatus,
	).Scan(&entry.ID, &entry.RecordedAt)
	if err != nil {
		return &models.StoreUnavailableError{Err: fmt.Errorf("insert audit entry: %w", err)}
	}
	return nil
}

// IsEventProcessed checks if an event has been processed
func (s *Store) IsEventProcessed(ctx context.Context, eventID string) (bool, error) {
	var exists bool
	err := s.db.GetContext(ctx, &exists,
		"SELECT EXISTS(SELECT 1 FROM processed_events WHERE event_id = $1)", eventID)
	return exists, err
}

// MarkEventProcessed marks an event as processed
func (s *Store) MarkEventProcessed(ctx context.Context, eventID, eventType string) error {
	_, err := s.db.ExecContext(ctx,
		"INSERT INTO processed_events (event_id, event_type) VALUES ($1, $2) ON CONFLICT (event_id) DO NOTHING",
		eventID, eventType)
	return err
}
