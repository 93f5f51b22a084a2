package store

import (
	"context"
	"fmt"
	"time"

	"storefront-orders/internal/models"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
)

// OrderStore is the persistence contract for the order ledger. The
// lifecycle service and the HTTP layer depend on this interface only,
// so tests run against the in-memory implementation and production
// against Postgres.
type OrderStore interface {
	// InsertOrder persists a new order if no order with the same
	// payment_ref exists, assigning ID/CreatedAt/UpdatedAt on the
	// passed struct. Returns models.ErrDuplicatePaymentRef when the
	// ref is already recorded. Insert-if-absent is atomic: a unique
	// index combined with the write, never a separate check.
	InsertOrder(ctx context.Context, order *models.Order) error

	// GetOrderByID returns the order or a *models.NotFoundError.
	GetOrderByID(ctx context.Context, id int64) (*models.Order, error)

	// GetOrderByPaymentRef returns the order recorded for ref, or
	// (nil, nil) when no such order exists.
	GetOrderByPaymentRef(ctx context.Context, ref string) (*models.Order, error)

	// ListOrders returns all orders in creation order.
	ListOrders(ctx context.Context) ([]models.Order, error)

	// UpdateOrderStatus re-reads the current status under a row lock,
	// validates the transition against the state machine, and applies
	// it. Returns the updated order plus the prior status observed
	// under the lock, a *models.NotFoundError, or a
	// *models.InvalidTransitionError.
	UpdateOrderStatus(ctx context.Context, id int64, newStatus string) (*models.Order, string, error)

	// ComputeStats returns a single-snapshot aggregate. Revenue sums
	// COMPLETED orders in the given currency only.
	ComputeStats(ctx context.Context, currency string) (*models.Stats, error)

	// InsertAuditEntry appends a row to the order audit trail.
	InsertAuditEntry(ctx context.Context, entry *models.AuditEntry) error

	// IsEventProcessed / MarkEventProcessed deduplicate consumed events.
	IsEventProcessed(ctx context.Context, eventID string) (bool, error)
	MarkEventProcessed(ctx context.Context, eventID, eventType string) error

	// Ping checks reachability for health checks.
	Ping(ctx context.Context) error
}

// Store is the Postgres-backed OrderStore.
type Store struct {
	db *sqlx.DB
}

var _ OrderStore = (*Store)(nil)

// NewStore connects to Postgres and returns the ledger store
func NewStore(databaseURL string) (*Store, error) {
	db, err := sqlx.Connect("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &Store{db: db}, nil
}

// Close closes the database connection
func (s *Store) Close() error {
	return s.db.Close()
}

// GetDB returns the underlying database connection
func (s *Store) GetDB() *sqlx.DB {
	return s.db
}

// Ping checks the database connection
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}
