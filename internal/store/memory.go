package store

import (
	"context"
	"sync"
	"time"

	"storefront-orders/internal/models"

	"github.com/shopspring/decimal"
)

// MemoryStore is an in-memory OrderStore with the same semantics as the
// Postgres store. It backs unit tests and local development without a
// database. All operations run under a single mutex, so every read is a
// consistent snapshot.
type MemoryStore struct {
	mu        sync.Mutex
	nextID    int64
	byID      map[int64]*models.Order
	byRef     map[string]int64
	ids       []int64
	audit     []models.AuditEntry
	processed map[string]string
}

var _ OrderStore = (*MemoryStore)(nil)

// NewMemoryStore creates an empty in-memory store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		nextID:    1,
		byID:      make(map[int64]*models.Order),
		byRef:     make(map[string]int64),
		processed: make(map[string]string),
	}
}

// InsertOrder persists a new order, enforcing payment_ref uniqueness
// under the store mutex.
func (m *MemoryStore) InsertOrder(ctx context.Context, order *models.Order) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.byRef[order.PaymentRef]; exists {
		return models.ErrDuplicatePaymentRef
	}

	now := time.Now().UTC()
	order.ID = m.nextID
	order.CreatedAt = now
	order.UpdatedAt = now
	m.nextID++

	stored := *order
	m.byID[stored.ID] = &stored
	m.byRef[stored.PaymentRef] = stored.ID
	m.ids = append(m.ids, stored.ID)
	return nil
}

// GetOrderByID retrieves an order by ID
func (m *MemoryStore) GetOrderByID(ctx context.Context, id int64) (*models.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	order, ok := m.byID[id]
	if !ok {
		return nil, &models.NotFoundError{OrderID: id}
	}
	copied := *order
	return &copied, nil
}

// GetOrderByPaymentRef retrieves an order by payment ref, (nil, nil) if absent
func (m *MemoryStore) GetOrderByPaymentRef(ctx context.Context, ref string) (*models.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	id, ok := m.byRef[ref]
	if !ok {
		return nil, nil
	}
	copied := *m.byID[id]
	return &copied, nil
}

// ListOrders returns all orders in creation order
func (m *MemoryStore) ListOrders(ctx context.Context) ([]models.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	orders := make([]models.Order, 0, len(m.ids))
	for _, id := range m.ids {
		orders = append(orders, *m.byID[id])
	}
	return orders, nil
}

// UpdateOrderStatus validates the transition against the current state
// and applies it, all under the mutex (last-validated-wins). The prior
// status is returned alongside the updated order.
func (m *MemoryStore) UpdateOrderStatus(ctx context.Context, id int64, newStatus string) (*models.Order, string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	order, ok := m.byID[id]
	if !ok {
		return nil, "", &models.NotFoundError{OrderID: id}
	}

	prevStatus := order.PaymentStatus
	if !models.CanTransition(prevStatus, newStatus) {
		return nil, "", &models.InvalidTransitionError{From: prevStatus, To: newStatus}
	}

	order.PaymentStatus = newStatus
	order.UpdatedAt = time.Now().UTC()
	copied := *order
	return &copied, prevStatus, nil
}

// ComputeStats aggregates all orders in one pass under the mutex
func (m *MemoryStore) ComputeStats(ctx context.Context, currency string) (*models.Stats, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	stats := &models.Stats{
		TotalRevenue: decimal.Zero,
		Currency:     currency,
	}
	for _, order := range m.byID {
		stats.TotalOrders++
		if order.PaymentStatus == models.PaymentStatusCompleted {
			stats.CompletedOrders++
			if order.Currency == currency {
				stats.TotalRevenue = stats.TotalRevenue.Add(order.Amount)
			}
		}
	}
	return stats, nil
}

// InsertAuditEntry appends a row to the audit trail
func (m *MemoryStore) InsertAuditEntry(ctx context.Context, entry *models.AuditEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry.ID = int64(len(m.audit) + 1)
	entry.RecordedAt = time.Now().UTC()
	m.audit = append(m.audit, *entry)
	return nil
}

// AuditEntries returns a copy of the audit trail
func (m *MemoryStore) AuditEntries() []models.AuditEntry {
	m.mu.Lock()
	defer m.mu.Unlock()

	entries := make([]models.AuditEntry, len(m.audit))
	copy(entries, m.audit)
	return entries
}

// IsEventProcessed checks if an event has been processed
func (m *MemoryStore) IsEventProcessed(ctx context.Context, eventID string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	_, ok := m.processed[eventID]
	return ok, nil
}

// MarkEventProcessed marks an event as processed
func (m *MemoryStore) MarkEventProcessed(ctx context.Context, eventID, eventType string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.processed[eventID] = eventType
	return nil
}

// Ping always succeeds for the in-memory store
func (m *MemoryStore) Ping(ctx context.Context) error {
	return nil
}
