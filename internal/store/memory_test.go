package store

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"storefront-orders/internal/models"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newOrder(ref, status string, amount string) *models.Order {
	return &models.Order{
		PaymentRef:    ref,
		ProductName:   "Test Product",
		Amount:        decimal.RequireFromString(amount),
		Currency:      "USD",
		BuyerName:     "Jamie Doe",
		BuyerEmail:    "jamie@example.com",
		PaymentStatus: status,
	}
}

func TestMemoryStoreInsertAndGet(t *testing.T) {
	m := NewMemoryStore()
	ctx := context.Background()

	order := newOrder("PAY-1", models.PaymentStatusCompleted, "75.00")
	require.NoError(t, m.InsertOrder(ctx, order))
	assert.NotZero(t, order.ID)
	assert.False(t, order.CreatedAt.IsZero())

	got, err := m.GetOrderByID(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, "PAY-1", got.PaymentRef)
	assert.True(t, got.Amount.Equal(decimal.RequireFromString("75.00")))

	_, err = m.GetOrderByID(ctx, 999)
	var notFound *models.NotFoundError
	assert.ErrorAs(t, err, &notFound)
}

func TestMemoryStoreDuplicateRef(t *testing.T) {
	m := NewMemoryStore()
	ctx := context.Background()

	first := newOrder("PAY-1", models.PaymentStatusCompleted, "75.00")
	require.NoError(t, m.InsertOrder(ctx, first))

	second := newOrder("PAY-1", models.PaymentStatusPending, "10.00")
	err := m.InsertOrder(ctx, second)
	assert.ErrorIs(t, err, models.ErrDuplicatePaymentRef)

	orders, err := m.ListOrders(ctx)
	require.NoError(t, err)
	assert.Len(t, orders, 1)
}

func TestMemoryStoreGetByPaymentRef(t *testing.T) {
	m := NewMemoryStore()
	ctx := context.Background()

	require.NoError(t, m.InsertOrder(ctx, newOrder("PAY-1", models.PaymentStatusCompleted, "75.00")))

	got, err := m.GetOrderByPaymentRef(ctx, "PAY-1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "PAY-1", got.PaymentRef)

	missing, err := m.GetOrderByPaymentRef(ctx, "PAY-0")
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestMemoryStoreListCreationOrder(t *testing.T) {
	m := NewMemoryStore()
	ctx := context.Background()

	for i := 1; i <= 5; i++ {
		require.NoError(t, m.InsertOrder(ctx, newOrder(fmt.Sprintf("PAY-%d", i), models.PaymentStatusPending, "1.00")))
	}

	orders, err := m.ListOrders(ctx)
	require.NoError(t, err)
	require.Len(t, orders, 5)
	for i, order := range orders {
		assert.Equal(t, int64(i+1), order.ID)
	}
}

func TestMemoryStoreUpdateStatus(t *testing.T) {
	m := NewMemoryStore()
	ctx := context.Background()

	order := newOrder("PAY-2", models.PaymentStatusPending, "20.00")
	require.NoError(t, m.InsertOrder(ctx, order))

	updated, prev, err := m.UpdateOrderStatus(ctx, order.ID, models.PaymentStatusCompleted)
	require.NoError(t, err)
	assert.Equal(t, models.PaymentStatusCompleted, updated.PaymentStatus)
	assert.Equal(t, models.PaymentStatusPending, prev)

	// COMPLETED -> PENDING is not an edge
	_, _, err = m.UpdateOrderStatus(ctx, order.ID, models.PaymentStatusPending)
	var transitionErr *models.InvalidTransitionError
	require.ErrorAs(t, err, &transitionErr)
	assert.Equal(t, models.PaymentStatusCompleted, transitionErr.From)

	_, _, err = m.UpdateOrderStatus(ctx, 999, models.PaymentStatusCompleted)
	var notFound *models.NotFoundError
	assert.ErrorAs(t, err, &notFound)
}

func TestMemoryStoreTerminalStatesRejectUpdates(t *testing.T) {
	m := NewMemoryStore()
	ctx := context.Background()

	cancelled := newOrder("PAY-3", models.PaymentStatusPending, "5.00")
	require.NoError(t, m.InsertOrder(ctx, cancelled))
	_, _, err := m.UpdateOrderStatus(ctx, cancelled.ID, models.PaymentStatusCancelled)
	require.NoError(t, err)

	refunded := newOrder("PAY-4", models.PaymentStatusCompleted, "5.00")
	require.NoError(t, m.InsertOrder(ctx, refunded))
	_, _, err = m.UpdateOrderStatus(ctx, refunded.ID, models.PaymentStatusRefunded)
	require.NoError(t, err)

	var transitionErr *models.InvalidTransitionError
	for _, id := range []int64{cancelled.ID, refunded.ID} {
		for _, to := range []string{
			models.PaymentStatusPending,
			models.PaymentStatusCompleted,
			models.PaymentStatusCancelled,
			models.PaymentStatusRefunded,
		} {
			_, _, err := m.UpdateOrderStatus(ctx, id, to)
			assert.ErrorAs(t, err, &transitionErr, "order %d -> %s", id, to)
		}
	}
}

func TestMemoryStoreComputeStats(t *testing.T) {
	m := NewMemoryStore()
	ctx := context.Background()

	require.NoError(t, m.InsertOrder(ctx, newOrder("PAY-1", models.PaymentStatusCompleted, "75.00")))
	require.NoError(t, m.InsertOrder(ctx, newOrder("PAY-2", models.PaymentStatusPending, "10.00")))
	require.NoError(t, m.InsertOrder(ctx, newOrder("PAY-3", models.PaymentStatusCompleted, "24.50")))

	// completed but in another currency: counts, does not sum
	eur := newOrder("PAY-4", models.PaymentStatusCompleted, "100.00")
	eur.Currency = "EUR"
	require.NoError(t, m.InsertOrder(ctx, eur))

	stats, err := m.ComputeStats(ctx, "USD")
	require.NoError(t, err)
	assert.Equal(t, int64(4), stats.TotalOrders)
	assert.Equal(t, int64(3), stats.CompletedOrders)
	assert.True(t, stats.TotalRevenue.Equal(decimal.RequireFromString("99.50")),
		"got %s", stats.TotalRevenue)
	assert.Equal(t, "USD", stats.Currency)
}

func TestMemoryStoreConcurrentSameRefInsert(t *testing.T) {
	m := NewMemoryStore()
	ctx := context.Background()

	const attempts = 50
	var wg sync.WaitGroup
	var mu sync.Mutex
	inserted := 0

	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := m.InsertOrder(ctx, newOrder("PAY-RACE", models.PaymentStatusCompleted, "75.00"))
			if err == nil {
				mu.Lock()
				inserted++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, inserted)
	orders, err := m.ListOrders(ctx)
	require.NoError(t, err)
	assert.Len(t, orders, 1)
}

func TestMemoryStoreStatsConsistentUnderConcurrentWrites(t *testing.T) {
	m := NewMemoryStore()
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			order := newOrder(fmt.Sprintf("PAY-%d", i), models.PaymentStatusPending, "1.00")
			if err := m.InsertOrder(ctx, order); err == nil && i%2 == 0 {
				_, _, _ = m.UpdateOrderStatus(ctx, order.ID, models.PaymentStatusCompleted)
			}
		}(i)
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < 100; i++ {
			stats, err := m.ComputeStats(ctx, "USD")
			if assert.NoError(t, err) {
				assert.LessOrEqual(t, stats.CompletedOrders, stats.TotalOrders)
			}
		}
	}()

	wg.Wait()
	<-done

	stats, err := m.ComputeStats(ctx, "USD")
	require.NoError(t, err)
	assert.Equal(t, int64(20), stats.TotalOrders)
	assert.Equal(t, int64(10), stats.CompletedOrders)
	assert.True(t, stats.TotalRevenue.Equal(decimal.RequireFromString("10.00")))
}
