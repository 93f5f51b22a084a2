package service

import (
	"context"
	"testing"

	"storefront-orders/internal/models"
	"storefront-orders/internal/store"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestComputeStatsFromLedger(t *testing.T) {
	m := store.NewMemoryStore()
	orders := NewOrderService(m, nil, nil, 0)
	stats := NewStatsService(m, nil, "USD", 0)
	ctx := context.Background()

	_, _, err := orders.RecordCapture(ctx, completedSubmission("PAY-1"))
	require.NoError(t, err)

	denied := completedSubmission("PAY-2")
	denied.CaptureStatus = "DENIED"
	denied.Amount = amount("10.00")
	_, _, err = orders.RecordCapture(ctx, denied)
	require.NoError(t, err)

	snapshot, err := stats.ComputeStats(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), snapshot.TotalOrders)
	assert.Equal(t, int64(1), snapshot.CompletedOrders)
	assert.True(t, snapshot.TotalRevenue.Equal(decimal.RequireFromString("75.00")))
	assert.Equal(t, "USD", snapshot.Currency)
}

func TestComputeStatsTracksTransitions(t *testing.T) {
	m := store.NewMemoryStore()
	orders := NewOrderService(m, nil, nil, 0)
	stats := NewStatsService(m, nil, "USD", 0)
	ctx := context.Background()

	order, _, err := orders.RecordCapture(ctx, completedSubmission("PAY-1"))
	require.NoError(t, err)

	_, err = orders.UpdateStatus(ctx, order.ID, models.PaymentStatusRefunded)
	require.NoError(t, err)

	// a refunded order no longer counts as completed revenue
	snapshot, err := stats.ComputeStats(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), snapshot.TotalOrders)
	assert.Equal(t, int64(0), snapshot.CompletedOrders)
	assert.True(t, snapshot.TotalRevenue.IsZero())
}

func TestComputeStatsEmptyLedger(t *testing.T) {
	stats := NewStatsService(store.NewMemoryStore(), nil, "USD", 0)

	snapshot, err := stats.ComputeStats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(0), snapshot.TotalOrders)
	assert.Equal(t, int64(0), snapshot.CompletedOrders)
	assert.True(t, snapshot.TotalRevenue.IsZero())
}
