package tracking

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ashish02003/Freshify/internal/domain"
	"github.com/ashish02003/Freshify/internal/storage/memory"
)

func seedOrder(t *testing.T, repo domain.OrderRepository) domain.Order {
	t.Helper()

	now := time.Now().UTC()
	order := domain.Order{
		ID:             "id-1",
		OrderID:        "ORD-12345",
		TrackingNumber: "TRK12345",
		UserID:         "user-1",
		ProductID:      "prod-bananas",
		AddressID:      "addr-1",
		ProductDetails: domain.ProductDetails{Name: "Organic Bananas 1kg"},
		SubTotalMinor:  6900,
		TotalMinor:     7900,
		DeliveryStatus: domain.DeliveryStatusPending,
		TrackingUpdates: []domain.TrackingUpdate{
			{Status: domain.DeliveryStatusPending, Message: "Order placed", Timestamp: now},
		},
		CreatedAt: now,
		UpdatedAt: now,
	}
	require.NoError(t, repo.Create(order))
	return order
}

func TestApplierApply(t *testing.T) {
	repo := memory.NewOrderRepository()
	outbox := memory.NewOutboxRepository()
	applier := NewApplier(repo, outbox, nil)

	order := seedOrder(t, repo)

	updated, err := applier.Apply(order, domain.DeliveryStatusShipped, " Package left the warehouse ", "Mumbai hub")
	require.NoError(t, err)

	assert.Equal(t, domain.DeliveryStatusShipped, updated.DeliveryStatus)
	require.Len(t, updated.TrackingUpdates, 2)
	assert.Equal(t, "Package left the warehouse", updated.TrackingUpdates[1].Message)
	assert.Equal(t, "Mumbai hub", updated.TrackingUpdates[1].Location)
	assert.Nil(t, updated.ActualDelivery)

	stored, err := repo.GetByOrderID(order.OrderID)
	require.NoError(t, err)
	assert.Equal(t, domain.DeliveryStatusShipped, stored.DeliveryStatus)
	require.Len(t, stored.TrackingUpdates, 2)

	pending, err := outbox.PullPending(10)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, "order.status_changed", pending[0].EventType)
	assert.Equal(t, order.OrderID, pending[0].AggregateID)
}

func TestApplierApplyDelivered(t *testing.T) {
	repo := memory.NewOrderRepository()
	applier := NewApplier(repo, memory.NewOutboxRepository(), nil)

	order := seedOrder(t, repo)

	updated, err := applier.Apply(order, domain.DeliveryStatusDelivered, "Handed to customer", "")
	require.NoError(t, err)

	require.NotNil(t, updated.ActualDelivery)
	assert.WithinDuration(t, time.Now().UTC(), *updated.ActualDelivery, time.Second)

	stored, err := repo.GetByOrderID(order.OrderID)
	require.NoError(t, err)
	require.NotNil(t, stored.ActualDelivery)
}

func TestApplierApplyCancelledEvent(t *testing.T) {
	repo := memory.NewOrderRepository()
	outbox := memory.NewOutboxRepository()
	applier := NewApplier(repo, outbox, nil)

	order := seedOrder(t, repo)
	order.CancelledReason = "changed my mind"
	order.CancelledBy = domain.CancelActorCustomer

	updated, err := applier.Apply(order, domain.DeliveryStatusCancelled, "Cancelled by customer", "")
	require.NoError(t, err)
	assert.Equal(t, domain.DeliveryStatusCancelled, updated.DeliveryStatus)

	pending, err := outbox.PullPending(10)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, "order.cancelled", pending[0].EventType)
}

func TestApplierApplyInvalidStatus(t *testing.T) {
	repo := memory.NewOrderRepository()
	applier := NewApplier(repo, nil, nil)

	order := seedOrder(t, repo)

	_, err := applier.Apply(order, domain.DeliveryStatus("teleported"), "", "")
	require.ErrorIs(t, err, domain.ErrInvalidStatus)
}

func TestApplierApplyVersionConflict(t *testing.T) {
	repo := memory.NewOrderRepository()
	applier := NewApplier(repo, nil, nil)

	order := seedOrder(t, repo)

	_, err := applier.Apply(order, domain.DeliveryStatusConfirmed, "Confirmed", "")
	require.NoError(t, err)

	// Повторное применение с устаревшей версией.
	_, err = applier.Apply(order, domain.DeliveryStatusProcessing, "Processing", "")
	require.ErrorIs(t, err, domain.ErrOrderVersionConflict)
}
