package postgres

import (
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ashish02003/Freshify/internal/domain"
)

func newTestOrder(suffix string) domain.Order {
	now := time.Now().UTC().Truncate(time.Microsecond)
	return domain.Order{
		ID:             uuid.NewString(),
		OrderID:        "ORD-" + suffix,
		TrackingNumber: "TRK" + suffix,
		UserID:         "user-1",
		ProductID:      "product-1",
		AddressID:      "address-1",
		ProductDetails: domain.ProductDetails{
			Name:  "Organic Bananas 1kg",
			Image: []string{"https://cdn.example.com/bananas.jpg"},
		},
		PaymentID:      "pay-" + suffix,
		PaymentStatus:  "paid",
		SubTotalMinor:  14900,
		TotalMinor:     15900,
		DeliveryStatus: domain.DeliveryStatusPending,
		TrackingUpdates: []domain.TrackingUpdate{
			{Status: domain.DeliveryStatusPending, Message: "Order placed", Timestamp: now},
		},
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func TestOrderRepositoryIntegration_CreateAndGet(t *testing.T) {
	store := openTestStore(t)
	repo := NewOrderRepository(store)

	order := newTestOrder("10001")
	require.NoError(t, repo.Create(order))

	got, err := repo.GetByOrderID(order.OrderID)
	require.NoError(t, err)

	assert.Equal(t, order.OrderID, got.OrderID)
	assert.Equal(t, order.TrackingNumber, got.TrackingNumber)
	assert.Equal(t, order.ProductDetails.Name, got.ProductDetails.Name)
	assert.Equal(t, order.ProductDetails.Image, got.ProductDetails.Image)
	assert.Equal(t, order.TotalMinor, got.TotalMinor)
	assert.Equal(t, domain.DeliveryStatusPending, got.DeliveryStatus)
	require.Len(t, got.TrackingUpdates, 1)
	assert.Equal(t, "Order placed", got.TrackingUpdates[0].Message)
	assert.Nil(t, got.DeliveryPartner)
}

func TestOrderRepositoryIntegration_CreateDuplicate(t *testing.T) {
	store := openTestStore(t)
	repo := NewOrderRepository(store)

	order := newTestOrder("10002")
	require.NoError(t, repo.Create(order))

	dup := newTestOrder("10002")
	dup.ID = uuid.NewString()
	require.ErrorIs(t, repo.Create(dup), domain.ErrOrderAlreadyExists)
}

func TestOrderRepositoryIntegration_GetMissing(t *testing.T) {
	store := openTestStore(t)
	repo := NewOrderRepository(store)

	_, err := repo.GetByOrderID("ORD-unknown")
	require.ErrorIs(t, err, domain.ErrOrderNotFound)
}

func TestOrderRepositoryIntegration_SaveOptimisticLocking(t *testing.T) {
	store := openTestStore(t)
	repo := NewOrderRepository(store)

	order := newTestOrder("10003")
	require.NoError(t, repo.Create(order))

	order.OrderNotes = "leave at the door"
	order.UpdatedAt = time.Now().UTC()
	require.NoError(t, repo.Save(order))

	got, err := repo.GetByOrderID(order.OrderID)
	require.NoError(t, err)
	assert.Equal(t, "leave at the door", got.OrderNotes)
	assert.Equal(t, int64(1), got.Version)

	// Повторное сохранение со старой версией должно конфликтовать.
	require.ErrorIs(t, repo.Save(order), domain.ErrOrderVersionConflict)

	missing := newTestOrder("10004")
	require.ErrorIs(t, repo.Save(missing), domain.ErrOrderNotFound)
}

func TestOrderRepositoryIntegration_SaveDoesNotTouchStatus(t *testing.T) {
	store := openTestStore(t)
	repo := NewOrderRepository(store)

	order := newTestOrder("10005")
	require.NoError(t, repo.Create(order))

	order.DeliveryStatus = domain.DeliveryStatusDelivered
	order.UpdatedAt = time.Now().UTC()
	require.NoError(t, repo.Save(order))

	got, err := repo.GetByOrderID(order.OrderID)
	require.NoError(t, err)
	assert.Equal(t, domain.DeliveryStatusPending, got.DeliveryStatus)
	require.Len(t, got.TrackingUpdates, 1)
}

func TestOrderRepositoryIntegration_AppendTracking(t *testing.T) {
	store := openTestStore(t)
	repo := NewOrderRepository(store)

	order := newTestOrder("10006")
	require.NoError(t, repo.Create(order))

	update := domain.TrackingUpdate{
		Status:    domain.DeliveryStatusShipped,
		Message:   "Package left the warehouse",
		Location:  "Mumbai hub",
		Timestamp: time.Now().UTC().Truncate(time.Microsecond),
	}
	order.UpdatedAt = update.Timestamp
	require.NoError(t, repo.AppendTracking(order, update))

	got, err := repo.GetByOrderID(order.OrderID)
	require.NoError(t, err)
	assert.Equal(t, domain.DeliveryStatusShipped, got.DeliveryStatus)
	assert.Equal(t, int64(1), got.Version)
	require.Len(t, got.TrackingUpdates, 2)
	assert.Equal(t, "Mumbai hub", got.TrackingUpdates[1].Location)

	// Со старой версией запись в историю не проходит.
	require.ErrorIs(t, repo.AppendTracking(order, update), domain.ErrOrderVersionConflict)

	missing := newTestOrder("10007")
	require.ErrorIs(t, repo.AppendTracking(missing, update), domain.ErrOrderNotFound)
}

func TestOrderRepositoryIntegration_Lists(t *testing.T) {
	store := openTestStore(t)
	repo := NewOrderRepository(store)

	base := time.Now().UTC().Truncate(time.Microsecond).Add(-time.Hour)
	for i := 0; i < 5; i++ {
		order := newTestOrder(fmt.Sprintf("2%04d", i))
		order.ID = uuid.NewString()
		order.CreatedAt = base.Add(time.Duration(i) * time.Minute)
		order.UpdatedAt = order.CreatedAt
		if i%2 == 1 {
			order.UserID = "user-2"
		}
		require.NoError(t, repo.Create(order))
	}

	byUser, err := repo.ListByUser("user-2", 0)
	require.NoError(t, err)
	require.Len(t, byUser, 2)
	assert.True(t, byUser[0].CreatedAt.After(byUser[1].CreatedAt))

	limited, err := repo.ListByUser("user-1", 2)
	require.NoError(t, err)
	assert.Len(t, limited, 2)

	page1, total, err := repo.List(1, 3)
	require.NoError(t, err)
	assert.Equal(t, 5, total)
	require.Len(t, page1, 3)

	page2, _, err := repo.List(2, 3)
	require.NoError(t, err)
	assert.Len(t, page2, 2)

	pending, total, err := repo.ListByStatus(domain.DeliveryStatusPending, 1, 10)
	require.NoError(t, err)
	assert.Equal(t, 5, total)
	assert.Len(t, pending, 5)

	shipped, total, err := repo.ListByStatus(domain.DeliveryStatusShipped, 1, 10)
	require.NoError(t, err)
	assert.Zero(t, total)
	assert.Empty(t, shipped)
}

func TestOrderRepositoryIntegration_Statistics(t *testing.T) {
	store := openTestStore(t)
	repo := NewOrderRepository(store)

	statuses := []domain.DeliveryStatus{
		domain.DeliveryStatusDelivered,
		domain.DeliveryStatusCancelled,
		domain.DeliveryStatusPending,
	}
	for i, status := range statuses {
		order := newTestOrder(fmt.Sprintf("3%04d", i))
		order.TotalMinor = int64((i + 1) * 100)
		require.NoError(t, repo.Create(order))

		if status == domain.DeliveryStatusPending {
			continue
		}
		update := domain.TrackingUpdate{Status: status, Timestamp: time.Now().UTC()}
		order.UpdatedAt = update.Timestamp
		require.NoError(t, repo.AppendTracking(order, update))
	}

	stats, err := repo.Statistics()
	require.NoError(t, err)
	assert.Equal(t, 3, stats.TotalOrders)
	assert.Equal(t, 1, stats.DeliveredOrders)
	assert.Equal(t, 1, stats.CancelledOrders)
	assert.Equal(t, 1, stats.PendingOrders)
	// Отменённый заказ (200) в выручку не входит.
	assert.Equal(t, int64(400), stats.TotalRevenueMinor)
}
