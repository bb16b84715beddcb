package orders

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ashish02003/Freshify/internal/domain"
)

func seedOrders(t *testing.T, f *fixture, count int) []domain.Order {
	t.Helper()

	created := make([]domain.Order, 0, count)
	for i := 0; i < count; i++ {
		input := validInput()
		input.TotalMinor = int64((i + 1) * 100)
		order, err := f.service.Create("user-1", input)
		require.NoError(t, err, fmt.Sprintf("seed order %d", i))
		created = append(created, order)
	}
	return created
}

func TestQueryGetForUser(t *testing.T) {
	f := newFixture()
	order, err := f.service.Create("user-1", validInput())
	require.NoError(t, err)

	view, err := f.query.GetForUser("user-1", order.OrderID)
	require.NoError(t, err)
	assert.Equal(t, order.OrderID, view.Order.OrderID)
	require.NotNil(t, view.User)
	assert.Equal(t, "user-1", view.User.ID)
	require.NotNil(t, view.Product)
	assert.Equal(t, "prod-bananas", view.Product.ID)
	require.NotNil(t, view.Address)
	assert.Equal(t, "addr-1", view.Address.ID)

	// Чужой заказ неотличим от несуществующего
	_, err = f.query.GetForUser("admin-1", order.OrderID)
	require.ErrorIs(t, err, domain.ErrOrderNotFound)

	_, err = f.query.GetForUser("user-1", "ORD-missing")
	require.ErrorIs(t, err, domain.ErrOrderNotFound)
}

func TestQueryGetForAdmin(t *testing.T) {
	f := newFixture()
	order, err := f.service.Create("user-1", validInput())
	require.NoError(t, err)

	view, err := f.query.GetForAdmin("admin-1", order.OrderID)
	require.NoError(t, err)
	assert.Equal(t, order.OrderID, view.Order.OrderID)

	_, err = f.query.GetForAdmin("user-1", order.OrderID)
	require.ErrorIs(t, err, domain.ErrForbidden)
}

func TestQueryListForUser(t *testing.T) {
	f := newFixture()
	seedOrders(t, f, 3)

	views, err := f.query.ListForUser("user-1", 0)
	require.NoError(t, err)
	assert.Len(t, views, 3)

	limited, err := f.query.ListForUser("user-1", 2)
	require.NoError(t, err)
	assert.Len(t, limited, 2)

	_, err = f.query.ListForUser("", 0)
	require.ErrorIs(t, err, domain.ErrUserRequired)
}

func TestQueryListAllForAdmin(t *testing.T) {
	f := newFixture()
	seedOrders(t, f, 25)

	views, pagination, err := f.query.ListAllForAdmin("admin-1", 3, 10)
	require.NoError(t, err)
	assert.Len(t, views, 5)
	assert.Equal(t, Pagination{
		CurrentPage: 3,
		TotalPages:  3,
		TotalOrders: 25,
		HasMore:     false,
	}, pagination)

	_, pagination, err = f.query.ListAllForAdmin("admin-1", 1, 10)
	require.NoError(t, err)
	assert.True(t, pagination.HasMore)

	_, _, err = f.query.ListAllForAdmin("user-1", 1, 10)
	require.ErrorIs(t, err, domain.ErrForbidden)
}

func TestQueryListByStatusForAdmin(t *testing.T) {
	f := newFixture()
	created := seedOrders(t, f, 3)

	_, err := f.service.UpdateStatus("admin-1", created[0].OrderID, domain.DeliveryStatusShipped, "", "")
	require.NoError(t, err)

	shipped, pagination, err := f.query.ListByStatusForAdmin("admin-1", domain.DeliveryStatusShipped, 1, 10)
	require.NoError(t, err)
	require.Len(t, shipped, 1)
	assert.Equal(t, created[0].OrderID, shipped[0].Order.OrderID)
	assert.Equal(t, 1, pagination.TotalOrders)

	_, _, err = f.query.ListByStatusForAdmin("admin-1", domain.DeliveryStatus("warp"), 1, 10)
	require.ErrorIs(t, err, domain.ErrInvalidStatus)
}

func TestQueryStatistics(t *testing.T) {
	f := newFixture()
	created := seedOrders(t, f, 3)

	_, err := f.service.UpdateStatus("admin-1", created[0].OrderID, domain.DeliveryStatusDelivered, "", "")
	require.NoError(t, err)
	_, err = f.service.Cancel("user-1", created[1].OrderID, "")
	require.NoError(t, err)

	stats, err := f.query.Statistics("admin-1")
	require.NoError(t, err)
	assert.Equal(t, 3, stats.TotalOrders)
	assert.Equal(t, 1, stats.DeliveredOrders)
	assert.Equal(t, 1, stats.CancelledOrders)
	assert.Equal(t, 1, stats.PendingOrders)
	// 100 + 300: отменённый заказ (200) в выручку не входит.
	assert.Equal(t, int64(400), stats.TotalRevenueMinor)

	_, err = f.query.Statistics("user-1")
	require.ErrorIs(t, err, domain.ErrForbidden)
}

func TestQueryTrackForUser(t *testing.T) {
	f := newFixture()
	order, err := f.service.Create("user-1", validInput())
	require.NoError(t, err)

	tracked, err := f.query.TrackForUser("user-1", order.OrderID)
	require.NoError(t, err)
	assert.Equal(t, order.TrackingNumber, tracked.TrackingNumber)
	require.Len(t, tracked.TrackingUpdates, 1)

	// Чужой заказ неотличим от несуществующего.
	_, err = f.query.TrackForUser("admin-1", order.OrderID)
	require.ErrorIs(t, err, domain.ErrOrderNotFound)
}
