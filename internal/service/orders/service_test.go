package orders

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ashish02003/Freshify/internal/domain"
	"github.com/ashish02003/Freshify/internal/service/access"
	"github.com/ashish02003/Freshify/internal/service/catalog"
	"github.com/ashish02003/Freshify/internal/service/tracking"
	"github.com/ashish02003/Freshify/internal/service/users"
	"github.com/ashish02003/Freshify/internal/storage/memory"
)

type fixture struct {
	service *Service
	query   *Query
	orders  domain.OrderRepository
	outbox  domain.OutboxRepository
}

func newFixture() *fixture {
	orderRepo := memory.NewOrderRepository()
	outboxRepo := memory.NewOutboxRepository()
	directory := users.NewMockDirectory()
	productCatalog := catalog.NewMockCatalog()
	gate := access.NewGate(directory)
	applier := tracking.NewApplier(orderRepo, outboxRepo, nil)

	return &fixture{
		service: NewService(orderRepo, outboxRepo, productCatalog, directory, gate, applier, nil),
		query:   NewQuery(orderRepo, directory, productCatalog, directory, gate),
		orders:  orderRepo,
		outbox:  outboxRepo,
	}
}

func validInput() CreateOrderInput {
	return CreateOrderInput{
		ProductID:     "prod-bananas",
		AddressID:     "addr-1",
		PaymentID:     "pay-1",
		PaymentStatus: "paid",
		SubTotalMinor: 6900,
		TotalMinor:    7900,
	}
}

func TestServiceCreate(t *testing.T) {
	f := newFixture()

	order, err := f.service.Create("user-1", validInput())
	require.NoError(t, err)

	assert.True(t, len(order.OrderID) > len(domain.OrderIDPrefix))
	assert.Equal(t, domain.DeriveTrackingNumber(order.OrderID), order.TrackingNumber)
	assert.Equal(t, domain.DeliveryStatusPending, order.DeliveryStatus)
	assert.Equal(t, "Organic Bananas 1kg", order.ProductDetails.Name)
	require.Len(t, order.TrackingUpdates, 1)
	assert.Equal(t, domain.DeliveryStatusPending, order.TrackingUpdates[0].Status)

	stored, err := f.orders.GetByOrderID(order.OrderID)
	require.NoError(t, err)
	assert.Equal(t, order.OrderID, stored.OrderID)

	pending, err := f.outbox.PullPending(10)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, "order.created", pending[0].EventType)
}

func TestServiceCreateDefaultsAmountsFromCatalog(t *testing.T) {
	f := newFixture()

	input := validInput()
	input.SubTotalMinor = 0
	input.TotalMinor = 0

	order, err := f.service.Create("user-1", input)
	require.NoError(t, err)
	assert.Equal(t, int64(6900), order.SubTotalMinor)
	assert.Equal(t, int64(6900), order.TotalMinor)
}

func TestServiceCreateValidation(t *testing.T) {
	f := newFixture()

	tests := []struct {
		name    string
		userID  string
		mutate  func(*CreateOrderInput)
		wantErr error
	}{
		{"empty user", "", func(*CreateOrderInput) {}, domain.ErrUserRequired},
		{"unknown user", "ghost", func(*CreateOrderInput) {}, domain.ErrForbidden},
		{"unknown product", "user-1", func(in *CreateOrderInput) { in.ProductID = "prod-ghost" }, domain.ErrProductRequired},
		{"empty address", "user-1", func(in *CreateOrderInput) { in.AddressID = " " }, domain.ErrAddressRequired},
		{"negative amount", "user-1", func(in *CreateOrderInput) { in.TotalMinor = -1 }, domain.ErrAmountNegative},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			input := validInput()
			tc.mutate(&input)
			_, err := f.service.Create(tc.userID, input)
			require.ErrorIs(t, err, tc.wantErr)
		})
	}
}

func TestServiceUpdateStatus(t *testing.T) {
	f := newFixture()

	order, err := f.service.Create("user-1", validInput())
	require.NoError(t, err)

	updated, err := f.service.UpdateStatus("admin-1", order.OrderID, domain.DeliveryStatusShipped, "On the way", "Bengaluru hub")
	require.NoError(t, err)
	assert.Equal(t, domain.DeliveryStatusShipped, updated.DeliveryStatus)
	require.Len(t, updated.TrackingUpdates, 2)

	_, err = f.service.UpdateStatus("user-1", order.OrderID, domain.DeliveryStatusDelivered, "", "")
	require.ErrorIs(t, err, domain.ErrForbidden)

	_, err = f.service.UpdateStatus("admin-1", "ORD-missing", domain.DeliveryStatusShipped, "", "")
	require.ErrorIs(t, err, domain.ErrOrderNotFound)

	_, err = f.service.UpdateStatus("admin-1", order.OrderID, domain.DeliveryStatus("warp"), "", "")
	require.ErrorIs(t, err, domain.ErrInvalidStatus)
}

func TestServiceAdminCancelSetsActor(t *testing.T) {
	f := newFixture()

	order, err := f.service.Create("user-1", validInput())
	require.NoError(t, err)

	updated, err := f.service.UpdateStatus("admin-1", order.OrderID, domain.DeliveryStatusCancelled, "out of stock", "")
	require.NoError(t, err)
	assert.Equal(t, domain.CancelActorAdmin, updated.CancelledBy)
	assert.Equal(t, "out of stock", updated.CancelledReason)
}

func TestServiceCancel(t *testing.T) {
	f := newFixture()

	order, err := f.service.Create("user-1", validInput())
	require.NoError(t, err)

	cancelled, err := f.service.Cancel("user-1", order.OrderID, "changed my mind")
	require.NoError(t, err)
	assert.Equal(t, domain.DeliveryStatusCancelled, cancelled.DeliveryStatus)
	assert.Equal(t, domain.CancelActorCustomer, cancelled.CancelledBy)
	assert.Equal(t, "changed my mind", cancelled.CancelledReason)
	require.Len(t, cancelled.TrackingUpdates, 2)
	assert.Contains(t, cancelled.TrackingUpdates[1].Message, "changed my mind")
}

func TestServiceCancelForeignOrder(t *testing.T) {
	f := newFixture()

	order, err := f.service.Create("user-1", validInput())
	require.NoError(t, err)

	_, err = f.service.Cancel("admin-1", order.OrderID, "")
	require.ErrorIs(t, err, domain.ErrForbidden)
}

func TestServiceCancelOutsideWindow(t *testing.T) {
	f := newFixture()

	order, err := f.service.Create("user-1", validInput())
	require.NoError(t, err)

	_, err = f.service.UpdateStatus("admin-1", order.OrderID, domain.DeliveryStatusShipped, "", "")
	require.NoError(t, err)

	_, err = f.service.Cancel("user-1", order.OrderID, "too late")
	require.ErrorIs(t, err, domain.ErrInvalidTransition)
}

func TestServiceUpdate(t *testing.T) {
	f := newFixture()

	order, err := f.service.Create("user-1", validInput())
	require.NoError(t, err)

	newAddress := "addr-2"
	notes := "call before delivery"
	updated, err := f.service.Update("user-1", order.OrderID, UpdateOrderInput{
		AddressID:  &newAddress,
		OrderNotes: &notes,
	})
	require.NoError(t, err)
	assert.Equal(t, "addr-2", updated.AddressID)
	assert.Equal(t, "call before delivery", updated.OrderNotes)

	// Статус и история через Update не меняются.
	stored, err := f.orders.GetByOrderID(order.OrderID)
	require.NoError(t, err)
	assert.Equal(t, domain.DeliveryStatusPending, stored.DeliveryStatus)
	require.Len(t, stored.TrackingUpdates, 1)
}

func TestServiceUpdateAfterShipping(t *testing.T) {
	f := newFixture()

	order, err := f.service.Create("user-1", validInput())
	require.NoError(t, err)

	_, err = f.service.UpdateStatus("admin-1", order.OrderID, domain.DeliveryStatusShipped, "", "")
	require.NoError(t, err)

	addr := "addr-2"
	_, err = f.service.Update("user-1", order.OrderID, UpdateOrderInput{AddressID: &addr})
	require.ErrorIs(t, err, domain.ErrInvalidTransition)
}

func TestServiceAdminUpdate(t *testing.T) {
	f := newFixture()

	order, err := f.service.Create("user-1", validInput())
	require.NoError(t, err)

	partner := domain.DeliveryPartner{Name: "Ravi", Phone: "+919911223344", VehicleNumber: "KA01AB1234"}
	updated, err := f.service.AdminUpdate("admin-1", order.OrderID, AdminUpdateInput{
		DeliveryPartner: &partner,
	})
	require.NoError(t, err)
	require.NotNil(t, updated.DeliveryPartner)
	assert.Equal(t, "Ravi", updated.DeliveryPartner.Name)

	_, err = f.service.AdminUpdate("user-1", order.OrderID, AdminUpdateInput{})
	require.ErrorIs(t, err, domain.ErrForbidden)
}

func TestServiceApplyPaymentUpdate(t *testing.T) {
	f := newFixture()

	order, err := f.service.Create("user-1", validInput())
	require.NoError(t, err)

	updated, err := f.service.ApplyPaymentUpdate(PaymentUpdateInput{
		OrderID:       order.OrderID,
		PaymentID:     "pay-refund-1",
		PaymentStatus: "refunded",
	})
	require.NoError(t, err)
	assert.Equal(t, "refunded", updated.PaymentStatus)
	assert.Equal(t, "pay-refund-1", updated.PaymentID)

	pending, err := f.outbox.PullPending(10)
	require.NoError(t, err)
	// order.created + order.payment_updated
	require.Len(t, pending, 2)
	types := []string{pending[0].EventType, pending[1].EventType}
	assert.Contains(t, types, "order.created")
	assert.Contains(t, types, "order.payment_updated")

	_, err = f.service.ApplyPaymentUpdate(PaymentUpdateInput{OrderID: "ORD-missing"})
	require.ErrorIs(t, err, domain.ErrOrderNotFound)
}
