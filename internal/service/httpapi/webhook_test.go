package httpapi

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ashish02003/Freshify/internal/domain"
)

func (f *apiFixture) postWebhook(t *testing.T, eventID string, body []byte) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(http.MethodPost, "/api/order/webhook", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if eventID != "" {
		req.Header.Set(HeaderEventID, eventID)
	}

	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)
	return rec
}

func webhookBody(t *testing.T, orderID, paymentID, paymentStatus string) []byte {
	t.Helper()

	raw, err := json.Marshal(map[string]string{
		"order_id":       orderID,
		"paymentId":      paymentID,
		"payment_status": paymentStatus,
	})
	require.NoError(t, err)
	return raw
}

func TestPaymentWebhook(t *testing.T) {
	f := newAPIFixture()
	order := f.placeOrder(t)

	body := webhookBody(t, order.OrderID, "pay-refund-1", "refunded")

	rec := f.postWebhook(t, "evt-1", body)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	stored, err := f.orders.GetByOrderID(order.OrderID)
	require.NoError(t, err)
	assert.Equal(t, "refunded", stored.PaymentStatus)
	assert.Equal(t, "pay-refund-1", stored.PaymentID)
}

func TestPaymentWebhookReplayDoesNotReapply(t *testing.T) {
	f := newAPIFixture()
	order := f.placeOrder(t)

	body := webhookBody(t, order.OrderID, "pay-refund-1", "refunded")

	first := f.postWebhook(t, "evt-1", body)
	require.Equal(t, http.StatusOK, first.Code)

	stored, err := f.orders.GetByOrderID(order.OrderID)
	require.NoError(t, err)
	versionAfterFirst := stored.Version

	pending, err := f.outbox.PullPending(100)
	require.NoError(t, err)
	eventsAfterFirst := len(pending)

	// Повторная доставка того же события: сохранённый ответ, без повторного применения.
	replay := f.postWebhook(t, "evt-1", body)
	require.Equal(t, http.StatusOK, replay.Code)
	assert.Equal(t, first.Body.String(), replay.Body.String())

	stored, err = f.orders.GetByOrderID(order.OrderID)
	require.NoError(t, err)
	assert.Equal(t, versionAfterFirst, stored.Version)

	pending, err = f.outbox.PullPending(100)
	require.NoError(t, err)
	assert.Equal(t, eventsAfterFirst, len(pending))
}

func TestPaymentWebhookHashMismatch(t *testing.T) {
	f := newAPIFixture()
	order := f.placeOrder(t)

	first := f.postWebhook(t, "evt-1", webhookBody(t, order.OrderID, "pay-1", "paid"))
	require.Equal(t, http.StatusOK, first.Code)

	// Тот же event id с другим телом — коллизия ключа.
	conflict := f.postWebhook(t, "evt-1", webhookBody(t, order.OrderID, "pay-2", "refunded"))
	assert.Equal(t, http.StatusConflict, conflict.Code)
}

func TestPaymentWebhookRequiresEventID(t *testing.T) {
	f := newAPIFixture()
	order := f.placeOrder(t)

	rec := f.postWebhook(t, "", webhookBody(t, order.OrderID, "pay-1", "paid"))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestPaymentWebhookEventIDFromBody(t *testing.T) {
	f := newAPIFixture()
	order := f.placeOrder(t)

	raw, err := json.Marshal(map[string]string{
		"event_id":       "evt-body-1",
		"order_id":       order.OrderID,
		"payment_status": "paid",
	})
	require.NoError(t, err)

	rec := f.postWebhook(t, "", raw)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	record, err := f.idempotency.Get("evt-body-1")
	require.NoError(t, err)
	assert.Equal(t, domain.IdempotencyStatusDone, record.Status)
}

func TestPaymentWebhookFailedAttemptIsRetried(t *testing.T) {
	f := newAPIFixture()

	orderID := domain.OrderIDPrefix + "retry-1"
	body := webhookBody(t, orderID, "pay-1", "paid")

	rec := f.postWebhook(t, "evt-1", body)
	require.Equal(t, http.StatusNotFound, rec.Code)

	record, err := f.idempotency.Get("evt-1")
	require.NoError(t, err)
	require.Equal(t, domain.IdempotencyStatusFailed, record.Status)

	// Заказ появился, провайдер повторяет доставку — обработка выполняется заново.
	now := time.Now().UTC()
	require.NoError(t, f.orders.Create(domain.Order{
		ID:             "id-retry-1",
		OrderID:        orderID,
		TrackingNumber: domain.DeriveTrackingNumber(orderID),
		UserID:         "user-1",
		ProductID:      "prod-bananas",
		AddressID:      "addr-1",
		ProductDetails: domain.ProductDetails{Name: "Organic Bananas 1kg"},
		SubTotalMinor:  6900,
		TotalMinor:     6900,
		DeliveryStatus: domain.DeliveryStatusPending,
		TrackingUpdates: []domain.TrackingUpdate{
			{Status: domain.DeliveryStatusPending, Message: "Order placed", Timestamp: now},
		},
		CreatedAt: now,
		UpdatedAt: now,
	}))

	retry := f.postWebhook(t, "evt-1", body)
	require.Equal(t, http.StatusOK, retry.Code, retry.Body.String())

	record, err = f.idempotency.Get("evt-1")
	require.NoError(t, err)
	assert.Equal(t, domain.IdempotencyStatusDone, record.Status)
}
