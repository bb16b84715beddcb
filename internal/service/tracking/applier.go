package tracking

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/ashish02003/Freshify/internal/domain"
	"github.com/ashish02003/Freshify/internal/metrics"
)

// EventType-ы, которые applier кладёт в outbox.
const (
	eventOrderStatusChanged = "order.status_changed"
	eventOrderCancelled     = "order.cancelled"
)

// Applier применяет изменение статуса доставки к заказу.
// Статус и запись истории сохраняются одним вызовом репозитория,
// чтобы история не расходилась с текущим статусом.
type Applier struct {
	orders  domain.OrderRepository
	outbox  domain.OutboxRepository
	metrics *metrics.OrderMetrics
	logger  *log.Entry
	now     func() time.Time
}

// NewApplier создаёт applier статусов доставки.
func NewApplier(orders domain.OrderRepository, outbox domain.OutboxRepository, orderMetrics *metrics.OrderMetrics) *Applier {
	return &Applier{
		orders:  orders,
		outbox:  outbox,
		metrics: orderMetrics,
		logger:  log.WithField("component", "tracking-applier"),
		now:     time.Now,
	}
}

// Apply переводит заказ в новый статус и дописывает запись истории.
// Возвращает заказ в состоянии после применения.
func (a *Applier) Apply(order domain.Order, status domain.DeliveryStatus, message, location string) (domain.Order, error) {
	if !status.Valid() {
		return domain.Order{}, fmt.Errorf("delivery status %q: %w", status, domain.ErrInvalidStatus)
	}

	now := a.now().UTC()
	update := domain.TrackingUpdate{
		Status:    status,
		Message:   strings.TrimSpace(message),
		Location:  strings.TrimSpace(location),
		Timestamp: now,
	}

	previousCreatedAt := order.CreatedAt
	if status == domain.DeliveryStatusDelivered {
		order.ActualDelivery = &now
	}
	order.UpdatedAt = now

	if err := a.orders.AppendTracking(order, update); err != nil {
		return domain.Order{}, fmt.Errorf("append tracking %s -> %s: %w", order.OrderID, status, err)
	}

	order.DeliveryStatus = status
	order.TrackingUpdates = append(order.TrackingUpdates, update)
	order.Version++

	a.recordMetrics(order, status, previousCreatedAt, now)
	a.enqueueEvent(order, update)

	return order, nil
}

func (a *Applier) recordMetrics(order domain.Order, status domain.DeliveryStatus, createdAt, now time.Time) {
	if a.metrics == nil {
		return
	}

	a.metrics.RecordTrackingEvent()
	a.metrics.RecordStatusTransition(string(status))
	switch status {
	case domain.DeliveryStatusDelivered:
		a.metrics.RecordOrderDelivered(createdAt, now)
	case domain.DeliveryStatusCancelled:
		a.metrics.RecordOrderCancelled(string(order.CancelledBy))
	}
}

func (a *Applier) enqueueEvent(order domain.Order, update domain.TrackingUpdate) {
	if a.outbox == nil {
		return
	}

	eventType := eventOrderStatusChanged
	if update.Status == domain.DeliveryStatusCancelled {
		eventType = eventOrderCancelled
	}

	payload, err := json.Marshal(map[string]any{
		"order_id":  order.OrderID,
		"user_id":   order.UserID,
		"status":    string(update.Status),
		"message":   update.Message,
		"location":  update.Location,
		"timestamp": update.Timestamp.Format(time.RFC3339Nano),
	})
	if err != nil {
		a.logger.WithError(err).WithField("order_id", order.OrderID).Warn("failed to marshal tracking event")
		return
	}

	if _, err := a.outbox.Enqueue(domain.OutboxMessage{
		AggregateType: "order",
		AggregateID:   order.OrderID,
		EventType:     eventType,
		Payload:       payload,
	}); err != nil {
		a.logger.WithError(err).WithField("order_id", order.OrderID).Warn("failed to enqueue tracking event")
		return
	}

	if a.metrics != nil {
		a.metrics.RecordOutboxEvent()
	}
}
