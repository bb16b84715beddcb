package orders

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"github.com/ashish02003/Freshify/internal/domain"
	"github.com/ashish02003/Freshify/internal/metrics"
	"github.com/ashish02003/Freshify/internal/service/access"
	"github.com/ashish02003/Freshify/internal/service/tracking"
)

const (
	eventOrderCreated        = "order.created"
	eventOrderPaymentUpdated = "order.payment_updated"

	initialTrackingMessage = "Order placed"
)

// CreateOrderInput описывает создаваемый заказ.
type CreateOrderInput struct {
	ProductID      string
	AddressID      string
	PaymentID      string
	PaymentStatus  string
	SubTotalMinor  int64
	TotalMinor     int64
	InvoiceReceipt string
	OrderNotes     string
}

// UpdateOrderInput описывает поля, которые покупатель может поменять
// до отгрузки заказа.
type UpdateOrderInput struct {
	AddressID  *string
	OrderNotes *string
}

// AdminUpdateInput описывает поля, доступные админу при ведении доставки.
type AdminUpdateInput struct {
	EstimatedDelivery *time.Time
	DeliveryPartner   *domain.DeliveryPartner
	OrderNotes        *string
	PaymentStatus     *string
}

// PaymentUpdateInput — событие платёжного провайдера.
type PaymentUpdateInput struct {
	OrderID       string
	PaymentID     string
	PaymentStatus string
}

// Service реализует команды над заказами.
type Service struct {
	orders  domain.OrderRepository
	outbox  domain.OutboxRepository
	catalog domain.ProductCatalog
	users   domain.UserDirectory
	gate    *access.Gate
	applier *tracking.Applier
	metrics *metrics.OrderMetrics
	logger  *log.Entry
	now     func() time.Time
	newID   func() string
}

// NewService создаёт сервис команд над заказами.
func NewService(
	orders domain.OrderRepository,
	outbox domain.OutboxRepository,
	catalog domain.ProductCatalog,
	users domain.UserDirectory,
	gate *access.Gate,
	applier *tracking.Applier,
	orderMetrics *metrics.OrderMetrics,
) *Service {
	return &Service{
		orders:  orders,
		outbox:  outbox,
		catalog: catalog,
		users:   users,
		gate:    gate,
		applier: applier,
		metrics: orderMetrics,
		logger:  log.WithField("component", "order-service"),
		now:     time.Now,
		newID:   uuid.NewString,
	}
}

// Create регистрирует новый заказ со статусом pending и первой записью истории.
func (s *Service) Create(userID string, input CreateOrderInput) (domain.Order, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return domain.Order{}, domain.ErrUserRequired
	}
	if _, ok := s.users.GetUser(userID); !ok {
		return domain.Order{}, domain.ErrForbidden
	}

	product, ok := s.catalog.GetProduct(strings.TrimSpace(input.ProductID))
	if !ok {
		return domain.Order{}, domain.ErrProductRequired
	}
	if strings.TrimSpace(input.AddressID) == "" {
		return domain.Order{}, domain.ErrAddressRequired
	}
	if input.SubTotalMinor < 0 || input.TotalMinor < 0 {
		return domain.Order{}, domain.ErrAmountNegative
	}

	subTotal := input.SubTotalMinor
	total := input.TotalMinor
	if subTotal == 0 {
		subTotal = product.PriceMinor
	}
	if total == 0 {
		total = subTotal
	}

	now := s.now().UTC()
	orderID := domain.OrderIDPrefix + s.newID()

	order := domain.Order{
		ID:             s.newID(),
		OrderID:        orderID,
		TrackingNumber: domain.DeriveTrackingNumber(orderID),
		UserID:         userID,
		ProductID:      product.ID,
		AddressID:      strings.TrimSpace(input.AddressID),
		ProductDetails: domain.ProductDetails{
			Name:  product.Name,
			Image: append([]string(nil), product.Image...),
		},
		PaymentID:      strings.TrimSpace(input.PaymentID),
		PaymentStatus:  strings.TrimSpace(input.PaymentStatus),
		SubTotalMinor:  subTotal,
		TotalMinor:     total,
		InvoiceReceipt: strings.TrimSpace(input.InvoiceReceipt),
		DeliveryStatus: domain.DeliveryStatusPending,
		TrackingUpdates: []domain.TrackingUpdate{
			{Status: domain.DeliveryStatusPending, Message: initialTrackingMessage, Timestamp: now},
		},
		OrderNotes: strings.TrimSpace(input.OrderNotes),
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	if errs := order.ValidateInvariants(); len(errs) > 0 {
		return domain.Order{}, errs[0]
	}

	if err := s.orders.Create(order); err != nil {
		return domain.Order{}, fmt.Errorf("create order: %w", err)
	}

	if s.metrics != nil {
		s.metrics.RecordOrderCreated()
	}
	s.enqueueEvent(order, eventOrderCreated, map[string]any{
		"order_id":        order.OrderID,
		"user_id":         order.UserID,
		"product_id":      order.ProductID,
		"tracking_number": order.TrackingNumber,
		"total_minor":     order.TotalMinor,
		"status":          string(order.DeliveryStatus),
		"created_at":      order.CreatedAt.Format(time.RFC3339Nano),
	})

	s.logger.WithFields(log.Fields{
		"order_id": order.OrderID,
		"user_id":  order.UserID,
	}).Info("order created")

	return order, nil
}

// UpdateStatus — админский перевод заказа в новый статус доставки.
func (s *Service) UpdateStatus(adminID, orderID string, status domain.DeliveryStatus, message, location string) (domain.Order, error) {
	if _, err := s.gate.RequireAdmin(adminID); err != nil {
		return domain.Order{}, err
	}

	order, err := s.orders.GetByOrderID(orderID)
	if err != nil {
		return domain.Order{}, err
	}

	if status == domain.DeliveryStatusCancelled {
		order.CancelledBy = domain.CancelActorAdmin
		if message != "" {
			order.CancelledReason = message
		}
	}

	if strings.TrimSpace(message) == "" {
		message = string(status)
	}

	return s.applier.Apply(order, status, message, location)
}

// Cancel — отмена заказа покупателем.
// Разрешена только в окне pending/confirmed; заказ сохраняется как cancelled.
func (s *Service) Cancel(userID, orderID, reason string) (domain.Order, error) {
	order, err := s.orders.GetByOrderID(orderID)
	if err != nil {
		return domain.Order{}, err
	}

	if err := s.gate.RequireOwner(order, userID); err != nil {
		return domain.Order{}, err
	}
	if !order.Cancellable() {
		return domain.Order{}, fmt.Errorf("order %s in status %s: %w", order.OrderID, order.DeliveryStatus, domain.ErrInvalidTransition)
	}

	order.CancelledReason = strings.TrimSpace(reason)
	order.CancelledBy = domain.CancelActorCustomer

	message := "Cancelled by customer"
	if order.CancelledReason != "" {
		message = message + ": " + order.CancelledReason
	}

	return s.applier.Apply(order, domain.DeliveryStatusCancelled, message, "")
}

// Update — изменение адреса и заметок покупателем до отгрузки.
func (s *Service) Update(userID, orderID string, input UpdateOrderInput) (domain.Order, error) {
	order, err := s.orders.GetByOrderID(orderID)
	if err != nil {
		return domain.Order{}, err
	}

	if err := s.gate.RequireOwner(order, userID); err != nil {
		return domain.Order{}, err
	}
	if !order.Cancellable() {
		// После подтверждения отгрузки адрес менять поздно.
		return domain.Order{}, fmt.Errorf("order %s in status %s: %w", order.OrderID, order.DeliveryStatus, domain.ErrInvalidTransition)
	}

	if input.AddressID != nil && strings.TrimSpace(*input.AddressID) != "" {
		order.AddressID = strings.TrimSpace(*input.AddressID)
	}
	if input.OrderNotes != nil {
		order.OrderNotes = strings.TrimSpace(*input.OrderNotes)
	}
	order.UpdatedAt = s.now().UTC()

	if err := s.orders.Save(order); err != nil {
		return domain.Order{}, fmt.Errorf("save order: %w", err)
	}
	order.Version++

	return order, nil
}

// AdminUpdate — ведение доставки: ETA, курьер, заметки, статус оплаты.
func (s *Service) AdminUpdate(adminID, orderID string, input AdminUpdateInput) (domain.Order, error) {
	if _, err := s.gate.RequireAdmin(adminID); err != nil {
		return domain.Order{}, err
	}

	order, err := s.orders.GetByOrderID(orderID)
	if err != nil {
		return domain.Order{}, err
	}

	if input.EstimatedDelivery != nil {
		eta := input.EstimatedDelivery.UTC()
		order.EstimatedDelivery = &eta
	}
	if input.DeliveryPartner != nil {
		partner := *input.DeliveryPartner
		order.DeliveryPartner = &partner
	}
	if input.OrderNotes != nil {
		order.OrderNotes = strings.TrimSpace(*input.OrderNotes)
	}
	if input.PaymentStatus != nil {
		// Metadata-only: смена payment_status историю доставки не растит.
		order.PaymentStatus = strings.TrimSpace(*input.PaymentStatus)
	}
	order.UpdatedAt = s.now().UTC()

	if err := s.orders.Save(order); err != nil {
		return domain.Order{}, fmt.Errorf("save order: %w", err)
	}
	order.Version++

	return order, nil
}

// ApplyPaymentUpdate применяет событие платёжного провайдера к заказу.
func (s *Service) ApplyPaymentUpdate(input PaymentUpdateInput) (domain.Order, error) {
	order, err := s.orders.GetByOrderID(strings.TrimSpace(input.OrderID))
	if err != nil {
		return domain.Order{}, err
	}

	if input.PaymentID != "" {
		order.PaymentID = strings.TrimSpace(input.PaymentID)
	}
	order.PaymentStatus = strings.TrimSpace(input.PaymentStatus)
	order.UpdatedAt = s.now().UTC()

	if err := s.orders.Save(order); err != nil {
		return domain.Order{}, fmt.Errorf("save payment update: %w", err)
	}
	order.Version++

	if s.metrics != nil {
		s.metrics.RecordPaymentUpdate()
	}
	s.enqueueEvent(order, eventOrderPaymentUpdated, map[string]any{
		"order_id":       order.OrderID,
		"user_id":        order.UserID,
		"payment_id":     order.PaymentID,
		"payment_status": order.PaymentStatus,
		"updated_at":     order.UpdatedAt.Format(time.RFC3339Nano),
	})

	return order, nil
}

func (s *Service) enqueueEvent(order domain.Order, eventType string, payload map[string]any) {
	if s.outbox == nil {
		return
	}

	body, err := json.Marshal(payload)
	if err != nil {
		s.logger.WithError(err).WithField("order_id", order.OrderID).Warn("failed to marshal order event")
		return
	}

	if _, err := s.outbox.Enqueue(domain.OutboxMessage{
		AggregateType: "order",
		AggregateID:   order.OrderID,
		EventType:     eventType,
		Payload:       body,
	}); err != nil {
		s.logger.WithError(err).WithField("order_id", order.OrderID).Warn("failed to enqueue order event")
		return
	}

	if s.metrics != nil {
		s.metrics.RecordOutboxEvent()
	}
}
