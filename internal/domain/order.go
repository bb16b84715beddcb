package domain

import (
	"strings"
	"time"
)

// DeliveryStatus описывает стадию доставки заказа.
type DeliveryStatus string

const (
	// DeliveryStatusPending — заказ оформлен, обработка ещё не началась.
	DeliveryStatusPending DeliveryStatus = "pending"
	// DeliveryStatusConfirmed — заказ подтверждён магазином.
	DeliveryStatusConfirmed DeliveryStatus = "confirmed"
	// DeliveryStatusProcessing — заказ собирается.
	DeliveryStatusProcessing DeliveryStatus = "processing"
	// DeliveryStatusPacked — заказ упакован и ждёт передачи в доставку.
	DeliveryStatusPacked DeliveryStatus = "packed"
	// DeliveryStatusShipped — заказ передан службе доставки.
	DeliveryStatusShipped DeliveryStatus = "shipped"
	// DeliveryStatusOutForDelivery — курьер везёт заказ получателю.
	DeliveryStatusOutForDelivery DeliveryStatus = "out_for_delivery"
	// DeliveryStatusDelivered — заказ вручён получателю.
	DeliveryStatusDelivered DeliveryStatus = "delivered"
	// DeliveryStatusCancelled — заказ отменён; запись сохраняется, hard delete не выполняется.
	DeliveryStatusCancelled DeliveryStatus = "cancelled"
	// DeliveryStatusReturned — заказ возвращён после доставки.
	DeliveryStatusReturned DeliveryStatus = "returned"
)

// Valid проверяет, что статус принадлежит перечислению.
func (s DeliveryStatus) Valid() bool {
	switch s {
	case DeliveryStatusPending, DeliveryStatusConfirmed, DeliveryStatusProcessing,
		DeliveryStatusPacked, DeliveryStatusShipped, DeliveryStatusOutForDelivery,
		DeliveryStatusDelivered, DeliveryStatusCancelled, DeliveryStatusReturned:
		return true
	default:
		return false
	}
}

// CancelActor указывает, кто инициировал отмену заказа.
type CancelActor string

const (
	CancelActorCustomer CancelActor = "customer"
	CancelActorAdmin    CancelActor = "admin"
	CancelActorSystem   CancelActor = "system"
)

// Valid проверяет корректность значения cancelled_by.
func (a CancelActor) Valid() bool {
	switch a {
	case CancelActorCustomer, CancelActorAdmin, CancelActorSystem:
		return true
	default:
		return false
	}
}

const (
	// OrderIDPrefix — префикс бизнес-идентификатора заказа.
	OrderIDPrefix = "ORD-"
	// TrackingNumberPrefix — префикс трек-номера, производного от orderId.
	TrackingNumberPrefix = "TRK"
)

// DeriveTrackingNumber детерминированно выводит трек-номер из бизнес-идентификатора:
// ORD-12345 -> TRK12345.
func DeriveTrackingNumber(orderID string) string {
	return TrackingNumberPrefix + strings.TrimPrefix(orderID, OrderIDPrefix)
}

// TrackingUpdate — одна неизменяемая запись истории доставки.
type TrackingUpdate struct {
	Status    DeliveryStatus
	Message   string
	Location  string
	Timestamp time.Time
}

// ProductDetails — снимок товара на момент оформления заказа.
// Снимок создаётся один раз и никогда не синхронизируется с живым каталогом.
type ProductDetails struct {
	Name  string
	Image []string
}

// DeliveryPartner описывает курьера, назначенного на заказ.
type DeliveryPartner struct {
	Name          string
	Phone         string
	VehicleNumber string
}

// Order агрегирует состояние одной покупки вместе с историей доставки.
type Order struct {
	// ID — внутренний первичный ключ (uuid).
	ID string
	// OrderID — бизнес-идентификатор вида ORD-..., уникален и неизменяем.
	OrderID string
	// TrackingNumber уникален среди заказов, у которых он назначен.
	TrackingNumber string

	// Слабые ссылки на сущности внешних коллабораторов.
	UserID    string
	ProductID string
	AddressID string

	ProductDetails ProductDetails

	PaymentID      string
	PaymentStatus  string
	SubTotalMinor  int64
	TotalMinor     int64
	InvoiceReceipt string

	DeliveryStatus  DeliveryStatus
	TrackingUpdates []TrackingUpdate

	EstimatedDelivery *time.Time
	ActualDelivery    *time.Time
	DeliveryPartner   *DeliveryPartner

	OrderNotes      string
	CancelledReason string
	CancelledBy     CancelActor

	Version   int64
	CreatedAt time.Time
	UpdatedAt time.Time
}

// ValidateInvariants проверяет базовые инварианты заказа и возвращает список замечаний.
func (o *Order) ValidateInvariants() []error {
	var errs []error

	if o.OrderID == "" {
		errs = append(errs, ErrOrderIDRequired)
	}
	if o.UserID == "" {
		errs = append(errs, ErrUserRequired)
	}
	if o.ProductID == "" {
		errs = append(errs, ErrProductRequired)
	}
	if o.AddressID == "" {
		errs = append(errs, ErrAddressRequired)
	}
	if o.SubTotalMinor < 0 || o.TotalMinor < 0 {
		errs = append(errs, ErrAmountNegative)
	}
	if !o.DeliveryStatus.Valid() {
		errs = append(errs, ErrInvalidStatus)
	}
	if o.CancelledBy != "" && !o.CancelledBy.Valid() {
		errs = append(errs, ErrInvalidCancelActor)
	}

	return errs
}

// LastTrackingStatus возвращает статус последней записи истории.
// После любого append он обязан совпадать с DeliveryStatus.
func (o *Order) LastTrackingStatus() (DeliveryStatus, bool) {
	if len(o.TrackingUpdates) == 0 {
		return "", false
	}
	return o.TrackingUpdates[len(o.TrackingUpdates)-1].Status, true
}

// Cancellable сообщает, доступна ли покупателю отмена из текущего статуса.
func (o *Order) Cancellable() bool {
	return o.DeliveryStatus == DeliveryStatusPending || o.DeliveryStatus == DeliveryStatusConfirmed
}

// OrderStatistics агрегирует показатели для админской панели.
type OrderStatistics struct {
	TotalOrders       int
	PendingOrders     int
	ProcessingOrders  int
	ShippedOrders     int
	DeliveredOrders   int
	CancelledOrders   int
	TotalRevenueMinor int64
}
