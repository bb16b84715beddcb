package httpapi

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/ashish02003/Freshify/internal/domain"
	"github.com/ashish02003/Freshify/internal/service/orders"
)

// Envelope — единый формат ответа API.
type Envelope struct {
	Message    string             `json:"message"`
	Error      bool               `json:"error"`
	Success    bool               `json:"success"`
	Data       any                `json:"data,omitempty"`
	Pagination *orders.Pagination `json:"pagination,omitempty"`
}

func respondOK(c *gin.Context, status int, message string, data any) {
	c.JSON(status, Envelope{
		Message: message,
		Success: true,
		Data:    data,
	})
}

func respondPage(c *gin.Context, message string, data any, pagination orders.Pagination) {
	c.JSON(http.StatusOK, Envelope{
		Message:    message,
		Success:    true,
		Data:       data,
		Pagination: &pagination,
	})
}

func respondError(c *gin.Context, err error) {
	c.JSON(statusFromError(err), Envelope{
		Message: err.Error(),
		Error:   true,
	})
}

func respondErrorMessage(c *gin.Context, status int, message string) {
	c.JSON(status, Envelope{
		Message: message,
		Error:   true,
	})
}

func statusFromError(err error) int {
	switch {
	case errors.Is(err, domain.ErrOrderNotFound),
		errors.Is(err, domain.ErrIdempotencyKeyNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, domain.ErrOrderVersionConflict),
		errors.Is(err, domain.ErrOrderAlreadyExists),
		errors.Is(err, domain.ErrIdempotencyHashMismatch):
		return http.StatusConflict
	case errors.Is(err, domain.ErrInvalidTransition),
		errors.Is(err, domain.ErrInvalidStatus),
		errors.Is(err, domain.ErrInvalidCancelActor),
		errors.Is(err, domain.ErrOrderIDRequired),
		errors.Is(err, domain.ErrUserRequired),
		errors.Is(err, domain.ErrProductRequired),
		errors.Is(err, domain.ErrAddressRequired),
		errors.Is(err, domain.ErrAmountNegative),
		errors.Is(err, domain.ErrIdempotencyKeyRequired),
		errors.Is(err, domain.ErrIdempotencyRequestHashRequired):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// orderJSON — представление заказа в API, повторяет схему клиента Freshify.
type orderJSON struct {
	OrderID           string                  `json:"orderId"`
	TrackingNumber    string                  `json:"tracking_number"`
	UserID            string                  `json:"userId"`
	ProductID         string                  `json:"productId"`
	AddressID         string                  `json:"delivery_address"`
	ProductDetails    productDetailsJSON      `json:"product_details"`
	PaymentID         string                  `json:"paymentId,omitempty"`
	PaymentStatus     string                  `json:"payment_status,omitempty"`
	SubTotalMinor     int64                   `json:"sub_total_minor"`
	TotalMinor        int64                   `json:"total_minor"`
	InvoiceReceipt    string                  `json:"invoice_receipt,omitempty"`
	DeliveryStatus    string                  `json:"delivery_status"`
	TrackingUpdates   []trackingUpdateJSON    `json:"tracking_updates"`
	EstimatedDelivery *time.Time              `json:"estimated_delivery,omitempty"`
	ActualDelivery    *time.Time              `json:"actual_delivery,omitempty"`
	DeliveryPartner   *domain.DeliveryPartner `json:"delivery_partner,omitempty"`
	OrderNotes        string                  `json:"order_notes,omitempty"`
	CancelledReason   string                  `json:"cancelled_reason,omitempty"`
	CancelledBy       string                  `json:"cancelled_by,omitempty"`
	Version           int64                   `json:"version"`
	CreatedAt         time.Time               `json:"createdAt"`
	UpdatedAt         time.Time               `json:"updatedAt"`
}

type productDetailsJSON struct {
	Name  string   `json:"name"`
	Image []string `json:"image"`
}

type trackingUpdateJSON struct {
	Status    string    `json:"status"`
	Message   string    `json:"message,omitempty"`
	Location  string    `json:"location,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// trackingJSON — публичная проекция для страницы отслеживания.
type trackingJSON struct {
	OrderID           string                  `json:"orderId"`
	TrackingNumber    string                  `json:"tracking_number"`
	DeliveryStatus    string                  `json:"delivery_status"`
	TrackingUpdates   []trackingUpdateJSON    `json:"tracking_updates"`
	EstimatedDelivery *time.Time              `json:"estimated_delivery,omitempty"`
	ActualDelivery    *time.Time              `json:"actual_delivery,omitempty"`
	DeliveryPartner   *domain.DeliveryPartner `json:"delivery_partner,omitempty"`
}

func toOrderJSON(order domain.Order) orderJSON {
	updates := make([]trackingUpdateJSON, 0, len(order.TrackingUpdates))
	for _, u := range order.TrackingUpdates {
		updates = append(updates, trackingUpdateJSON{
			Status:    string(u.Status),
			Message:   u.Message,
			Location:  u.Location,
			Timestamp: u.Timestamp,
		})
	}

	return orderJSON{
		OrderID:        order.OrderID,
		TrackingNumber: order.TrackingNumber,
		UserID:         order.UserID,
		ProductID:      order.ProductID,
		AddressID:      order.AddressID,
		ProductDetails: productDetailsJSON{
			Name:  order.ProductDetails.Name,
			Image: order.ProductDetails.Image,
		},
		PaymentID:         order.PaymentID,
		PaymentStatus:     order.PaymentStatus,
		SubTotalMinor:     order.SubTotalMinor,
		TotalMinor:        order.TotalMinor,
		InvoiceReceipt:    order.InvoiceReceipt,
		DeliveryStatus:    string(order.DeliveryStatus),
		TrackingUpdates:   updates,
		EstimatedDelivery: order.EstimatedDelivery,
		ActualDelivery:    order.ActualDelivery,
		DeliveryPartner:   order.DeliveryPartner,
		OrderNotes:        order.OrderNotes,
		CancelledReason:   order.CancelledReason,
		CancelledBy:       string(order.CancelledBy),
		Version:           order.Version,
		CreatedAt:         order.CreatedAt,
		UpdatedAt:         order.UpdatedAt,
	}
}

func toTrackingJSON(order domain.Order) trackingJSON {
	full := toOrderJSON(order)
	return trackingJSON{
		OrderID:           full.OrderID,
		TrackingNumber:    full.TrackingNumber,
		DeliveryStatus:    full.DeliveryStatus,
		TrackingUpdates:   full.TrackingUpdates,
		EstimatedDelivery: full.EstimatedDelivery,
		ActualDelivery:    full.ActualDelivery,
		DeliveryPartner:   full.DeliveryPartner,
	}
}

// userViewJSON — контактные данные покупателя для админских ответов.
// Роль и внутренний идентификатор справочника наружу не отдаются.
type userViewJSON struct {
	Name   string `json:"name"`
	Email  string `json:"email"`
	Mobile string `json:"mobile"`
}

// orderViewJSON — заказ с данными справочников для админских ответов.
type orderViewJSON struct {
	orderJSON
	User    *userViewJSON       `json:"user,omitempty"`
	Product *domain.ProductView `json:"product,omitempty"`
	Address *domain.AddressView `json:"address,omitempty"`
}

func toOrderViewJSON(view orders.OrderView) orderViewJSON {
	result := orderViewJSON{
		orderJSON: toOrderJSON(view.Order),
		Product:   view.Product,
		Address:   view.Address,
	}
	if view.User != nil {
		result.User = &userViewJSON{
			Name:   view.User.Name,
			Email:  view.User.Email,
			Mobile: view.User.Mobile,
		}
	}
	return result
}

func toOrderViewListJSON(views []orders.OrderView) []orderViewJSON {
	result := make([]orderViewJSON, 0, len(views))
	for _, view := range views {
		result = append(result, toOrderViewJSON(view))
	}
	return result
}
