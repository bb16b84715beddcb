package httpapi

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	validatorv10 "github.com/go-playground/validator/v10"
	log "github.com/sirupsen/logrus"

	"github.com/ashish02003/Freshify/internal/domain"
	"github.com/ashish02003/Freshify/internal/service/orders"
)

const (
	// HeaderEventID — идентификатор события платёжного провайдера,
	// ключ идемпотентности для webhook.
	HeaderEventID = "X-Event-Id"

	paymentStatusCashOnDelivery = "cash_on_delivery"

	webhookKeyTTL = 24 * time.Hour
)

// OrderHandler обслуживает покупательские маршруты и платёжный webhook.
type OrderHandler struct {
	service     *orders.Service
	query       *orders.Query
	idempotency domain.IdempotencyRepository
	validate    *validatorv10.Validate
	logger      *log.Entry
	now         func() time.Time
}

// NewOrderHandler создаёт обработчик покупательских маршрутов.
func NewOrderHandler(
	service *orders.Service,
	query *orders.Query,
	idempotency domain.IdempotencyRepository,
) *OrderHandler {
	return &OrderHandler{
		service:     service,
		query:       query,
		idempotency: idempotency,
		validate:    validatorv10.New(),
		logger:      log.WithField("component", "http-order-handler"),
		now:         time.Now,
	}
}

type createOrderRequest struct {
	ProductID      string `json:"productId" validate:"required"`
	AddressID      string `json:"addressId" validate:"required"`
	PaymentID      string `json:"paymentId"`
	PaymentStatus  string `json:"payment_status"`
	SubTotalMinor  int64  `json:"sub_total_minor" validate:"gte=0"`
	TotalMinor     int64  `json:"total_minor" validate:"gte=0"`
	InvoiceReceipt string `json:"invoice_receipt"`
	OrderNotes     string `json:"order_notes"`
}

type updateOrderRequest struct {
	AddressID  *string `json:"addressId"`
	OrderNotes *string `json:"order_notes"`
}

type cancelOrderRequest struct {
	Reason string `json:"reason"`
}

type paymentWebhookRequest struct {
	EventID       string `json:"event_id"`
	OrderID       string `json:"order_id" validate:"required"`
	PaymentID     string `json:"paymentId"`
	PaymentStatus string `json:"payment_status" validate:"required"`
}

// CashOnDelivery оформляет заказ с оплатой при получении.
func (h *OrderHandler) CashOnDelivery(c *gin.Context) {
	var req createOrderRequest
	if err := bindAndValidate(c, &req, h.validate); err != nil {
		return
	}

	order, err := h.service.Create(currentUserID(c), orders.CreateOrderInput{
		ProductID:     req.ProductID,
		AddressID:     req.AddressID,
		PaymentStatus: paymentStatusCashOnDelivery,
		SubTotalMinor: req.SubTotalMinor,
		TotalMinor:    req.TotalMinor,
		OrderNotes:    req.OrderNotes,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	respondOK(c, http.StatusCreated, "order placed", toOrderJSON(order))
}

// Checkout оформляет заказ с онлайн-оплатой.
func (h *OrderHandler) Checkout(c *gin.Context) {
	var req createOrderRequest
	if err := bindAndValidate(c, &req, h.validate); err != nil {
		return
	}
	if strings.TrimSpace(req.PaymentID) == "" {
		respondErrorMessage(c, http.StatusBadRequest, "paymentId is required for checkout")
		return
	}

	order, err := h.service.Create(currentUserID(c), orders.CreateOrderInput{
		ProductID:      req.ProductID,
		AddressID:      req.AddressID,
		PaymentID:      req.PaymentID,
		PaymentStatus:  req.PaymentStatus,
		SubTotalMinor:  req.SubTotalMinor,
		TotalMinor:     req.TotalMinor,
		InvoiceReceipt: req.InvoiceReceipt,
		OrderNotes:     req.OrderNotes,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	respondOK(c, http.StatusCreated, "order placed", toOrderJSON(order))
}

// List возвращает заказы покупателя, новые первыми.
func (h *OrderHandler) List(c *gin.Context) {
	limit, _ := strconv.Atoi(c.Query("limit"))

	views, err := h.query.ListForUser(currentUserID(c), limit)
	if err != nil {
		respondError(c, err)
		return
	}

	result := make([]orderJSON, 0, len(views))
	for _, view := range views {
		result = append(result, toOrderJSON(view.Order))
	}
	respondOK(c, http.StatusOK, "order list", result)
}

// Get возвращает заказ владельцу.
func (h *OrderHandler) Get(c *gin.Context) {
	view, err := h.query.GetForUser(currentUserID(c), c.Param("orderId"))
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, "order details", toOrderViewJSON(view))
}

// Track возвращает публичную проекцию для страницы отслеживания.
func (h *OrderHandler) Track(c *gin.Context) {
	order, err := h.query.TrackForUser(currentUserID(c), c.Param("orderId"))
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, "order tracking", toTrackingJSON(order))
}

// Update меняет адрес и заметки до отгрузки заказа.
func (h *OrderHandler) Update(c *gin.Context) {
	var req updateOrderRequest
	if err := bindAndValidate(c, &req, h.validate); err != nil {
		return
	}

	order, err := h.service.Update(currentUserID(c), c.Param("orderId"), orders.UpdateOrderInput{
		AddressID:  req.AddressID,
		OrderNotes: req.OrderNotes,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, "order updated", toOrderJSON(order))
}

// Cancel отменяет заказ покупателя в окне pending/confirmed.
// Тело с причиной необязательно.
func (h *OrderHandler) Cancel(c *gin.Context) {
	var req cancelOrderRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			respondErrorMessage(c, http.StatusBadRequest, "invalid request body: "+err.Error())
			return
		}
	}

	order, err := h.service.Cancel(currentUserID(c), c.Param("orderId"), req.Reason)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, "order cancelled", toOrderJSON(order))
}

// PaymentWebhook применяет событие платёжного провайдера к заказу.
// Провайдеры повторяют доставку, поэтому обработка ключуется event id:
// повтор завершённого события возвращает сохранённый ответ без повторного применения.
func (h *OrderHandler) PaymentWebhook(c *gin.Context) {
	body, err := c.GetRawData()
	if err != nil {
		respondErrorMessage(c, http.StatusBadRequest, "failed to read request body")
		return
	}

	var req paymentWebhookRequest
	if err := json.Unmarshal(body, &req); err != nil {
		respondErrorMessage(c, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	if err := h.validate.Struct(&req); err != nil {
		respondErrorMessage(c, http.StatusBadRequest, "validation failed: "+validationMessage(err))
		return
	}

	eventID := strings.TrimSpace(c.GetHeader(HeaderEventID))
	if eventID == "" {
		eventID = strings.TrimSpace(req.EventID)
	}
	if eventID == "" {
		respondErrorMessage(c, http.StatusBadRequest, "event id is required")
		return
	}

	sum := sha256.Sum256(body)
	requestHash := hex.EncodeToString(sum[:])

	record, err := h.idempotency.CreateProcessing(eventID, requestHash, h.now().UTC().Add(webhookKeyTTL))
	switch {
	case err == nil:
		// first delivery, fall through to processing
	case errors.Is(err, domain.ErrIdempotencyHashMismatch):
		respondError(c, err)
		return
	case errors.Is(err, domain.ErrIdempotencyKeyAlreadyExists):
		switch record.Status {
		case domain.IdempotencyStatusDone:
			c.Data(record.HTTPStatus, "application/json", record.ResponseBody)
			return
		case domain.IdempotencyStatusProcessing:
			respondOK(c, http.StatusAccepted, "event is already being processed", nil)
			return
		case domain.IdempotencyStatusFailed:
			// предыдущая попытка упала, обрабатываем повторно
		}
	default:
		respondError(c, err)
		return
	}

	order, err := h.service.ApplyPaymentUpdate(orders.PaymentUpdateInput{
		OrderID:       req.OrderID,
		PaymentID:     req.PaymentID,
		PaymentStatus: req.PaymentStatus,
	})
	if err != nil {
		status := statusFromError(err)
		failure, _ := json.Marshal(Envelope{Message: err.Error(), Error: true})
		if markErr := h.idempotency.MarkFailed(eventID, failure, status); markErr != nil {
			h.logger.WithError(markErr).WithField("event_id", eventID).Warn("failed to mark webhook event failed")
		}
		c.Data(status, "application/json", failure)
		return
	}

	success, _ := json.Marshal(Envelope{
		Message: "payment update applied",
		Success: true,
		Data:    toOrderJSON(order),
	})
	if markErr := h.idempotency.MarkDone(eventID, success, http.StatusOK); markErr != nil {
		h.logger.WithError(markErr).WithField("event_id", eventID).Warn("failed to mark webhook event done")
	}
	c.Data(http.StatusOK, "application/json", success)
}
