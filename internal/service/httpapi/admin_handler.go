package httpapi

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	validatorv10 "github.com/go-playground/validator/v10"

	"github.com/ashish02003/Freshify/internal/domain"
	"github.com/ashish02003/Freshify/internal/service/orders"
)

// AdminHandler обслуживает админские маршруты панели заказов.
type AdminHandler struct {
	service  *orders.Service
	query    *orders.Query
	validate *validatorv10.Validate
}

// NewAdminHandler создаёт обработчик админских маршрутов.
func NewAdminHandler(service *orders.Service, query *orders.Query) *AdminHandler {
	return &AdminHandler{
		service:  service,
		query:    query,
		validate: validatorv10.New(),
	}
}

type updateStatusRequest struct {
	Status   string `json:"status" validate:"required"`
	Message  string `json:"message"`
	Location string `json:"location"`
}

type deliveryPartnerRequest struct {
	Name          string `json:"name" validate:"required"`
	Phone         string `json:"phone"`
	VehicleNumber string `json:"vehicle_number"`
}

type adminUpdateRequest struct {
	EstimatedDelivery *time.Time              `json:"estimated_delivery"`
	DeliveryPartner   *deliveryPartnerRequest `json:"delivery_partner"`
	OrderNotes        *string                 `json:"order_notes"`
	PaymentStatus     *string                 `json:"payment_status"`
}

// ListAll возвращает страницу всех заказов.
func (h *AdminHandler) ListAll(c *gin.Context) {
	page, limit := pageParams(c)

	views, pagination, err := h.query.ListAllForAdmin(currentUserID(c), page, limit)
	if err != nil {
		respondError(c, err)
		return
	}
	respondPage(c, "all orders", toOrderViewListJSON(views), pagination)
}

// ListByStatus возвращает страницу заказов в заданном статусе доставки.
func (h *AdminHandler) ListByStatus(c *gin.Context) {
	page, limit := pageParams(c)
	status := domain.DeliveryStatus(c.Param("status"))

	views, pagination, err := h.query.ListByStatusForAdmin(currentUserID(c), status, page, limit)
	if err != nil {
		respondError(c, err)
		return
	}
	respondPage(c, "orders by status", toOrderViewListJSON(views), pagination)
}

// Get возвращает любой заказ с данными справочников.
func (h *AdminHandler) Get(c *gin.Context) {
	view, err := h.query.GetForAdmin(currentUserID(c), c.Param("orderId"))
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, "order details", toOrderViewJSON(view))
}

// UpdateStatus переводит заказ в новый статус доставки с записью в историю.
func (h *AdminHandler) UpdateStatus(c *gin.Context) {
	var req updateStatusRequest
	if err := bindAndValidate(c, &req, h.validate); err != nil {
		return
	}

	order, err := h.service.UpdateStatus(
		currentUserID(c),
		c.Param("orderId"),
		domain.DeliveryStatus(req.Status),
		req.Message,
		req.Location,
	)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, "order status updated", toOrderJSON(order))
}

// Update ведёт доставку заказа: ETA, курьер, заметки, статус оплаты.
func (h *AdminHandler) Update(c *gin.Context) {
	var req adminUpdateRequest
	if err := bindAndValidate(c, &req, h.validate); err != nil {
		return
	}

	input := orders.AdminUpdateInput{
		EstimatedDelivery: req.EstimatedDelivery,
		OrderNotes:        req.OrderNotes,
		PaymentStatus:     req.PaymentStatus,
	}
	if req.DeliveryPartner != nil {
		input.DeliveryPartner = &domain.DeliveryPartner{
			Name:          req.DeliveryPartner.Name,
			Phone:         req.DeliveryPartner.Phone,
			VehicleNumber: req.DeliveryPartner.VehicleNumber,
		}
	}

	order, err := h.service.AdminUpdate(currentUserID(c), c.Param("orderId"), input)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, "order delivery updated", toOrderJSON(order))
}

// Statistics возвращает сводку по заказам для админской панели.
func (h *AdminHandler) Statistics(c *gin.Context) {
	stats, err := h.query.Statistics(currentUserID(c))
	if err != nil {
		respondError(c, err)
		return
	}

	respondOK(c, http.StatusOK, "order statistics", gin.H{
		"totalOrders":       stats.TotalOrders,
		"pendingOrders":     stats.PendingOrders,
		"processingOrders":  stats.ProcessingOrders,
		"shippedOrders":     stats.ShippedOrders,
		"deliveredOrders":   stats.DeliveredOrders,
		"cancelledOrders":   stats.CancelledOrders,
		"totalRevenueMinor": stats.TotalRevenueMinor,
	})
}

func pageParams(c *gin.Context) (page, limit int) {
	page, _ = strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ = strconv.Atoi(c.DefaultQuery("limit", "10"))
	return page, limit
}
