package httpapi

import (
	"github.com/gin-gonic/gin"

	"github.com/ashish02003/Freshify/internal/domain"
	"github.com/ashish02003/Freshify/internal/service/orders"
)

// NewRouter собирает gin-маршруты сервиса заказов.
// Webhook живёт вне identity-middleware: провайдер аутентифицируется
// подписью события, а не пользовательским заголовком.
func NewRouter(
	service *orders.Service,
	query *orders.Query,
	idempotency domain.IdempotencyRepository,
) *gin.Engine {
	orderHandler := NewOrderHandler(service, query, idempotency)
	adminHandler := NewAdminHandler(service, query)

	router := gin.New()
	router.Use(gin.Recovery())

	api := router.Group("/api/order")
	api.POST("/webhook", orderHandler.PaymentWebhook)

	authed := api.Group("")
	authed.Use(RequireIdentity())
	{
		authed.POST("/cash-on-delivery", orderHandler.CashOnDelivery)
		authed.POST("/checkout", orderHandler.Checkout)
		authed.GET("/order-list", orderHandler.List)
		authed.GET("/order/:orderId", orderHandler.Get)
		authed.PUT("/order/:orderId", orderHandler.Update)
		authed.DELETE("/order/:orderId", orderHandler.Cancel)
		authed.GET("/track/:orderId", orderHandler.Track)

		admin := authed.Group("/admin")
		admin.GET("/all-orders", adminHandler.ListAll)
		admin.GET("/orders/status/:status", adminHandler.ListByStatus)
		admin.GET("/order/:orderId", adminHandler.Get)
		admin.PUT("/order/:orderId", adminHandler.Update)
		admin.PUT("/order/:orderId/status", adminHandler.UpdateStatus)
		admin.GET("/statistics", adminHandler.Statistics)
	}

	return router
}
