package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"bakery-storefront/internal/domain"
	"bakery-storefront/internal/metrics"
	"bakery-storefront/internal/service"
)

type createOrderRequest struct {
	PaymentMethod   string  `json:"payment_method" binding:"required,oneof=cash_on_delivery credit_card debit_card paypal gcash maya"`
	ShippingMethod  string  `json:"shipping_method" binding:"required,oneof=pickup standard express same_day"`
	ShippingAddress string  `json:"shipping_address" binding:"required"`
	AddressID       *int64  `json:"address_id"`
	CartItemIDs     []int64 `json:"cart_item_ids"`
}

type OrderHandler struct {
	log     *slog.Logger
	orders  service.OrderService
	metrics *metrics.Metrics
}

func NewOrderHandler(log *slog.Logger, orders service.OrderService, m *metrics.Metrics) *OrderHandler {
	return &OrderHandler{log: log, orders: orders, metrics: m}
}

func (h *OrderHandler) Register(r gin.IRouter) {
	orders := r.Group("/orders")
	{
		orders.POST("", h.create)
		orders.GET("", h.list)
		orders.GET("/:id", h.get)
		orders.PUT("/:id/cancel", h.cancel)
	}
}

func (h *OrderHandler) create(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	var req createOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.reject("validation")
		writeError(c, h.log, bindError(err))
		return
	}

	order, err := h.orders.CreateOrder(c.Request.Context(), userID, service.CreateOrderInput{
		PaymentMethod:   domain.PaymentMethod(req.PaymentMethod),
		ShippingMethod:  domain.ShippingMethod(req.ShippingMethod),
		ShippingAddress: req.ShippingAddress,
		AddressID:       req.AddressID,
		CartItemIDs:     req.CartItemIDs,
	})
	if err != nil {
		h.reject(rejectReason(err))
		writeError(c, h.log, err)
		return
	}

	if h.metrics != nil {
		h.metrics.OrdersCreated.WithLabelValues(string(order.PaymentMethod)).Inc()
	}
	c.JSON(http.StatusCreated, gin.H{"message": "Order placed successfully", "order": order})
}

func (h *OrderHandler) list(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	orders, err := h.orders.ListOrders(c.Request.Context(), userID)
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, orders)
}

func (h *OrderHandler) get(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		writeError(c, h.log, domain.ErrOrderNotFound)
		return
	}
	order, err := h.orders.GetOrder(c.Request.Context(), userID, id)
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, order)
}

func (h *OrderHandler) cancel(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		writeError(c, h.log, domain.ErrOrderNotFound)
		return
	}
	order, err := h.orders.CancelOrder(c.Request.Context(), userID, id)
	if err != nil {
		writeError(c, h.log, err)
		return
	}

	if h.metrics != nil {
		h.metrics.OrdersCancelled.Inc()
	}
	c.JSON(http.StatusOK, gin.H{
		"message": "Order cancelled successfully",
		"order":   gin.H{"id": order.ID, "status": order.Status},
	})
}

func (h *OrderHandler) reject(reason string) {
	if h.metrics == nil || reason == "" {
		return
	}
	h.metrics.CheckoutRejection.WithLabelValues(reason).Inc()
}

func rejectReason(err error) string {
	var (
		verr     *domain.ValidationError
		stockErr *domain.InsufficientStockError
	)
	switch {
	case errors.As(err, &verr):
		return "validation"
	case errors.As(err, &stockErr):
		return "insufficient_stock"
	case errors.Is(err, domain.ErrNoItemsSelected):
		return "no_items"
	case errors.Is(err, domain.ErrProductUnavailable):
		return "unavailable"
	default:
		return ""
	}
}
