package handler

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"bakery-storefront/internal/domain"
	"bakery-storefront/internal/service"
)

type addToCartRequest struct {
	BreadID  int64 `json:"bread_id" binding:"required,gt=0"`
	Quantity int   `json:"quantity" binding:"required,min=1"`
}

type updateCartRequest struct {
	Quantity *int `json:"quantity" binding:"required"`
}

type CartHandler struct {
	log  *slog.Logger
	cart service.CartService
}

func NewCartHandler(log *slog.Logger, cart service.CartService) *CartHandler {
	return &CartHandler{log: log, cart: cart}
}

func (h *CartHandler) Register(r gin.IRouter) {
	cart := r.Group("/cart")
	{
		cart.GET("", h.get)
		cart.POST("", h.add)
		cart.PUT("/:id", h.update)
		cart.DELETE("/:id", h.remove)
	}
}

func (h *CartHandler) get(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	cart, err := h.cart.GetCart(c.Request.Context(), userID)
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, cart)
}

func (h *CartHandler) add(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	var req addToCartRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, h.log, bindError(err))
		return
	}
	entry, err := h.cart.AddItem(c.Request.Context(), userID, req.BreadID, req.Quantity)
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "Added to cart", "item": entry})
}

func (h *CartHandler) update(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		writeError(c, h.log, domain.ErrCartEntryNotFound)
		return
	}
	var req updateCartRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, h.log, bindError(err))
		return
	}
	entry, err := h.cart.UpdateQuantity(c.Request.Context(), userID, id, *req.Quantity)
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	if entry == nil {
		c.JSON(http.StatusOK, gin.H{"message": "Removed from cart"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Cart updated", "item": entry})
}

func (h *CartHandler) remove(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		writeError(c, h.log, domain.ErrCartEntryNotFound)
		return
	}
	if err := h.cart.RemoveItem(c.Request.Context(), userID, id); err != nil {
		writeError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Removed from cart"})
}
