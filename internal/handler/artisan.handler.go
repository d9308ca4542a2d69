package handler

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"bakery-storefront/internal/domain"
	"bakery-storefront/internal/service"
)

type breadRequest struct {
	Name          string           `json:"name" binding:"required"`
	Price         *decimal.Decimal `json:"price" binding:"required"`
	StockQuantity *int             `json:"stock_quantity" binding:"required,min=0"`
	ImagePath     string           `json:"image_path"`
	Description   string           `json:"description"`
}

func (r breadRequest) input() service.BreadInput {
	return service.BreadInput{
		Name:          r.Name,
		Price:         *r.Price,
		StockQuantity: *r.StockQuantity,
		ImagePath:     r.ImagePath,
		Description:   r.Description,
	}
}

// ArtisanHandler serves inventory management. Register it on a group that
// already checks the caller's role.
type ArtisanHandler struct {
	log       *slog.Logger
	inventory service.InventoryService
}

func NewArtisanHandler(log *slog.Logger, inventory service.InventoryService) *ArtisanHandler {
	return &ArtisanHandler{log: log, inventory: inventory}
}

func (h *ArtisanHandler) Register(r gin.IRouter) {
	r.GET("/artisan/dashboard", h.dashboard)
	r.POST("/breads", h.create)
	r.PUT("/breads/:id", h.update)
	r.DELETE("/breads/:id", h.remove)
}

func (h *ArtisanHandler) dashboard(c *gin.Context) {
	d, err := h.inventory.Dashboard(c.Request.Context())
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, d)
}

func (h *ArtisanHandler) create(c *gin.Context) {
	var req breadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, h.log, bindError(err))
		return
	}
	bread, err := h.inventory.CreateBread(c.Request.Context(), req.input())
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "Bread added successfully", "bread": bread})
}

func (h *ArtisanHandler) update(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		writeError(c, h.log, domain.ErrProductNotFound)
		return
	}
	var req breadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, h.log, bindError(err))
		return
	}
	bread, err := h.inventory.UpdateBread(c.Request.Context(), id, req.input())
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Bread updated successfully", "bread": bread})
}

func (h *ArtisanHandler) remove(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		writeError(c, h.log, domain.ErrProductNotFound)
		return
	}
	if err := h.inventory.DeleteBread(c.Request.Context(), id); err != nil {
		writeError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Bread deleted successfully"})
}
