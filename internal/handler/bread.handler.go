package handler

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"bakery-storefront/internal/domain"
	"bakery-storefront/internal/service"
)

type BreadHandler struct {
	log     *slog.Logger
	catalog service.CatalogService
}

func NewBreadHandler(log *slog.Logger, catalog service.CatalogService) *BreadHandler {
	return &BreadHandler{log: log, catalog: catalog}
}

func (h *BreadHandler) Register(r gin.IRouter) {
	r.GET("/breads", h.list)
	r.GET("/breads/:id", h.get)
}

func (h *BreadHandler) list(c *gin.Context) {
	breads, err := h.catalog.ListBreads(c.Request.Context(), c.Query("q"))
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, breads)
}

func (h *BreadHandler) get(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		writeError(c, h.log, domain.ErrProductNotFound)
		return
	}
	bread, err := h.catalog.GetBread(c.Request.Context(), id)
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, bread)
}
