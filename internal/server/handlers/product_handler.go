package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/kdiomande/stockroom/internal/domain/models"
	"github.com/kdiomande/stockroom/internal/repository/gateway"
	"github.com/kdiomande/stockroom/internal/service/inventory"
)

// ProductHandler exposes product listing, single-record maintenance and the
// CSV stock export.
type ProductHandler struct {
	svc    *inventory.Service
	logger *zap.Logger
}

func NewProductHandler(svc *inventory.Service, logger *zap.Logger) *ProductHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ProductHandler{svc: svc, logger: logger}
}

// List returns all active products.
func (h *ProductHandler) List(c *gin.Context) {
	products, err := h.svc.List(c.Request.Context())
	if err != nil {
		h.logger.Error("failed listing products", zap.Error(err))
		c.JSON(http.StatusBadGateway, gin.H{"error": "unable to load products"})
		return
	}
	c.JSON(http.StatusOK, products)
}

// Create persists a single new product.
func (h *ProductHandler) Create(c *gin.Context) {
	var product models.Product
	if err := c.ShouldBindJSON(&product); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	created, err := h.svc.Create(c.Request.Context(), product)
	switch {
	case err == nil:
		c.JSON(http.StatusCreated, created)
	case errors.Is(err, inventory.ErrNameRequired):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
	case errors.Is(err, inventory.ErrProductExists):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	default:
		h.logger.Error("failed creating product", zap.Error(err))
		c.JSON(http.StatusBadGateway, gin.H{"error": "unable to create product"})
	}
}

// Update rewrites the product stored under the code in the path.
func (h *ProductHandler) Update(c *gin.Context) {
	var product models.Product
	if err := c.ShouldBindJSON(&product); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	product.Code = c.Param("code")

	err := h.svc.Update(c.Request.Context(), product)
	switch {
	case err == nil:
		c.JSON(http.StatusOK, product)
	case errors.Is(err, gateway.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "product not found"})
	case errors.Is(err, inventory.ErrNameRequired):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
	default:
		h.logger.Error("failed updating product", zap.String("code", product.Code), zap.Error(err))
		c.JSON(http.StatusBadGateway, gin.H{"error": "unable to update product"})
	}
}

// Delete soft-deletes a product by code.
func (h *ProductHandler) Delete(c *gin.Context) {
	code := c.Param("code")
	err := h.svc.Delete(c.Request.Context(), code)
	switch {
	case err == nil:
		c.Status(http.StatusNoContent)
	case errors.Is(err, gateway.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "product not found"})
	default:
		h.logger.Error("failed deleting product", zap.String("code", code), zap.Error(err))
		c.JSON(http.StatusBadGateway, gin.H{"error": "unable to delete product"})
	}
}

// ExportCSV streams the stock list as a CSV download.
func (h *ProductHandler) ExportCSV(c *gin.Context) {
	c.Header("Content-Type", "text/csv")
	c.Header("Content-Disposition", `attachment; filename="stock-report.csv"`)
	if err := h.svc.ExportCSV(c.Request.Context(), c.Writer); err != nil {
		h.logger.Error("failed exporting stock report", zap.Error(err))
		c.Status(http.StatusBadGateway)
	}
}
