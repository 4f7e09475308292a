package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/kdiomande/stockroom/internal/repository/gateway"
	"github.com/kdiomande/stockroom/internal/service/billing"
)

// InvoiceHandler exposes invoice creation and the printable documents.
type InvoiceHandler struct {
	svc    *billing.Service
	logger *zap.Logger
}

func NewInvoiceHandler(svc *billing.Service, logger *zap.Logger) *InvoiceHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &InvoiceHandler{svc: svc, logger: logger}
}

// List returns all recorded invoices.
func (h *InvoiceHandler) List(c *gin.Context) {
	invoices, err := h.svc.List(c.Request.Context())
	if err != nil {
		h.logger.Error("failed listing invoices", zap.Error(err))
		c.JSON(http.StatusBadGateway, gin.H{"error": "unable to load invoices"})
		return
	}
	c.JSON(http.StatusOK, invoices)
}

// Create prices a draft against current stock and records the invoice.
func (h *InvoiceHandler) Create(c *gin.Context) {
	var draft billing.Draft
	if err := c.ShouldBindJSON(&draft); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	invoice, err := h.svc.CreateInvoice(c.Request.Context(), draft)
	switch {
	case err == nil:
		c.JSON(http.StatusCreated, invoice)
	case errors.Is(err, billing.ErrEmptyInvoice),
		errors.Is(err, billing.ErrUnknownProduct),
		errors.Is(err, billing.ErrInvalidQuantity),
		errors.Is(err, billing.ErrInsufficientStock):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
	default:
		h.logger.Error("failed creating invoice", zap.Error(err))
		c.JSON(http.StatusBadGateway, gin.H{"error": "unable to create invoice"})
	}
}

// Get returns one invoice by number.
func (h *InvoiceHandler) Get(c *gin.Context) {
	invoice, err := h.svc.Get(c.Request.Context(), c.Param("number"))
	switch {
	case err == nil:
		c.JSON(http.StatusOK, invoice)
	case errors.Is(err, gateway.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "invoice not found"})
	default:
		h.logger.Error("failed loading invoice", zap.String("number", c.Param("number")), zap.Error(err))
		c.JSON(http.StatusBadGateway, gin.H{"error": "unable to load invoice"})
	}
}

// Document returns the printable invoice document.
func (h *InvoiceHandler) Document(c *gin.Context) {
	doc, err := h.svc.Document(c.Request.Context(), c.Param("number"))
	h.respondDocument(c, doc, err)
}

// DeliveryNote returns the printable delivery note for an invoice.
func (h *InvoiceHandler) DeliveryNote(c *gin.Context) {
	doc, err := h.svc.DeliveryNote(c.Request.Context(), c.Param("number"))
	h.respondDocument(c, doc, err)
}

func (h *InvoiceHandler) respondDocument(c *gin.Context, doc any, err error) {
	switch {
	case err == nil:
		c.JSON(http.StatusOK, doc)
	case errors.Is(err, gateway.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "invoice not found"})
	default:
		h.logger.Error("failed building document", zap.String("number", c.Param("number")), zap.Error(err))
		c.JSON(http.StatusBadGateway, gin.H{"error": "unable to build document"})
	}
}
