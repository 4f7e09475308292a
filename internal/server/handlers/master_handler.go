package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/kdiomande/stockroom/internal/domain/models"
	"github.com/kdiomande/stockroom/internal/repository/gateway"
	"github.com/kdiomande/stockroom/internal/service/catalog"
)

// MasterHandler serves the five master-data entities through one set of
// routes keyed by the :kind path segment.
type MasterHandler struct {
	svc    *catalog.Service
	logger *zap.Logger
}

func NewMasterHandler(svc *catalog.Service, logger *zap.Logger) *MasterHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &MasterHandler{svc: svc, logger: logger}
}

// entityKind matches the :kind path segment case-insensitively against the
// known master-data kinds.
func entityKind(c *gin.Context) (models.EntityKind, bool) {
	raw := c.Param("kind")
	for _, kind := range models.MasterKinds {
		if strings.EqualFold(string(kind), raw) {
			return kind, true
		}
	}
	c.JSON(http.StatusNotFound, gin.H{"error": "unknown entity kind"})
	return "", false
}

// List returns the active records of one master-data kind.
func (h *MasterHandler) List(c *gin.Context) {
	kind, ok := entityKind(c)
	if !ok {
		return
	}
	records, err := h.svc.List(c.Request.Context(), kind)
	if err != nil {
		h.logger.Error("failed listing master data", zap.String("kind", string(kind)), zap.Error(err))
		c.JSON(http.StatusBadGateway, gin.H{"error": "unable to load records"})
		return
	}
	c.JSON(http.StatusOK, records)
}

// Create inserts one master-data record.
func (h *MasterHandler) Create(c *gin.Context) {
	kind, ok := entityKind(c)
	if !ok {
		return
	}
	var record models.MasterRecord
	if err := c.ShouldBindJSON(&record); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	created, err := h.svc.Insert(c.Request.Context(), kind, record)
	if err != nil {
		h.logger.Error("failed creating master record", zap.String("kind", string(kind)), zap.Error(err))
		c.JSON(http.StatusBadGateway, gin.H{"error": "unable to create record"})
		return
	}
	c.JSON(http.StatusCreated, created)
}

// Update rewrites an existing master-data record.
func (h *MasterHandler) Update(c *gin.Context) {
	kind, ok := entityKind(c)
	if !ok {
		return
	}
	var record models.MasterRecord
	if err := c.ShouldBindJSON(&record); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	record.ID = c.Param("id")

	err := h.svc.Update(c.Request.Context(), kind, record)
	switch {
	case err == nil:
		c.JSON(http.StatusOK, record)
	case errors.Is(err, gateway.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "record not found"})
	default:
		h.logger.Error("failed updating master record", zap.String("kind", string(kind)), zap.Error(err))
		c.JSON(http.StatusBadGateway, gin.H{"error": "unable to update record"})
	}
}

// Delete soft-deletes a master-data record.
func (h *MasterHandler) Delete(c *gin.Context) {
	kind, ok := entityKind(c)
	if !ok {
		return
	}
	err := h.svc.Delete(c.Request.Context(), kind, c.Param("id"))
	switch {
	case err == nil:
		c.Status(http.StatusNoContent)
	case errors.Is(err, gateway.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "record not found"})
	default:
		h.logger.Error("failed deleting master record", zap.String("kind", string(kind)), zap.Error(err))
		c.JSON(http.StatusBadGateway, gin.H{"error": "unable to delete record"})
	}
}
