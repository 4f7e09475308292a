package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/kdiomande/stockroom/internal/service/reporting"
)

// DashboardHandler serves the aggregated dashboard figures.
type DashboardHandler struct {
	svc    *reporting.Service
	logger *zap.Logger
}

func NewDashboardHandler(svc *reporting.Service, logger *zap.Logger) *DashboardHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DashboardHandler{svc: svc, logger: logger}
}

// Summary returns product and sales aggregates plus recent activity.
func (h *DashboardHandler) Summary(c *gin.Context) {
	summary, err := h.svc.DashboardSummary(c.Request.Context())
	if err != nil {
		h.logger.Error("failed building dashboard summary", zap.Error(err))
		c.JSON(http.StatusBadGateway, gin.H{"error": "unable to build summary"})
		return
	}
	c.JSON(http.StatusOK, summary)
}
