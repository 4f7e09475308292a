package reporting

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/kdiomande/stockroom/internal/domain/models"
	"github.com/kdiomande/stockroom/internal/repository/gateway"
)

const recentActivityLimit = 5

// Service computes the dashboard aggregates. Everything is derived on
// demand from the gateway; nothing is precomputed or stored.
type Service struct {
	gateway           gateway.Client
	lowStockThreshold float64
	logger            *zap.Logger
}

func NewService(gw gateway.Client, lowStockThreshold float64, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{gateway: gw, lowStockThreshold: lowStockThreshold, logger: logger}
}

// DashboardSummary aggregates product and invoice data into the figures the
// dashboard displays.
func (s *Service) DashboardSummary(ctx context.Context) (models.DashboardSummary, error) {
	products, err := s.gateway.ListProducts(ctx)
	if err != nil {
		return models.DashboardSummary{}, fmt.Errorf("load products: %w", err)
	}
	invoices, err := s.gateway.ListInvoices(ctx)
	if err != nil {
		return models.DashboardSummary{}, fmt.Errorf("load invoices: %w", err)
	}

	summary := models.DashboardSummary{TotalProducts: len(products)}
	for _, p := range products {
		if p.Quantity < s.lowStockThreshold {
			summary.LowStockItems++
		}
		summary.TotalInventoryValue += p.PurchasePrice * p.Quantity
	}
	for _, inv := range invoices {
		summary.TotalSales += inv.Total
	}
	summary.RecentActivity = recentActivity(invoices)
	return summary, nil
}

// recentActivity turns the newest invoices into activity lines. Invoices
// come back from the gateway in sheet order, oldest first.
func recentActivity(invoices []models.Invoice) []models.ActivityEntry {
	start := len(invoices) - recentActivityLimit
	if start < 0 {
		start = 0
	}
	entries := make([]models.ActivityEntry, 0, recentActivityLimit)
	for i := len(invoices) - 1; i >= start; i-- {
		inv := invoices[i]
		item := inv.Number
		if inv.CustomerName != "" {
			item = fmt.Sprintf("%s (%s)", inv.Number, inv.CustomerName)
		}
		entries = append(entries, models.ActivityEntry{
			Action: "Invoice generated",
			Item:   item,
			User:   inv.CreatedBy,
			Time:   inv.Date,
		})
	}
	return entries
}
