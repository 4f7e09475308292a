package reporting

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kdiomande/stockroom/internal/domain/models"
	"github.com/kdiomande/stockroom/internal/repository/gateway"
)

type stubGateway struct {
	gateway.Client
	products []models.Product
	invoices []models.Invoice
}

func (s *stubGateway) ListProducts(ctx context.Context) ([]models.Product, error) {
	return s.products, nil
}

func (s *stubGateway) ListInvoices(ctx context.Context) ([]models.Invoice, error) {
	return s.invoices, nil
}

func TestDashboardSummary(t *testing.T) {
	gw := &stubGateway{
		products: []models.Product{
			{Name: "Widget", Quantity: 100, PurchasePrice: 2},  // value 200
			{Name: "Gadget", Quantity: 4, PurchasePrice: 50},   // value 200, low stock
			{Name: "Sprocket", Quantity: 0, PurchasePrice: 10}, // low stock
		},
		invoices: []models.Invoice{
			{Number: "INV-1001", Date: "2026-05-01", Total: 150, CustomerName: "ACME"},
			{Number: "INV-1002", Date: "2026-05-02", Total: 50},
		},
	}
	svc := NewService(gw, 10, nil)

	summary, err := svc.DashboardSummary(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 3, summary.TotalProducts)
	assert.Equal(t, 2, summary.LowStockItems)
	assert.Equal(t, 400.0, summary.TotalInventoryValue)
	assert.Equal(t, 200.0, summary.TotalSales)

	// Newest invoice first.
	require.Len(t, summary.RecentActivity, 2)
	assert.Equal(t, "INV-1002", summary.RecentActivity[0].Item)
	assert.Equal(t, "INV-1001 (ACME)", summary.RecentActivity[1].Item)
	assert.Equal(t, "Invoice generated", summary.RecentActivity[0].Action)
}

func TestDashboardSummaryEmpty(t *testing.T) {
	svc := NewService(&stubGateway{}, 10, nil)

	summary, err := svc.DashboardSummary(context.Background())
	require.NoError(t, err)
	assert.Zero(t, summary.TotalProducts)
	assert.Zero(t, summary.TotalSales)
	assert.Empty(t, summary.RecentActivity)
}
