package billing

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

func (s *stubGateway) CreateInvoice(ctx context.Context, invoice models.Invoice) error {
	s.invoices = append(s.invoices, invoice)
	return nil
}

func (s *stubGateway) GetInvoiceByNumber(ctx context.Context, number string) (*models.Invoice, error) {
	for i := range s.invoices {
		if s.invoices[i].Number == number {
			return &s.invoices[i], nil
		}
	}
	return nil, gateway.ErrNotFound
}

func testGateway() *stubGateway {
	return &stubGateway{products: []models.Product{
		{ID: "p1", Name: "Widget", Unit: "pcs", Quantity: 20, SellingPrice: 10},
		{ID: "p2", Name: "Gadget", Unit: "box", Quantity: 5, SellingPrice: 40},
	}}
}

func TestCreateInvoiceTotals(t *testing.T) {
	gw := testGateway()
	svc := NewService(gw, nil)

	invoice, err := svc.CreateInvoice(context.Background(), Draft{
		CustomerName: "ACME",
		Discount:     20,
		TaxPercent:   5,
		Items: []DraftItem{
			{ProductID: "p1", Quantity: 10}, // 100
			{ProductID: "p2", Quantity: 2},  // 80
		},
	})
	require.NoError(t, err)

	assert.Equal(t, 180.0, invoice.Subtotal)
	assert.Equal(t, 20.0, invoice.Discount)
	assert.Equal(t, 8.0, invoice.Tax) // 5% of 160
	assert.Equal(t, 168.0, invoice.Total)
	require.Len(t, invoice.Items, 2)
	assert.Equal(t, "Widget", invoice.Items[0].ProductName)
	assert.Equal(t, 10.0, invoice.Items[0].Price)
	require.Len(t, gw.invoices, 1)
	assert.NotEmpty(t, invoice.Number)
}

func TestCreateInvoiceValidation(t *testing.T) {
	svc := NewService(testGateway(), nil)
	ctx := context.Background()

	_, err := svc.CreateInvoice(ctx, Draft{})
	assert.ErrorIs(t, err, ErrEmptyInvoice)

	_, err = svc.CreateInvoice(ctx, Draft{Items: []DraftItem{{ProductID: "nope", Quantity: 1}}})
	assert.ErrorIs(t, err, ErrUnknownProduct)

	_, err = svc.CreateInvoice(ctx, Draft{Items: []DraftItem{{ProductID: "p1", Quantity: 0}}})
	assert.ErrorIs(t, err, ErrInvalidQuantity)

	_, err = svc.CreateInvoice(ctx, Draft{Items: []DraftItem{{ProductID: "p2", Quantity: 6}}})
	assert.ErrorIs(t, err, ErrInsufficientStock)
}

func TestInvoiceDocuments(t *testing.T) {
	gw := testGateway()
	svc := NewService(gw, nil)
	ctx := context.Background()

	invoice, err := svc.CreateInvoice(ctx, Draft{
		CustomerName: "ACME",
		Items:        []DraftItem{{ProductID: "p1", Quantity: 2}},
	})
	require.NoError(t, err)

	doc, err := svc.Document(ctx, invoice.Number)
	require.NoError(t, err)
	assert.Equal(t, "invoice", doc.Kind)
	assert.Equal(t, invoice.Total, doc.Total)
	require.Len(t, doc.Lines, 1)
	assert.Equal(t, 10.0, doc.Lines[0].Price)

	note, err := svc.DeliveryNote(ctx, invoice.Number)
	require.NoError(t, err)
	assert.Equal(t, "delivery_note", note.Kind)
	require.Len(t, note.Lines, 1)
	assert.Zero(t, note.Lines[0].Price)
	assert.Zero(t, note.Total)

	_, err = svc.Document(ctx, "INV-0000-missing")
	assert.ErrorIs(t, err, gateway.ErrNotFound)
}
