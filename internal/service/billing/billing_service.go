package billing

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/kdiomande/stockroom/internal/domain/models"
	"github.com/kdiomande/stockroom/internal/repository/gateway"
)

var (
	ErrEmptyInvoice      = errors.New("invoice has no items")
	ErrUnknownProduct    = errors.New("unknown product on invoice")
	ErrInsufficientStock = errors.New("requested quantity exceeds stock")
	ErrInvalidQuantity   = errors.New("item quantity must be positive")
)

// DraftItem is one requested line of a not-yet-priced invoice. Prices come
// from the product master at creation time, never from the caller.
type DraftItem struct {
	ProductID string  `json:"productId"`
	Quantity  float64 `json:"quantity"`
}

// Draft is the caller-supplied part of an invoice.
type Draft struct {
	CustomerName    string      `json:"customerName"`
	CustomerContact string      `json:"customerContact"`
	CustomerAddress string      `json:"customerAddress"`
	CustomerNIF     string      `json:"customerNif"`
	Discount        float64     `json:"discount"`   // flat amount off the subtotal
	TaxPercent      float64     `json:"taxPercent"` // applied after discount
	CreatedBy       string      `json:"createdBy"`
	Items           []DraftItem `json:"items"`
}

// Service prices drafts against current stock and persists invoices through
// the gateway.
type Service struct {
	gateway gateway.Client
	logger  *zap.Logger
}

func NewService(gw gateway.Client, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{gateway: gw, logger: logger}
}

// CreateInvoice validates a draft against current stock, computes the
// totals and persists the invoice. Stock is not decremented here; the
// gateway applies the stock movement when it records the invoice.
func (s *Service) CreateInvoice(ctx context.Context, draft Draft) (models.Invoice, error) {
	if len(draft.Items) == 0 {
		return models.Invoice{}, ErrEmptyInvoice
	}

	products, err := s.gateway.ListProducts(ctx)
	if err != nil {
		return models.Invoice{}, fmt.Errorf("load products for invoicing: %w", err)
	}
	byID := make(map[string]models.Product, len(products))
	for _, p := range products {
		byID[p.ID] = p
	}

	invoice := models.Invoice{
		Number:          models.NewInvoiceNumber(),
		Date:            time.Now().Format("2006-01-02"),
		CustomerName:    draft.CustomerName,
		CustomerContact: draft.CustomerContact,
		CustomerAddress: draft.CustomerAddress,
		CustomerNIF:     draft.CustomerNIF,
		Discount:        draft.Discount,
		CreatedBy:       draft.CreatedBy,
		Status:          "issued",
	}

	for _, item := range draft.Items {
		product, ok := byID[item.ProductID]
		if !ok {
			return models.Invoice{}, fmt.Errorf("%w: %s", ErrUnknownProduct, item.ProductID)
		}
		if item.Quantity <= 0 {
			return models.Invoice{}, fmt.Errorf("%w: %s", ErrInvalidQuantity, product.Name)
		}
		if item.Quantity > product.Quantity {
			return models.Invoice{}, fmt.Errorf("%w: %s has %v in stock, %v requested",
				ErrInsufficientStock, product.Name, product.Quantity, item.Quantity)
		}
		line := models.InvoiceItem{
			ProductID:   product.ID,
			ProductName: product.Name,
			Quantity:    item.Quantity,
			Price:       product.SellingPrice,
			Total:       item.Quantity * product.SellingPrice,
			Unit:        product.Unit,
		}
		invoice.Items = append(invoice.Items, line)
		invoice.Subtotal += line.Total
	}

	if invoice.Discount < 0 || invoice.Discount > invoice.Subtotal {
		return models.Invoice{}, fmt.Errorf("discount %v out of range for subtotal %v", invoice.Discount, invoice.Subtotal)
	}
	invoice.Tax = (invoice.Subtotal - invoice.Discount) * draft.TaxPercent / 100
	invoice.Total = invoice.Subtotal - invoice.Discount + invoice.Tax

	if err := s.gateway.CreateInvoice(ctx, invoice); err != nil {
		return models.Invoice{}, err
	}
	s.logger.Info("invoice created",
		zap.String("number", invoice.Number),
		zap.Int("items", len(invoice.Items)),
		zap.Float64("total", invoice.Total))
	return invoice, nil
}

// List returns all recorded invoices.
func (s *Service) List(ctx context.Context) ([]models.Invoice, error) {
	return s.gateway.ListInvoices(ctx)
}

// Get returns one invoice by its display number.
func (s *Service) Get(ctx context.Context, number string) (models.Invoice, error) {
	invoice, err := s.gateway.GetInvoiceByNumber(ctx, number)
	if err != nil {
		return models.Invoice{}, err
	}
	return *invoice, nil
}

// Document builds the printable invoice for a recorded invoice number.
func (s *Service) Document(ctx context.Context, number string) (models.PrintDocument, error) {
	invoice, err := s.Get(ctx, number)
	if err != nil {
		return models.PrintDocument{}, err
	}
	doc := documentHeader("invoice", invoice)
	doc.Subtotal = invoice.Subtotal
	doc.Discount = invoice.Discount
	doc.Tax = invoice.Tax
	doc.Total = invoice.Total
	for _, item := range invoice.Items {
		doc.Lines = append(doc.Lines, models.DocumentLine{
			ProductName: item.ProductName,
			Quantity:    item.Quantity,
			Unit:        item.Unit,
			Price:       item.Price,
			Total:       item.Total,
		})
	}
	return doc, nil
}

// DeliveryNote builds the printable delivery note for an invoice. It lists
// products and quantities only; prices are deliberately left off.
func (s *Service) DeliveryNote(ctx context.Context, number string) (models.PrintDocument, error) {
	invoice, err := s.Get(ctx, number)
	if err != nil {
		return models.PrintDocument{}, err
	}
	doc := documentHeader("delivery_note", invoice)
	for _, item := range invoice.Items {
		doc.Lines = append(doc.Lines, models.DocumentLine{
			ProductName: item.ProductName,
			Quantity:    item.Quantity,
			Unit:        item.Unit,
		})
	}
	return doc, nil
}

func documentHeader(kind string, invoice models.Invoice) models.PrintDocument {
	return models.PrintDocument{
		Kind:            kind,
		Number:          invoice.Number,
		Date:            invoice.Date,
		CustomerName:    invoice.CustomerName,
		CustomerContact: invoice.CustomerContact,
		CustomerAddress: invoice.CustomerAddress,
	}
}
