package inventory

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/kdiomande/stockroom/internal/domain/models"
	"github.com/kdiomande/stockroom/internal/repository/gateway"
)

var (
	ErrNameRequired  = errors.New("product name is required")
	ErrProductExists = errors.New("a product with this code already exists")
)

// Service covers the day-to-day product operations outside the bulk import
// flow: listing, single creation, edits and the CSV stock export.
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

// List returns all active products from the gateway.
func (s *Service) List(ctx context.Context) ([]models.Product, error) {
	return s.gateway.ListProducts(ctx)
}

// Create persists one product. Blank identifiers are filled in and a code
// collision with an existing product is rejected rather than silently
// duplicated.
func (s *Service) Create(ctx context.Context, product models.Product) (models.Product, error) {
	if product.Name == "" {
		return models.Product{}, ErrNameRequired
	}
	if product.ID == "" {
		product.ID = models.NewProductID()
	}
	if product.Code == "" {
		product.Code = models.NewProductCode()
	}
	if product.EntryDate == "" {
		product.EntryDate = time.Now().Format("2006-01-02")
	}
	product.Active = true

	existing, err := s.gateway.ListProducts(ctx)
	if err != nil {
		return models.Product{}, fmt.Errorf("check existing products: %w", err)
	}
	for _, p := range existing {
		if p.Code == product.Code {
			return models.Product{}, fmt.Errorf("%w: %s", ErrProductExists, product.Code)
		}
	}

	if err := s.gateway.CreateProduct(ctx, product); err != nil {
		return models.Product{}, err
	}
	s.logger.Info("product created", zap.String("code", product.Code), zap.String("name", product.Name))
	return product, nil
}

// Update rewrites a product under its existing code. The gateway only
// supports create and delete, so an update is a delete of the old row
// followed by a fresh create.
func (s *Service) Update(ctx context.Context, product models.Product) error {
	if product.Code == "" {
		return errors.New("product code is required")
	}
	if product.Name == "" {
		return ErrNameRequired
	}
	if err := s.gateway.DeleteProductByCode(ctx, product.Code); err != nil {
		return err
	}
	if err := s.gateway.CreateProduct(ctx, product); err != nil {
		return fmt.Errorf("rewrite product %s: %w", product.Code, err)
	}
	return nil
}

// Delete soft-deletes a product by its code.
func (s *Service) Delete(ctx context.Context, code string) error {
	return s.gateway.DeleteProductByCode(ctx, code)
}

// exportHeader matches the stock report layout the web client downloads.
var exportHeader = []string{"Product Code", "Product Name", "Category", "Quantity", "Purchase Price", "Selling Price"}

// ExportCSV streams the current product list as CSV.
func (s *Service) ExportCSV(ctx context.Context, w io.Writer) error {
	products, err := s.gateway.ListProducts(ctx)
	if err != nil {
		return err
	}

	cw := csv.NewWriter(w)
	if err := cw.Write(exportHeader); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	for _, p := range products {
		row := []string{
			p.Code,
			p.Name,
			p.Category,
			strconv.FormatFloat(p.Quantity, 'f', -1, 64),
			strconv.FormatFloat(p.PurchasePrice, 'f', 2, 64),
			strconv.FormatFloat(p.SellingPrice, 'f', 2, 64),
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write csv row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}
