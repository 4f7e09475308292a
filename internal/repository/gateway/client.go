package gateway

import (
	"context"
	"errors"

	"github.com/kdiomande/stockroom/internal/domain/models"
)

// ErrNotFound indicates the gateway has no record for the requested key.
var ErrNotFound = errors.New("record not found")

// Client defines the persistence operations offered by the external
// spreadsheet-backed web service. The service owns all persistent state;
// this application only ever talks to it through this interface.
type Client interface {
	ListProducts(ctx context.Context) ([]models.Product, error)
	CreateProduct(ctx context.Context, product models.Product) error
	DeleteProductByCode(ctx context.Context, code string) error

	ListEntity(ctx context.Context, kind models.EntityKind) ([]models.MasterRecord, error)
	InsertEntity(ctx context.Context, kind models.EntityKind, record models.MasterRecord) error
	UpdateEntity(ctx context.Context, kind models.EntityKind, record models.MasterRecord) error
	DeleteEntity(ctx context.Context, kind models.EntityKind, id string) error

	ListInvoices(ctx context.Context) ([]models.Invoice, error)
	CreateInvoice(ctx context.Context, invoice models.Invoice) error
	GetInvoiceByNumber(ctx context.Context, number string) (*models.Invoice, error)
}
