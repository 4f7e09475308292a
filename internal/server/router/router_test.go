package router

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kdiomande/stockroom/internal/domain/models"
	"github.com/kdiomande/stockroom/internal/repository/gateway"
	"github.com/kdiomande/stockroom/internal/server/handlers"
	"github.com/kdiomande/stockroom/internal/service/billing"
	"github.com/kdiomande/stockroom/internal/service/catalog"
	"github.com/kdiomande/stockroom/internal/service/importing"
	"github.com/kdiomande/stockroom/internal/service/inventory"
	"github.com/kdiomande/stockroom/internal/service/reporting"
)

// memoryGateway backs the whole HTTP stack for these tests.
type memoryGateway struct {
	mu       sync.Mutex
	products []models.Product
	invoices []models.Invoice
	masters  map[models.EntityKind][]models.MasterRecord
}

func (g *memoryGateway) ListProducts(ctx context.Context) ([]models.Product, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	out := make([]models.Product, len(g.products))
	copy(out, g.products)
	return out, nil
}

func (g *memoryGateway) CreateProduct(ctx context.Context, product models.Product) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.products = append(g.products, product)
	return nil
}

func (g *memoryGateway) DeleteProductByCode(ctx context.Context, code string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	for i, p := range g.products {
		if p.Code == code {
			g.products = append(g.products[:i], g.products[i+1:]...)
			return nil
		}
	}
	return gateway.ErrNotFound
}

func (g *memoryGateway) ListEntity(ctx context.Context, kind models.EntityKind) ([]models.MasterRecord, error) {
	return g.masters[kind], nil
}

func (g *memoryGateway) InsertEntity(ctx context.Context, kind models.EntityKind, record models.MasterRecord) error {
	g.masters[kind] = append(g.masters[kind], record)
	return nil
}

func (g *memoryGateway) UpdateEntity(ctx context.Context, kind models.EntityKind, record models.MasterRecord) error {
	return nil
}

func (g *memoryGateway) DeleteEntity(ctx context.Context, kind models.EntityKind, id string) error {
	return nil
}

func (g *memoryGateway) ListInvoices(ctx context.Context) ([]models.Invoice, error) {
	return g.invoices, nil
}

func (g *memoryGateway) CreateInvoice(ctx context.Context, invoice models.Invoice) error {
	g.invoices = append(g.invoices, invoice)
	return nil
}

func (g *memoryGateway) GetInvoiceByNumber(ctx context.Context, number string) (*models.Invoice, error) {
	for i := range g.invoices {
		if g.invoices[i].Number == number {
			return &g.invoices[i], nil
		}
	}
	return nil, gateway.ErrNotFound
}

func newTestEngine(gw *memoryGateway) http.Handler {
	catalogSvc := catalog.NewService(gw, nil, time.Hour, nil)
	orchestrator := importing.NewOrchestrator(gw, catalogSvc, nil, importing.Options{}, nil)
	return New(Handlers{
		Products:  handlers.NewProductHandler(inventory.NewService(gw, nil), nil),
		Masters:   handlers.NewMasterHandler(catalogSvc, nil),
		Invoices:  handlers.NewInvoiceHandler(billing.NewService(gw, nil), nil),
		Imports:   handlers.NewImportHandler(orchestrator, nil),
		Dashboard: handlers.NewDashboardHandler(reporting.NewService(gw, 10, nil), nil),
	}, nil)
}

func emptyGateway() *memoryGateway {
	return &memoryGateway{masters: map[models.EntityKind][]models.MasterRecord{}}
}

func doJSON(t *testing.T, engine http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, req)
	return rec
}

func uploadCSV(t *testing.T, engine http.Handler, name, content string) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("file", name)
	require.NoError(t, err)
	_, err = part.Write([]byte(content))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/imports", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, req)
	return rec
}

func TestHealthz(t *testing.T) {
	engine := newTestEngine(emptyGateway())
	rec := doJSON(t, engine, http.MethodGet, "/healthz", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestProductLifecycleOverHTTP(t *testing.T) {
	gw := emptyGateway()
	engine := newTestEngine(gw)

	rec := doJSON(t, engine, http.MethodPost, "/api/products", models.Product{Name: "Widget", Quantity: 3})
	require.Equal(t, http.StatusCreated, rec.Code)
	var created models.Product
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	require.NotEmpty(t, created.Code)

	rec = doJSON(t, engine, http.MethodGet, "/api/products", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var listed []models.Product
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &listed))
	assert.Len(t, listed, 1)

	rec = doJSON(t, engine, http.MethodGet, "/api/products/export.csv", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, strings.HasPrefix(rec.Body.String(), "Product Code,Product Name"))

	rec = doJSON(t, engine, http.MethodDelete, "/api/products/"+created.Code, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = doJSON(t, engine, http.MethodDelete, "/api/products/"+created.Code, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestImportWizardOverHTTP(t *testing.T) {
	gw := emptyGateway()
	gw.products = []models.Product{{Code: "A", Name: "Old A"}}
	engine := newTestEngine(gw)

	rec := uploadCSV(t, engine, "stock.csv", "Name,Qty,Code\nNew A,1,A\nB,2,B\n")
	require.Equal(t, http.StatusCreated, rec.Code)

	var session struct {
		ID              string `json:"id"`
		State           string `json:"state"`
		DuplicatesFound bool   `json:"duplicatesFound"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &session))
	assert.Equal(t, "preview", session.State)
	assert.True(t, session.DuplicatesFound)

	// First commit call stops at configure because duplicates exist.
	rec = doJSON(t, engine, http.MethodPost, "/api/imports/"+session.ID+"/commit", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &session))
	assert.Equal(t, "configure", session.State)

	rec = doJSON(t, engine, http.MethodPost, "/api/imports/"+session.ID+"/commit", map[string]string{"policy": "replace"})
	require.Equal(t, http.StatusOK, rec.Code)
	var result struct {
		State string `json:"state"`
		Stats struct {
			Total      int `json:"total"`
			Added      int `json:"added"`
			Duplicates int `json:"duplicates"`
		} `json:"stats"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	assert.Equal(t, "result", result.State)
	assert.Equal(t, 2, result.Stats.Total)
	assert.Equal(t, 2, result.Stats.Added)
	assert.Equal(t, 1, result.Stats.Duplicates)

	products, err := gw.ListProducts(context.Background())
	require.NoError(t, err)
	assert.Len(t, products, 2)
}

func TestImportRejectsBadUploads(t *testing.T) {
	engine := newTestEngine(emptyGateway())

	rec := uploadCSV(t, engine, "stock.pdf", "junk")
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	rec = uploadCSV(t, engine, "stock.xls", "junk")
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	rec = uploadCSV(t, engine, "stock.csv", "Product Name,Quantity\n\"Widget,10\n")
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Contains(t, rec.Body.String(), "unable to parse file")

	rec = uploadCSV(t, engine, "stock.csv", "Name,Price\nWidget,2\n")
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Contains(t, rec.Body.String(), "quantity")

	rec = doJSON(t, engine, http.MethodGet, "/api/imports/unknown", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestInvoiceAndDashboardOverHTTP(t *testing.T) {
	gw := emptyGateway()
	gw.products = []models.Product{{ID: "p1", Code: "W-1", Name: "Widget", Quantity: 10, SellingPrice: 5, PurchasePrice: 2}}
	engine := newTestEngine(gw)

	rec := doJSON(t, engine, http.MethodPost, "/api/invoices", billing.Draft{
		CustomerName: "ACME",
		Items:        []billing.DraftItem{{ProductID: "p1", Quantity: 2}},
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	var invoice models.Invoice
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &invoice))
	assert.Equal(t, 10.0, invoice.Total)

	rec = doJSON(t, engine, http.MethodGet, "/api/invoices/"+invoice.Number+"/delivery-note", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "delivery_note")

	rec = doJSON(t, engine, http.MethodPost, "/api/invoices", billing.Draft{
		Items: []billing.DraftItem{{ProductID: "p1", Quantity: 999}},
	})
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	rec = doJSON(t, engine, http.MethodGet, "/api/dashboard/summary", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var summary models.DashboardSummary
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &summary))
	assert.Equal(t, 1, summary.TotalProducts)
	assert.Equal(t, 10.0, summary.TotalSales)
}

func TestMasterDataOverHTTP(t *testing.T) {
	engine := newTestEngine(emptyGateway())

	rec := doJSON(t, engine, http.MethodPost, "/api/masters/category", models.MasterRecord{Name: "Tools"})
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = doJSON(t, engine, http.MethodGet, "/api/masters/category", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Tools")

	rec = doJSON(t, engine, http.MethodGet, "/api/masters/planets", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
