package gateway

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"

	"github.com/kdiomande/stockroom/internal/config"
	"github.com/kdiomande/stockroom/internal/domain/models"
)

// ScriptClient talks to the Apps-Script style web endpoint that fronts the
// spreadsheet. Reads are GET requests with query parameters, writes are POST
// requests carrying a JSON body with an "action" discriminator.
type ScriptClient struct {
	httpClient *resty.Client
	logger     *zap.Logger
}

// NewScriptClient builds a gateway client from configuration values.
func NewScriptClient(cfg config.GatewayConfig, logger *zap.Logger) *ScriptClient {
	if logger == nil {
		logger = zap.NewNop()
	}

	restyClient := resty.New()
	restyClient.
		SetBaseURL(strings.TrimSuffix(cfg.BaseURL, "/")).
		SetHeader("Content-Type", "application/json").
		SetTimeout(20 * time.Second)

	return &ScriptClient{httpClient: restyClient, logger: logger}
}

// envelope is the response wrapper the web endpoint uses for most actions.
// Some list actions return a bare JSON array instead; decode handles both.
type envelope struct {
	Success *bool           `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func decode(body []byte, out any) error {
	trimmed := strings.TrimSpace(string(body))
	if strings.HasPrefix(trimmed, "[") {
		return json.Unmarshal(body, out)
	}

	var env envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return fmt.Errorf("decode gateway response: %w", err)
	}
	if env.Success != nil && !*env.Success {
		return fmt.Errorf("gateway rejected request: %s", env.Message)
	}
	if len(env.Data) == 0 {
		return ErrNotFound
	}
	return json.Unmarshal(env.Data, out)
}

func (c *ScriptClient) get(ctx context.Context, params map[string]string, out any) error {
	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetQueryParams(params).
		Get("")
	if err != nil {
		return fmt.Errorf("gateway request: %w", err)
	}
	if resp.StatusCode() >= http.StatusBadRequest {
		return fmt.Errorf("gateway error: status=%d body=%s", resp.StatusCode(), resp.String())
	}
	if out == nil {
		return nil
	}
	return decode(resp.Body(), out)
}

func (c *ScriptClient) post(ctx context.Context, payload any) error {
	var env envelope
	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetBody(payload).
		SetResult(&env).
		Post("")
	if err != nil {
		return fmt.Errorf("gateway request: %w", err)
	}
	if resp.StatusCode() >= http.StatusBadRequest {
		return fmt.Errorf("gateway error: status=%d body=%s", resp.StatusCode(), resp.String())
	}
	if env.Success != nil && !*env.Success {
		return fmt.Errorf("gateway rejected request: %s", env.Message)
	}
	return nil
}

// productRow mirrors the column names the product sheet exposes.
type productRow struct {
	ProductID     string  `json:"productid"`
	ProductCode   string  `json:"productCode"`
	ProductName   string  `json:"productName"`
	Specification string  `json:"specification"`
	CategoryName  string  `json:"Category_Name"`
	SupplierName  string  `json:"Supplier_Name"`
	PurchasePrice float64 `json:"purchasePrice"`
	SellingPrice  float64 `json:"sellingPrice"`
	Quantity      float64 `json:"quantity"`
	UnitName      string  `json:"Unit_Name"`
	WarehouseName string  `json:"Warehouse_Name"`
	EntryDate     string  `json:"entryDate"`
	EnteredBy     string  `json:"enteredBy"`
	Remarks       string  `json:"remarks"`
}

func (r productRow) toModel() models.Product {
	return models.Product{
		ID:            r.ProductID,
		Code:          r.ProductCode,
		Name:          r.ProductName,
		Specification: r.Specification,
		Category:      r.CategoryName,
		SupplierName:  r.SupplierName,
		PurchasePrice: r.PurchasePrice,
		SellingPrice:  r.SellingPrice,
		Quantity:      r.Quantity,
		Unit:          r.UnitName,
		Warehouse:     r.WarehouseName,
		EntryDate:     r.EntryDate,
		EnteredBy:     r.EnteredBy,
		Remarks:       r.Remarks,
		Active:        true,
	}
}

// ListProducts fetches every active product row.
func (c *ScriptClient) ListProducts(ctx context.Context) ([]models.Product, error) {
	var rows []productRow
	if err := c.get(ctx, map[string]string{"action": "product"}, &rows); err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}

	products := make([]models.Product, 0, len(rows))
	for _, row := range rows {
		products = append(products, row.toModel())
	}
	return products, nil
}

// CreateProduct appends one product row. The gateway assigns sheet-side
// bookkeeping columns; the caller supplies the business fields.
func (c *ScriptClient) CreateProduct(ctx context.Context, product models.Product) error {
	payload := map[string]any{
		"action":        "product",
		"productid":     product.ID,
		"productCode":   product.Code,
		"productName":   product.Name,
		"specification": product.Specification,
		"Category":      product.Category,
		"Supplier":      product.SupplierName,
		"purchasePrice": product.PurchasePrice,
		"sellingPrice":  product.SellingPrice,
		"quantity":      product.Quantity,
		"Unit":          product.Unit,
		"Warehouse":     product.Warehouse,
		"entryDate":     product.EntryDate,
		"enteredBy":     product.EnteredBy,
		"remarks":       product.Remarks,
	}
	if err := c.post(ctx, payload); err != nil {
		return fmt.Errorf("create product %s: %w", product.Code, err)
	}

	c.logger.Debug("product created via gateway", zap.String("code", product.Code))
	return nil
}

// DeleteProductByCode removes the product identified by its natural code.
// The replace duplicate policy relies on this being an actual delete.
func (c *ScriptClient) DeleteProductByCode(ctx context.Context, code string) error {
	if code == "" {
		return fmt.Errorf("product code must not be empty")
	}
	if err := c.get(ctx, map[string]string{"action": "deleteproduct", "ProductCode": code}, nil); err != nil {
		return fmt.Errorf("delete product %s: %w", code, err)
	}
	return nil
}

// entityColumns maps each master-data kind to the column names its sheet
// uses. The spellings (including the misspelled address and contact columns)
// are part of the gateway contract and must not be "fixed" here.
type entityColumns struct {
	id, name, abbreviation, location, contact, address, nif, description string
}

var entityColumnSpec = map[models.EntityKind]entityColumns{
	models.EntityCategory:  {id: "Category_ID", name: "categoryName"},
	models.EntityWarehouse: {id: "Warehouse_Id", name: "Warehouse_Name", location: "Warehouse_Location"},
	models.EntityUnit:      {id: "Unit_Id", name: "Unit_Name", abbreviation: "Unit_Abbreviation"},
	models.EntitySupplier:  {id: "Supplier_ID", name: "Supplier_Name", contact: "Supplier_ContectNo", address: "Supplier_Adders"},
	models.EntityCustomer:  {id: "Customer_ID", name: "Customer_Name", contact: "Customer_ContectNo", address: "Customer_Adders", nif: "Customer_Nif", description: "Customer_Description"},
}

func stringField(row map[string]any, key string) string {
	if key == "" {
		return ""
	}
	switch v := row[key].(type) {
	case string:
		return v
	case float64:
		// Sheet ids sometimes come back as numbers.
		return strconv.FormatFloat(v, 'f', -1, 64)
	default:
		return ""
	}
}

// ListEntity fetches the active rows of one master-data sheet.
func (c *ScriptClient) ListEntity(ctx context.Context, kind models.EntityKind) ([]models.MasterRecord, error) {
	cols, ok := entityColumnSpec[kind]
	if !ok {
		return nil, fmt.Errorf("unknown entity kind %q", kind)
	}

	var rows []map[string]any
	params := map[string]string{"entity": string(kind), "action": "list", "active": "1"}
	if err := c.get(ctx, params, &rows); err != nil {
		return nil, fmt.Errorf("list %s: %w", kind, err)
	}

	records := make([]models.MasterRecord, 0, len(rows))
	for _, row := range rows {
		records = append(records, models.MasterRecord{
			ID:           stringField(row, cols.id),
			Name:         stringField(row, cols.name),
			Abbreviation: stringField(row, cols.abbreviation),
			Location:     stringField(row, cols.location),
			Contact:      stringField(row, cols.contact),
			Address:      stringField(row, cols.address),
			NIF:          stringField(row, cols.nif),
			Description:  stringField(row, cols.description),
			Active:       true,
		})
	}
	return records, nil
}

func (c *ScriptClient) entityPayload(kind models.EntityKind, action string, record models.MasterRecord) map[string]any {
	cols := entityColumnSpec[kind]
	payload := map[string]any{
		"entity": string(kind),
		"action": action,
		cols.name: record.Name,
	}
	if action == "update" {
		payload["id"] = record.ID
	}
	for key, value := range map[string]string{
		cols.abbreviation: record.Abbreviation,
		cols.location:     record.Location,
		cols.contact:      record.Contact,
		cols.address:      record.Address,
		cols.nif:          record.NIF,
		cols.description:  record.Description,
	} {
		if key != "" && value != "" {
			payload[key] = value
		}
	}
	return payload
}

// InsertEntity appends one master-data row.
func (c *ScriptClient) InsertEntity(ctx context.Context, kind models.EntityKind, record models.MasterRecord) error {
	if _, ok := entityColumnSpec[kind]; !ok {
		return fmt.Errorf("unknown entity kind %q", kind)
	}
	if err := c.post(ctx, c.entityPayload(kind, "insert", record)); err != nil {
		return fmt.Errorf("insert %s: %w", kind, err)
	}
	return nil
}

// UpdateEntity rewrites one master-data row identified by its id column.
func (c *ScriptClient) UpdateEntity(ctx context.Context, kind models.EntityKind, record models.MasterRecord) error {
	if _, ok := entityColumnSpec[kind]; !ok {
		return fmt.Errorf("unknown entity kind %q", kind)
	}
	if record.ID == "" {
		return fmt.Errorf("update %s: record id must not be empty", kind)
	}
	if err := c.post(ctx, c.entityPayload(kind, "update", record)); err != nil {
		return fmt.Errorf("update %s: %w", kind, err)
	}
	return nil
}

// DeleteEntity soft-deletes one master-data row. The gateway flips the
// active flag rather than removing the sheet row.
func (c *ScriptClient) DeleteEntity(ctx context.Context, kind models.EntityKind, id string) error {
	if _, ok := entityColumnSpec[kind]; !ok {
		return fmt.Errorf("unknown entity kind %q", kind)
	}
	payload := map[string]any{"entity": string(kind), "action": "delete", "id": id}
	if err := c.post(ctx, payload); err != nil {
		return fmt.Errorf("delete %s %s: %w", kind, id, err)
	}
	return nil
}

// ListInvoices fetches every stored invoice.
func (c *ScriptClient) ListInvoices(ctx context.Context) ([]models.Invoice, error) {
	var invoices []models.Invoice
	if err := c.get(ctx, map[string]string{"action": "invoicelist"}, &invoices); err != nil {
		return nil, fmt.Errorf("list invoices: %w", err)
	}
	return invoices, nil
}

// CreateInvoice stores one invoice together with its item lines.
func (c *ScriptClient) CreateInvoice(ctx context.Context, invoice models.Invoice) error {
	payload := map[string]any{
		"action":          "invoice",
		"invoiceNumber":   invoice.Number,
		"date":            invoice.Date,
		"Customer_Nif":    invoice.CustomerNIF,
		"customerName":    invoice.CustomerName,
		"customerContact": invoice.CustomerContact,
		"customerAddress": invoice.CustomerAddress,
		"discount":        invoice.Discount,
		"tax":             invoice.Tax,
		"total":           invoice.Total,
		"items":           invoice.Items,
	}
	if err := c.post(ctx, payload); err != nil {
		return fmt.Errorf("create invoice %s: %w", invoice.Number, err)
	}

	c.logger.Debug("invoice created via gateway", zap.String("number", invoice.Number))
	return nil
}

// GetInvoiceByNumber fetches one stored invoice for printing.
func (c *ScriptClient) GetInvoiceByNumber(ctx context.Context, number string) (*models.Invoice, error) {
	if number == "" {
		return nil, fmt.Errorf("invoice number must not be empty")
	}

	var invoice models.Invoice
	params := map[string]string{"action": "invoice", "InvoiceNumber": number}
	if err := c.get(ctx, params, &invoice); err != nil {
		return nil, fmt.Errorf("fetch invoice %s: %w", number, err)
	}
	if invoice.Number == "" {
		return nil, ErrNotFound
	}
	return &invoice, nil
}
