package sheetstore

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"google.golang.org/api/option"
	sheetsapi "google.golang.org/api/sheets/v4"

	"github.com/kdiomande/stockroom/internal/config"
	"github.com/kdiomande/stockroom/internal/domain/models"
	"github.com/kdiomande/stockroom/internal/repository/gateway"
)

// SheetStore implements the gateway.Client interface directly against a
// Google spreadsheet, bypassing the script web endpoint. Rows are appended
// with USER_ENTERED and deletes are soft: the trailing Active column is
// flipped to 0 so sheet history survives.
type SheetStore struct {
	service       *sheetsapi.Service
	spreadsheetID string
	logger        *zap.Logger
}

// NewSheetStore builds a spreadsheet-backed gateway instance.
func NewSheetStore(ctx context.Context, cfg config.SheetsConfig, logger *zap.Logger) (*SheetStore, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	service, err := sheetsapi.NewService(ctx, option.WithCredentialsFile(cfg.CredentialsPath), option.WithScopes(sheetsapi.SpreadsheetsScope))
	if err != nil {
		return nil, fmt.Errorf("failed to initialize sheets client: %w", err)
	}

	return &SheetStore{
		service:       service,
		spreadsheetID: cfg.SpreadsheetID,
		logger:        logger,
	}, nil
}

const (
	productsRange = "Products!A:O"
	invoicesRange = "Invoices!A:N"
)

// entitySheet names the tab and column width of one master-data sheet. The
// Active flag always occupies the last column.
type entitySheet struct {
	tab     string
	columns int
}

var entitySheets = map[models.EntityKind]entitySheet{
	models.EntityCategory:  {tab: "Category", columns: 3},  // ID, Name, Active
	models.EntityWarehouse: {tab: "Warehouse", columns: 4}, // ID, Name, Location, Active
	models.EntityUnit:      {tab: "Unit", columns: 4},      // ID, Name, Abbreviation, Active
	models.EntitySupplier:  {tab: "Supplier", columns: 5},  // ID, Name, Contact, Address, Active
	models.EntityCustomer:  {tab: "Customer", columns: 7},  // ID, Name, Contact, Address, NIF, Description, Active
}

func (s *SheetStore) appendRow(ctx context.Context, sheetRange string, values []interface{}) error {
	payload := &sheetsapi.ValueRange{Values: [][]interface{}{values}}

	call := s.service.Spreadsheets.Values.Append(s.spreadsheetID, sheetRange, payload).
		ValueInputOption("USER_ENTERED").
		InsertDataOption("INSERT_ROWS").
		Context(ctx)

	if _, err := call.Do(); err != nil {
		return fmt.Errorf("append row into range %s: %w", sheetRange, err)
	}

	s.logger.Debug("row appended to sheet", zap.String("range", sheetRange))
	return nil
}

func (s *SheetStore) readRange(ctx context.Context, sheetRange string) ([][]interface{}, error) {
	resp, err := s.service.Spreadsheets.Values.Get(s.spreadsheetID, sheetRange).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("read range %s: %w", sheetRange, err)
	}
	return resp.Values, nil
}

func (s *SheetStore) updateCell(ctx context.Context, cellRange string, value interface{}) error {
	payload := &sheetsapi.ValueRange{Values: [][]interface{}{{value}}}

	call := s.service.Spreadsheets.Values.Update(s.spreadsheetID, cellRange, payload).
		ValueInputOption("USER_ENTERED").
		Context(ctx)

	if _, err := call.Do(); err != nil {
		return fmt.Errorf("update cell %s: %w", cellRange, err)
	}
	return nil
}

func cellString(row []interface{}, idx int) string {
	if idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(fmt.Sprintf("%v", row[idx]))
}

func cellFloat(row []interface{}, idx int) float64 {
	value, err := strconv.ParseFloat(strings.ReplaceAll(cellString(row, idx), ",", ""), 64)
	if err != nil {
		return 0
	}
	return value
}

func cellActive(row []interface{}, idx int) bool {
	value := cellString(row, idx)
	return value != "0" && !strings.EqualFold(value, "false")
}

// ListProducts reads every active product row. The first sheet row is the
// header and is skipped.
func (s *SheetStore) ListProducts(ctx context.Context) ([]models.Product, error) {
	rows, err := s.readRange(ctx, productsRange)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}

	var products []models.Product
	for i, row := range rows {
		if i == 0 || len(row) < 3 {
			continue
		}
		if !cellActive(row, 14) {
			continue
		}
		products = append(products, models.Product{
			ID:            cellString(row, 0),
			Code:          cellString(row, 1),
			Name:          cellString(row, 2),
			Specification: cellString(row, 3),
			Category:      cellString(row, 4),
			SupplierName:  cellString(row, 5),
			PurchasePrice: cellFloat(row, 6),
			SellingPrice:  cellFloat(row, 7),
			Quantity:      cellFloat(row, 8),
			Unit:          cellString(row, 9),
			Warehouse:     cellString(row, 10),
			EntryDate:     cellString(row, 11),
			EnteredBy:     cellString(row, 12),
			Remarks:       cellString(row, 13),
			Active:        true,
		})
	}
	return products, nil
}

// CreateProduct appends one product row.
func (s *SheetStore) CreateProduct(ctx context.Context, p models.Product) error {
	row := []interface{}{
		p.ID, p.Code, p.Name, p.Specification, p.Category, p.SupplierName,
		p.PurchasePrice, p.SellingPrice, p.Quantity, p.Unit, p.Warehouse,
		p.EntryDate, p.EnteredBy, p.Remarks, 1,
	}
	if err := s.appendRow(ctx, productsRange, row); err != nil {
		return fmt.Errorf("create product %s: %w", p.Code, err)
	}
	return nil
}

// DeleteProductByCode soft-deletes the first active row carrying the code.
func (s *SheetStore) DeleteProductByCode(ctx context.Context, code string) error {
	if code == "" {
		return fmt.Errorf("product code must not be empty")
	}

	rows, err := s.readRange(ctx, productsRange)
	if err != nil {
		return fmt.Errorf("delete product %s: %w", code, err)
	}

	for i, row := range rows {
		if i == 0 {
			continue
		}
		if cellString(row, 1) == code && cellActive(row, 14) {
			// Sheet rows are 1-based and include the header.
			return s.updateCell(ctx, fmt.Sprintf("Products!O%d", i+1), 0)
		}
	}
	return gateway.ErrNotFound
}

// ListEntity reads the active rows of one master-data tab.
func (s *SheetStore) ListEntity(ctx context.Context, kind models.EntityKind) ([]models.MasterRecord, error) {
	sheet, ok := entitySheets[kind]
	if !ok {
		return nil, fmt.Errorf("unknown entity kind %q", kind)
	}

	lastCol := string(rune('A' + sheet.columns - 1))
	rows, err := s.readRange(ctx, fmt.Sprintf("%s!A:%s", sheet.tab, lastCol))
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", kind, err)
	}

	var records []models.MasterRecord
	for i, row := range rows {
		if i == 0 || len(row) < 2 {
			continue
		}
		if !cellActive(row, sheet.columns-1) {
			continue
		}
		records = append(records, recordFromRow(kind, row))
	}
	return records, nil
}

func recordFromRow(kind models.EntityKind, row []interface{}) models.MasterRecord {
	rec := models.MasterRecord{ID: cellString(row, 0), Name: cellString(row, 1), Active: true}
	switch kind {
	case models.EntityWarehouse:
		rec.Location = cellString(row, 2)
	case models.EntityUnit:
		rec.Abbreviation = cellString(row, 2)
	case models.EntitySupplier:
		rec.Contact = cellString(row, 2)
		rec.Address = cellString(row, 3)
	case models.EntityCustomer:
		rec.Contact = cellString(row, 2)
		rec.Address = cellString(row, 3)
		rec.NIF = cellString(row, 4)
		rec.Description = cellString(row, 5)
	}
	return rec
}

func withAssignedID(rec models.MasterRecord) models.MasterRecord {
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	return rec
}

func rowFromRecord(kind models.EntityKind, rec models.MasterRecord) []interface{} {
	switch kind {
	case models.EntityCategory:
		return []interface{}{rec.ID, rec.Name, 1}
	case models.EntityWarehouse:
		return []interface{}{rec.ID, rec.Name, rec.Location, 1}
	case models.EntityUnit:
		return []interface{}{rec.ID, rec.Name, rec.Abbreviation, 1}
	case models.EntitySupplier:
		return []interface{}{rec.ID, rec.Name, rec.Contact, rec.Address, 1}
	case models.EntityCustomer:
		return []interface{}{rec.ID, rec.Name, rec.Contact, rec.Address, rec.NIF, rec.Description, 1}
	}
	return nil
}

// InsertEntity appends one master-data row. Unlike the script gateway, the
// spreadsheet has no server side to mint record ids, so an empty id is filled
// in here before the row is written.
func (s *SheetStore) InsertEntity(ctx context.Context, kind models.EntityKind, rec models.MasterRecord) error {
	sheet, ok := entitySheets[kind]
	if !ok {
		return fmt.Errorf("unknown entity kind %q", kind)
	}
	rec = withAssignedID(rec)

	lastCol := string(rune('A' + sheet.columns - 1))
	if err := s.appendRow(ctx, fmt.Sprintf("%s!A:%s", sheet.tab, lastCol), rowFromRecord(kind, rec)); err != nil {
		return fmt.Errorf("insert %s: %w", kind, err)
	}
	return nil
}

// UpdateEntity rewrites the row carrying the record id.
func (s *SheetStore) UpdateEntity(ctx context.Context, kind models.EntityKind, rec models.MasterRecord) error {
	sheet, ok := entitySheets[kind]
	if !ok {
		return fmt.Errorf("unknown entity kind %q", kind)
	}

	lastCol := string(rune('A' + sheet.columns - 1))
	rangeName := fmt.Sprintf("%s!A:%s", sheet.tab, lastCol)
	rows, err := s.readRange(ctx, rangeName)
	if err != nil {
		return fmt.Errorf("update %s: %w", kind, err)
	}

	for i, row := range rows {
		if i == 0 || cellString(row, 0) != rec.ID {
			continue
		}
		payload := &sheetsapi.ValueRange{Values: [][]interface{}{rowFromRecord(kind, rec)}}
		target := fmt.Sprintf("%s!A%d:%s%d", sheet.tab, i+1, lastCol, i+1)
		call := s.service.Spreadsheets.Values.Update(s.spreadsheetID, target, payload).
			ValueInputOption("USER_ENTERED").
			Context(ctx)
		if _, err := call.Do(); err != nil {
			return fmt.Errorf("update %s %s: %w", kind, rec.ID, err)
		}
		return nil
	}
	return gateway.ErrNotFound
}

// DeleteEntity soft-deletes the row carrying the record id.
func (s *SheetStore) DeleteEntity(ctx context.Context, kind models.EntityKind, id string) error {
	sheet, ok := entitySheets[kind]
	if !ok {
		return fmt.Errorf("unknown entity kind %q", kind)
	}

	lastCol := string(rune('A' + sheet.columns - 1))
	rows, err := s.readRange(ctx, fmt.Sprintf("%s!A:%s", sheet.tab, lastCol))
	if err != nil {
		return fmt.Errorf("delete %s %s: %w", kind, id, err)
	}

	for i, row := range rows {
		if i == 0 || cellString(row, 0) != id {
			continue
		}
		return s.updateCell(ctx, fmt.Sprintf("%s!%s%d", sheet.tab, lastCol, i+1), 0)
	}
	return gateway.ErrNotFound
}

// ListInvoices reads every invoice row. Item lines are stored as a JSON
// blob in a single cell; rows with unreadable items are skipped.
func (s *SheetStore) ListInvoices(ctx context.Context) ([]models.Invoice, error) {
	rows, err := s.readRange(ctx, invoicesRange)
	if err != nil {
		return nil, fmt.Errorf("list invoices: %w", err)
	}

	var invoices []models.Invoice
	for i, row := range rows {
		if i == 0 || len(row) < 2 {
			continue
		}
		inv, err := invoiceFromRow(row)
		if err != nil {
			s.logger.Warn("skip unreadable invoice row", zap.Int("row", i+1), zap.Error(err))
			continue
		}
		invoices = append(invoices, inv)
	}
	return invoices, nil
}

func invoiceFromRow(row []interface{}) (models.Invoice, error) {
	inv := models.Invoice{
		Number:          cellString(row, 0),
		Date:            cellString(row, 1),
		CustomerName:    cellString(row, 2),
		CustomerContact: cellString(row, 3),
		CustomerAddress: cellString(row, 4),
		CustomerNIF:     cellString(row, 5),
		Subtotal:        cellFloat(row, 7),
		Discount:        cellFloat(row, 8),
		Tax:             cellFloat(row, 9),
		Total:           cellFloat(row, 10),
		CreatedBy:       cellString(row, 11),
		Status:          cellString(row, 12),
	}

	if itemsJSON := cellString(row, 6); itemsJSON != "" {
		if err := json.Unmarshal([]byte(itemsJSON), &inv.Items); err != nil {
			return models.Invoice{}, fmt.Errorf("decode invoice items: %w", err)
		}
	}
	return inv, nil
}

// CreateInvoice appends one invoice row with the item lines serialized.
func (s *SheetStore) CreateInvoice(ctx context.Context, inv models.Invoice) error {
	items, err := json.Marshal(inv.Items)
	if err != nil {
		return fmt.Errorf("encode invoice items: %w", err)
	}

	row := []interface{}{
		inv.Number, inv.Date, inv.CustomerName, inv.CustomerContact,
		inv.CustomerAddress, inv.CustomerNIF, string(items),
		inv.Subtotal, inv.Discount, inv.Tax, inv.Total, inv.CreatedBy, inv.Status, 1,
	}
	if err := s.appendRow(ctx, invoicesRange, row); err != nil {
		return fmt.Errorf("create invoice %s: %w", inv.Number, err)
	}
	return nil
}

// GetInvoiceByNumber fetches one invoice for printing.
func (s *SheetStore) GetInvoiceByNumber(ctx context.Context, number string) (*models.Invoice, error) {
	invoices, err := s.ListInvoices(ctx)
	if err != nil {
		return nil, err
	}
	for i := range invoices {
		if invoices[i].Number == number {
			return &invoices[i], nil
		}
	}
	return nil, gateway.ErrNotFound
}
