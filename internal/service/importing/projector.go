package importing

import (
	"strconv"
	"strings"
	"time"

	"github.com/kdiomande/stockroom/internal/domain/models"
)

// Defaults applied when an optional field is absent from the file.
const (
	defaultCategory  = "General"
	defaultWarehouse = "Main Warehouse"
	defaultUnit      = "pcs"
	defaultSupplier  = "Unknown Supplier"
	defaultRemarks   = "Imported product"
	importedBy       = "Import"
)

const dateLayout = "2006-01-02"

// entryDateLayouts are tried in order when parsing the mapped date value.
var entryDateLayouts = []string{
	time.RFC3339,
	dateLayout,
	"2006/01/02",
	"01/02/2006",
	"02-01-2006",
	time.RFC1123,
}

// Projector turns raw rows into typed candidate products using a header
// mapping and a read-only master-data snapshot taken at import start.
type Projector struct {
	Snapshot models.MasterSnapshot

	// Overridable for tests.
	Now     func() time.Time
	NewID   func() string
	NewCode func() string
}

// NewProjector wires a projector with production id/code generators.
func NewProjector(snapshot models.MasterSnapshot) *Projector {
	return &Projector{
		Snapshot: snapshot,
		Now:      time.Now,
		NewID:    models.NewProductID,
		NewCode:  models.NewProductCode,
	}
}

// Projection is the outcome of projecting a full row sequence. Candidate
// order follows source-file order; skipped rows are counted, not returned.
type Projection struct {
	Candidates    []models.Product
	SkippedNoName int
}

// Project processes every row and returns the ordered candidates. A row
// missing its product name is a counted skip; coercion failures degrade to
// defaults and never drop a row.
func (p *Projector) Project(rows []Row, mapping HeaderMapping) Projection {
	var out Projection
	for _, row := range rows {
		candidate, ok := p.projectRow(row, mapping)
		if !ok {
			out.SkippedNoName++
			continue
		}
		out.Candidates = append(out.Candidates, candidate)
	}
	return out
}

func (p *Projector) projectRow(row Row, mapping HeaderMapping) (models.Product, bool) {
	getValue := func(field Field, fallback string) string {
		raw, bound := mapping.RawHeader(field)
		if !bound {
			return fallback
		}
		value := strings.TrimSpace(row[raw])
		if value == "" {
			return fallback
		}
		return value
	}

	name := getValue(FieldProductName, "")
	if name == "" {
		return models.Product{}, false
	}

	code := getValue(FieldProductCode, "")
	if code == "" {
		code = p.NewCode()
	}

	return models.Product{
		ID:            p.NewID(),
		Code:          code,
		Name:          name,
		Specification: getValue(FieldSpecification, ""),
		Category:      models.ResolveName(p.Snapshot.Categories, getValue(FieldCategory, defaultCategory)),
		SupplierName:  models.ResolveName(p.Snapshot.Suppliers, getValue(FieldSupplierName, defaultSupplier)),
		PurchasePrice: coerceNumber(getValue(FieldPurchasePrice, "0")),
		SellingPrice:  coerceNumber(getValue(FieldSellingPrice, "0")),
		Quantity:      coerceNumber(getValue(FieldQuantity, "0")),
		Unit:          models.ResolveName(p.Snapshot.Units, getValue(FieldUnit, defaultUnit)),
		Warehouse:     models.ResolveName(p.Snapshot.Warehouses, getValue(FieldWarehouse, defaultWarehouse)),
		EntryDate:     p.coerceDate(getValue(FieldEntryDate, "")),
		EnteredBy:     importedBy,
		Remarks:       getValue(FieldRemarks, defaultRemarks),
		Active:        true,
	}, true
}

// coerceNumber strips thousands separators and a leading currency symbol
// before parsing. Anything unparseable coerces to 0 rather than failing.
func coerceNumber(raw string) float64 {
	cleaned := strings.ReplaceAll(strings.TrimSpace(raw), ",", "")
	cleaned = strings.TrimPrefix(cleaned, "$")
	value, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return 0
	}
	return value
}

// coerceDate parses the mapped date value, falling back to the current day
// on any failure or absence.
func (p *Projector) coerceDate(raw string) string {
	if raw != "" {
		for _, layout := range entryDateLayouts {
			if parsed, err := time.Parse(layout, raw); err == nil {
				return parsed.Format(dateLayout)
			}
		}
	}
	return p.Now().Format(dateLayout)
}
