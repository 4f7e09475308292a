package importing

import (
	"fmt"
	"strings"
)

// Field is a canonical product attribute the importer knows how to populate.
type Field string

const (
	FieldProductName   Field = "productName"
	FieldQuantity      Field = "quantity"
	FieldPurchasePrice Field = "purchasePrice"
	FieldSellingPrice  Field = "sellingPrice"
	FieldCategory      Field = "category"
	FieldWarehouse     Field = "warehouse"
	FieldUnit          Field = "unit"
	FieldProductCode   Field = "productCode"
	FieldSupplierName  Field = "supplierName"
	FieldSpecification Field = "specification"
	FieldRemarks       Field = "remarks"
	FieldEntryDate     Field = "entryDate"
)

// fieldSynonyms binds one canonical field to the raw header spellings it
// accepts. Order matters twice: fields are matched top to bottom, and when
// one raw header satisfies several fields the earlier field claims it.
type fieldSynonyms struct {
	field    Field
	synonyms []string
}

var synonymTable = []fieldSynonyms{
	{FieldProductName, []string{"productname", "product_name", "product", "name", "item", "title", "itemname"}},
	{FieldQuantity, []string{"quantity", "qty", "amount", "count", "stock", "units", "stockquantity"}},
	{FieldPurchasePrice, []string{"purchaseprice", "purchase_price", "cost", "buying_price", "costprice", "buyprice", "buy_price", "unitcost", "unit_cost"}},
	{FieldSellingPrice, []string{"sellingprice", "selling_price", "price", "retail_price", "sale_price", "retail", "sellprice", "sell_price", "unitprice", "unit_price"}},
	{FieldCategory, []string{"category", "type", "group", "department", "producttype", "product_type", "productcategory", "product_category"}},
	{FieldWarehouse, []string{"warehouse", "location", "store", "storage", "inventory_location", "inventorylocation"}},
	{FieldUnit, []string{"unit", "uom", "measure", "measurement", "unitofmeasure", "unit_of_measure"}},
	{FieldProductCode, []string{"productcode", "product_code", "code", "sku", "item_code", "itemcode", "id", "productid", "product_id"}},
	{FieldSupplierName, []string{"suppliername", "supplier_name", "supplier", "vendor", "manufacturer", "brand", "vendorname", "vendor_name"}},
	{FieldSpecification, []string{"specification", "specs", "details", "description", "desc", "info", "productdescription"}},
	{FieldRemarks, []string{"remarks", "notes", "comment", "additional", "extra", "comments"}},
	{FieldEntryDate, []string{"entrydate", "entry_date", "date", "dateadded", "date_added", "createdate", "created_date", "created_at"}},
}

// mandatoryFields must all be bound for an import to proceed.
var mandatoryFields = []Field{FieldProductName, FieldQuantity}

// NormalizeHeader lower-cases a raw header and strips all whitespace,
// matching how the synonym table is spelled. Idempotent.
func NormalizeHeader(raw string) string {
	return strings.Join(strings.Fields(strings.ToLower(raw)), "")
}

// HeaderConflict records one raw header that satisfied a second canonical
// field after already being claimed by an earlier one.
type HeaderConflict struct {
	RawHeader string `json:"rawHeader"`
	BoundTo   Field  `json:"boundTo"`
	Contested Field  `json:"contested"`
}

// HeaderMapping binds canonical fields to the raw headers of one file.
// Computed once per import from the first row's keys.
type HeaderMapping struct {
	byField   map[Field]string
	Conflicts []HeaderConflict
}

// RawHeader returns the raw header bound to the field, if any.
func (m HeaderMapping) RawHeader(field Field) (string, bool) {
	raw, ok := m.byField[field]
	return raw, ok
}

// MissingFieldsError enumerates mandatory canonical fields with no bound
// raw header. The whole import fails fast on this error.
type MissingFieldsError struct {
	Fields []Field
}

func (e *MissingFieldsError) Error() string {
	names := make([]string, len(e.Fields))
	for i, f := range e.Fields {
		names[i] = string(f)
	}
	return fmt.Sprintf("required fields missing from file: %s", strings.Join(names, ", "))
}

// MapHeaders resolves each canonical field to the best raw header. Binding
// is exclusive: a raw header claimed by one field is unavailable to later
// fields, which instead record a conflict and keep searching. Returns a
// MissingFieldsError when a mandatory field stays unbound.
func MapHeaders(rawHeaders []string) (HeaderMapping, error) {
	mapping := HeaderMapping{byField: make(map[Field]string, len(synonymTable))}
	claimedBy := make(map[string]Field, len(rawHeaders))

	for _, entry := range synonymTable {
		accepted := make(map[string]bool, len(entry.synonyms))
		for _, syn := range entry.synonyms {
			accepted[syn] = true
		}

		for _, raw := range rawHeaders {
			if !accepted[NormalizeHeader(raw)] {
				continue
			}
			if owner, taken := claimedBy[raw]; taken {
				mapping.Conflicts = append(mapping.Conflicts, HeaderConflict{
					RawHeader: raw,
					BoundTo:   owner,
					Contested: entry.field,
				})
				continue
			}
			mapping.byField[entry.field] = raw
			claimedBy[raw] = entry.field
			break
		}
	}

	var missing []Field
	for _, field := range mandatoryFields {
		if _, ok := mapping.byField[field]; !ok {
			missing = append(missing, field)
		}
	}
	if len(missing) > 0 {
		return HeaderMapping{}, &MissingFieldsError{Fields: missing}
	}
	return mapping, nil
}
