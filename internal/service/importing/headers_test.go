package importing

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeHeader(t *testing.T) {
	tests := []struct {
		raw  string
		want string
	}{
		{"Product Name", "productname"},
		{"  Qty  ", "qty"},
		{"UNIT OF MEASURE", "unitofmeasure"},
		{"Selling\tPrice", "sellingprice"},
		{"price", "price"},
		{"", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, NormalizeHeader(tt.raw), "raw=%q", tt.raw)
	}
}

func TestNormalizeHeaderIdempotent(t *testing.T) {
	for _, raw := range []string{"Product Name", " Entry Date ", "qty", "Unit Of Measure"} {
		once := NormalizeHeader(raw)
		assert.Equal(t, once, NormalizeHeader(once))
	}
}

func TestMapHeadersBindsSynonyms(t *testing.T) {
	mapping, err := MapHeaders([]string{"Item Name", "Qty", "Unit Price", "Vendor"})
	require.NoError(t, err)

	raw, ok := mapping.RawHeader(FieldProductName)
	require.True(t, ok)
	assert.Equal(t, "Item Name", raw)

	raw, ok = mapping.RawHeader(FieldQuantity)
	require.True(t, ok)
	assert.Equal(t, "Qty", raw)

	raw, ok = mapping.RawHeader(FieldSellingPrice)
	require.True(t, ok)
	assert.Equal(t, "Unit Price", raw)

	raw, ok = mapping.RawHeader(FieldSupplierName)
	require.True(t, ok)
	assert.Equal(t, "Vendor", raw)

	_, ok = mapping.RawHeader(FieldCategory)
	assert.False(t, ok)
	assert.Empty(t, mapping.Conflicts)
}

func TestMapHeadersFirstHeaderWins(t *testing.T) {
	// Both headers satisfy productName; the one earlier in the file binds.
	mapping, err := MapHeaders([]string{"Item", "Product Name", "Quantity"})
	require.NoError(t, err)

	raw, ok := mapping.RawHeader(FieldProductName)
	require.True(t, ok)
	assert.Equal(t, "Item", raw)
}

func TestMapHeadersMissingMandatory(t *testing.T) {
	_, err := MapHeaders([]string{"Product Name", "Price", "Category"})

	var missing *MissingFieldsError
	require.True(t, errors.As(err, &missing))
	assert.Equal(t, []Field{FieldQuantity}, missing.Fields)
	assert.Contains(t, err.Error(), "quantity")
}

func TestMapHeadersMissingBothMandatory(t *testing.T) {
	_, err := MapHeaders([]string{"Category", "Warehouse"})

	var missing *MissingFieldsError
	require.True(t, errors.As(err, &missing))
	assert.ElementsMatch(t, []Field{FieldProductName, FieldQuantity}, missing.Fields)
}

// The synonym sets are deliberately disjoint so one raw header can never
// satisfy two canonical fields. Conflict detection guards against this
// invariant being broken by a future synonym addition.
func TestSynonymSetsDisjoint(t *testing.T) {
	owner := make(map[string]Field)
	for _, entry := range synonymTable {
		for _, syn := range entry.synonyms {
			if prev, dup := owner[syn]; dup {
				t.Fatalf("synonym %q claimed by both %s and %s", syn, prev, entry.field)
			}
			owner[syn] = entry.field
		}
	}
}

func TestMapHeadersRecordsConflicts(t *testing.T) {
	saved := synonymTable
	defer func() { synonymTable = saved }()

	synonymTable = []fieldSynonyms{
		{FieldProductName, []string{"name", "title"}},
		{FieldQuantity, []string{"qty"}},
		{FieldSpecification, []string{"name", "description"}},
	}

	mapping, err := MapHeaders([]string{"Name", "Qty"})
	require.NoError(t, err)

	raw, ok := mapping.RawHeader(FieldProductName)
	require.True(t, ok)
	assert.Equal(t, "Name", raw)

	// Binding is exclusive: the contested header stays with productName and
	// the clash is surfaced instead of silently rebinding.
	_, ok = mapping.RawHeader(FieldSpecification)
	assert.False(t, ok)
	require.Len(t, mapping.Conflicts, 1)
	assert.Equal(t, HeaderConflict{RawHeader: "Name", BoundTo: FieldProductName, Contested: FieldSpecification}, mapping.Conflicts[0])
}
