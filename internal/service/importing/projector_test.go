package importing

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kdiomande/stockroom/internal/domain/models"
)

func testProjector(snapshot models.MasterSnapshot) *Projector {
	ids, codes := 0, 0
	return &Projector{
		Snapshot: snapshot,
		Now:      func() time.Time { return time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC) },
		NewID:    func() string { ids++; return fmt.Sprintf("id-%d", ids) },
		NewCode:  func() string { codes++; return fmt.Sprintf("PROD-%d", codes) },
	}
}

func mustMap(t *testing.T, headers ...string) HeaderMapping {
	t.Helper()
	mapping, err := MapHeaders(headers)
	require.NoError(t, err)
	return mapping
}

func TestProjectAppliesDefaults(t *testing.T) {
	mapping := mustMap(t, "Product Name", "Qty")
	p := testProjector(models.MasterSnapshot{})

	out := p.Project([]Row{{"Product Name": "Widget", "Qty": "10"}}, mapping)
	require.Len(t, out.Candidates, 1)
	assert.Zero(t, out.SkippedNoName)

	got := out.Candidates[0]
	assert.Equal(t, "id-1", got.ID)
	assert.Equal(t, "PROD-1", got.Code)
	assert.Equal(t, "Widget", got.Name)
	assert.Equal(t, 10.0, got.Quantity)
	assert.Equal(t, 0.0, got.PurchasePrice)
	assert.Equal(t, 0.0, got.SellingPrice)
	assert.Equal(t, "General", got.Category)
	assert.Equal(t, "Main Warehouse", got.Warehouse)
	assert.Equal(t, "pcs", got.Unit)
	assert.Equal(t, "Unknown Supplier", got.SupplierName)
	assert.Equal(t, "Imported product", got.Remarks)
	assert.Equal(t, "Import", got.EnteredBy)
	assert.Equal(t, "2026-03-14", got.EntryDate)
	assert.True(t, got.Active)
}

func TestProjectNeverDropsNamedRows(t *testing.T) {
	mapping := mustMap(t, "Name", "Quantity")
	p := testProjector(models.MasterSnapshot{})

	rows := make([]Row, 50)
	for i := range rows {
		rows[i] = Row{"Name": fmt.Sprintf("P%d", i), "Quantity": "garbage"}
	}
	out := p.Project(rows, mapping)
	assert.Len(t, out.Candidates, 50)
	assert.Zero(t, out.SkippedNoName)
}

func TestProjectCountsMissingNameSkips(t *testing.T) {
	mapping := mustMap(t, "Name", "Qty")
	p := testProjector(models.MasterSnapshot{})

	out := p.Project([]Row{
		{"Name": "Widget", "Qty": "1"},
		{"Name": "  ", "Qty": "2"},
		{"Name": "", "Qty": "3"},
		{"Name": "Gadget", "Qty": "4"},
	}, mapping)

	assert.Equal(t, 2, out.SkippedNoName)
	require.Len(t, out.Candidates, 2)
	assert.Equal(t, "Widget", out.Candidates[0].Name)
	assert.Equal(t, "Gadget", out.Candidates[1].Name)
}

func TestProjectResolvesMasterNames(t *testing.T) {
	snapshot := models.MasterSnapshot{
		Categories: []models.MasterRecord{{Name: "Electronics"}},
		Units:      []models.MasterRecord{{Name: "Box"}},
		Warehouses: []models.MasterRecord{{Name: "Depot West"}},
		Suppliers:  []models.MasterRecord{{Name: "Acme Ltd"}},
	}
	mapping := mustMap(t, "Name", "Qty", "Category", "Unit", "Warehouse", "Supplier")
	p := testProjector(snapshot)

	out := p.Project([]Row{{
		"Name": "Widget", "Qty": "1",
		"Category":  "ELECTRONICS",
		"Unit":      "box",
		"Warehouse": "depot west",
		"Supplier":  "acme ltd",
	}}, mapping)

	require.Len(t, out.Candidates, 1)
	got := out.Candidates[0]
	assert.Equal(t, "Electronics", got.Category)
	assert.Equal(t, "Box", got.Unit)
	assert.Equal(t, "Depot West", got.Warehouse)
	assert.Equal(t, "Acme Ltd", got.SupplierName)
}

func TestProjectKeepsFileCode(t *testing.T) {
	mapping := mustMap(t, "Name", "Qty", "SKU")
	p := testProjector(models.MasterSnapshot{})

	out := p.Project([]Row{
		{"Name": "Widget", "Qty": "1", "SKU": "W-001"},
		{"Name": "Gadget", "Qty": "1", "SKU": ""},
	}, mapping)

	require.Len(t, out.Candidates, 2)
	assert.Equal(t, "W-001", out.Candidates[0].Code)
	assert.Equal(t, "PROD-1", out.Candidates[1].Code)
}

func TestCoerceNumber(t *testing.T) {
	tests := []struct {
		raw  string
		want float64
	}{
		{"$1,234.50", 1234.50},
		{"", 0},
		{"abc", 0},
		{"2.50", 2.50},
		{" 7 ", 7},
		{"1,000", 1000},
		{"$5", 5},
		{"-3.5", -3.5},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, coerceNumber(tt.raw), "raw=%q", tt.raw)
	}
}

func TestCoerceDate(t *testing.T) {
	p := testProjector(models.MasterSnapshot{})

	tests := []struct {
		raw  string
		want string
	}{
		{"2025-06-01", "2025-06-01"},
		{"2025/06/01", "2025-06-01"},
		{"06/15/2025", "2025-06-15"},
		{"2025-06-01T08:30:00Z", "2025-06-01"},
		{"not a date", "2026-03-14"},
		{"", "2026-03-14"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, p.coerceDate(tt.raw), "raw=%q", tt.raw)
	}
}
