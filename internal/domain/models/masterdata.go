package models

import "strings"

// EntityKind identifies one of the master-data sheets managed by the gateway.
type EntityKind string

const (
	EntityCategory  EntityKind = "Category"
	EntityWarehouse EntityKind = "Warehouse"
	EntityUnit      EntityKind = "Unit"
	EntitySupplier  EntityKind = "Supplier"
	EntityCustomer  EntityKind = "Customer"
)

// MasterKinds lists every master-data entity in presentation order.
var MasterKinds = []EntityKind{EntityCategory, EntityWarehouse, EntityUnit, EntitySupplier, EntityCustomer}

// ValidEntityKind reports whether kind names a known master-data sheet.
func ValidEntityKind(kind EntityKind) bool {
	for _, k := range MasterKinds {
		if k == kind {
			return true
		}
	}
	return false
}

// MasterRecord is the shared row shape for master-data entities. Only a
// subset of the optional columns is populated for any given kind.
type MasterRecord struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Abbreviation string `json:"abbreviation,omitempty"` // units
	Location     string `json:"location,omitempty"`     // warehouses
	Contact      string `json:"contact,omitempty"`      // suppliers, customers
	Address      string `json:"address,omitempty"`      // suppliers, customers
	NIF          string `json:"nif,omitempty"`          // customers
	Description  string `json:"description,omitempty"`
	Active       bool   `json:"isActive"`
}

// MasterSnapshot is a read-only view of the master-data lists taken at the
// start of an import. It is never refreshed mid-import.
type MasterSnapshot struct {
	Categories []MasterRecord
	Warehouses []MasterRecord
	Units      []MasterRecord
	Suppliers  []MasterRecord
}

// ResolveName looks up a raw name case-insensitively in the given list and
// returns the canonical stored spelling on a hit, otherwise the raw name.
func ResolveName(list []MasterRecord, raw string) string {
	for _, rec := range list {
		if strings.EqualFold(rec.Name, raw) {
			return rec.Name
		}
	}
	return raw
}
