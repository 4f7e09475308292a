package models

import (
	"fmt"
	"math/rand"

	"github.com/google/uuid"
)

// Product is the central inventory entity. All persistence is owned by the
// external spreadsheet gateway; instances here are transient projections.
type Product struct {
	ID            string  `json:"productid"`
	Code          string  `json:"productCode"`
	Name          string  `json:"productName"`
	Specification string  `json:"specification"`
	Category      string  `json:"category"`
	SupplierName  string  `json:"supplierName"`
	PurchasePrice float64 `json:"purchasePrice"`
	SellingPrice  float64 `json:"sellingPrice"`
	Quantity      float64 `json:"quantity"`
	Unit          string  `json:"unit"`
	Warehouse     string  `json:"warehouse"`
	EntryDate     string  `json:"entryDate"` // YYYY-MM-DD
	EnteredBy     string  `json:"enteredBy"`
	Remarks       string  `json:"remarks,omitempty"`
	Active        bool    `json:"isActive"`
}

// NewProductID returns a fresh product identifier.
func NewProductID() string {
	return uuid.NewString()
}

// NewProductCode generates a business-level product code with the same shape
// the master sheet uses for manually entered products.
func NewProductCode() string {
	return fmt.Sprintf("PROD-%05d", 10000+rand.Intn(90000))
}
