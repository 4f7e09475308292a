package models

import (
	"fmt"
	"math/rand"
)

// InvoiceItem is a single product line on an invoice.
type InvoiceItem struct {
	ProductID   string  `json:"productId"`
	ProductName string  `json:"productName"`
	Quantity    float64 `json:"quantity"`
	Price       float64 `json:"price"`
	Total       float64 `json:"total"`
	Unit        string  `json:"unit,omitempty"`
}

// Invoice captures one billing transaction. Totals are computed by the
// billing service before the invoice is handed to the gateway.
type Invoice struct {
	ID              string        `json:"id,omitempty"`
	Number          string        `json:"invoiceNumber"`
	Date            string        `json:"date"` // YYYY-MM-DD
	CustomerName    string        `json:"customerName,omitempty"`
	CustomerContact string        `json:"customerContact,omitempty"`
	CustomerAddress string        `json:"customerAddress,omitempty"`
	CustomerNIF     string        `json:"customerNif,omitempty"`
	Items           []InvoiceItem `json:"items"`
	Subtotal        float64       `json:"subtotal"`
	Discount        float64       `json:"discount"`
	Tax             float64       `json:"tax"`
	Total           float64       `json:"total"`
	CreatedBy       string        `json:"createdBy,omitempty"`
	Status          string        `json:"status,omitempty"`
}

// NewInvoiceNumber generates a display invoice number.
func NewInvoiceNumber() string {
	return fmt.Sprintf("INV-%04d", 1000+rand.Intn(9000))
}

// DocumentLine is one row of a printable document.
type DocumentLine struct {
	ProductName string  `json:"productName"`
	Quantity    float64 `json:"quantity"`
	Unit        string  `json:"unit,omitempty"`
	Price       float64 `json:"price,omitempty"`
	Total       float64 `json:"total,omitempty"`
}

// PrintDocument is a render-agnostic invoice or delivery-note document.
// Actual print/PDF rendering happens outside this service.
type PrintDocument struct {
	Kind            string         `json:"kind"` // "invoice" or "delivery_note"
	Number          string         `json:"number"`
	Date            string         `json:"date"`
	CustomerName    string         `json:"customerName,omitempty"`
	CustomerContact string         `json:"customerContact,omitempty"`
	CustomerAddress string         `json:"customerAddress,omitempty"`
	Lines           []DocumentLine `json:"lines"`
	Subtotal        float64        `json:"subtotal,omitempty"`
	Discount        float64        `json:"discount,omitempty"`
	Tax             float64        `json:"tax,omitempty"`
	Total           float64        `json:"total,omitempty"`
}
