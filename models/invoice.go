package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// InvoiceStatus of an issued invoice.
type InvoiceStatus string

const (
	InvoiceStatusDraft     InvoiceStatus = "draft"
	InvoiceStatusIssued    InvoiceStatus = "issued"
	InvoiceStatusPaid      InvoiceStatus = "paid"
	InvoiceStatusCancelled InvoiceStatus = "cancelled"
)

// Invoice is created exactly once per assignment when the driver accepts.
// Customer and seller details are snapshots taken at issuance, decoupled from
// the live user and driver rows. The financial fields must equal the order's
// financial fields at the moment of issuance; an invoice is never regenerated
// automatically afterwards.
type Invoice struct {
	ID                int64         `db:"id" json:"id"`
	OrderAssignmentID int64         `db:"order_assignment_id" json:"order_assignment_id"`
	OrderID           int64         `db:"order_id" json:"order_id"`
	DriverID          int64         `db:"driver_id" json:"driver_id"`
	InvoiceNumber     string        `db:"invoice_number" json:"invoice_number"`
	Status            InvoiceStatus `db:"status" json:"status"`

	CustomerName    string `db:"customer_name" json:"customer_name"`
	CustomerEmail   string `db:"customer_email" json:"customer_email"`
	CustomerPhone   string `db:"customer_phone" json:"customer_phone,omitempty"`
	CustomerAddress string `db:"customer_address" json:"customer_address"`

	SellerName    string `db:"seller_name" json:"seller_name"`
	SellerEmail   string `db:"seller_email" json:"seller_email"`
	SellerPhone   string `db:"seller_phone" json:"seller_phone,omitempty"`
	SellerAddress string `db:"seller_address" json:"seller_address,omitempty"`

	Subtotal     decimal.Decimal `db:"subtotal" json:"subtotal"`
	ShippingCost decimal.Decimal `db:"shipping_cost" json:"shipping_cost"`
	Tax          decimal.Decimal `db:"tax" json:"tax"`
	Total        decimal.Decimal `db:"total" json:"total"`

	IssuedAt time.Time  `db:"issued_at" json:"issued_at"`
	DueDate  string     `db:"due_date" json:"due_date,omitempty"` // YYYY-MM-DD
	PaidAt   *time.Time `db:"paid_at" json:"paid_at,omitempty"`

	// PDFPath is empty until rendering succeeded; a failed render leaves the
	// invoice valid and is retried only by an explicit regenerate action.
	PDFPath string `db:"pdf_path" json:"pdf_path,omitempty"`
}
