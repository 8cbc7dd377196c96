// Package domain contains persistence models for invoices and their children.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/datatypes"
)

// Invoice is one billed document. It owns its line items and payments.
type Invoice struct {
	ID            snowflake.ID      `gorm:"primaryKey" json:"id"`
	InvoiceNumber string            `gorm:"size:191;not null;uniqueIndex" json:"invoice_number"`
	VendorID      string            `gorm:"column:vendor_id;size:191;not null;index" json:"vendor_id"`
	CustomerID    *string           `gorm:"column:customer_id;size:191;index" json:"customer_id,omitempty"`
	InvoiceDate   time.Time         `gorm:"not null" json:"invoice_date"`
	DueDate       *time.Time        `json:"due_date,omitempty"`
	Status        InvoiceStatus     `gorm:"size:32;not null" json:"status"`
	Currency      string            `gorm:"size:16;not null" json:"currency"`
	Subtotal      float64           `gorm:"not null" json:"subtotal"`
	TaxAmount     float64           `gorm:"not null" json:"tax_amount"`
	TotalAmount   float64           `gorm:"not null" json:"total_amount"`
	AmountPaid    float64           `gorm:"not null" json:"amount_paid"`
	AmountDue     float64           `gorm:"not null" json:"amount_due"`
	Category      *string           `json:"category,omitempty"`
	Description   *string           `json:"description,omitempty"`
	DocumentURL   *string           `gorm:"column:document_url" json:"document_url,omitempty"`
	Metadata      datatypes.JSONMap `json:"metadata,omitempty"`
	LineItems     []LineItem        `gorm:"foreignKey:InvoiceID;constraint:OnDelete:CASCADE" json:"line_items,omitempty"`
	Payments      []Payment         `gorm:"foreignKey:InvoiceID;constraint:OnDelete:CASCADE" json:"payments,omitempty"`
	CreatedAt     time.Time         `gorm:"not null" json:"created_at"`
}

// TableName sets the database table name.
func (Invoice) TableName() string { return "invoices" }

// RecomputeAmountDue sets AmountDue from the total and the amount already paid.
func (i *Invoice) RecomputeAmountDue() {
	i.AmountDue = i.TotalAmount - i.AmountPaid
}

// LineItem is a billed line on an invoice.
type LineItem struct {
	ID          snowflake.ID `gorm:"primaryKey" json:"id"`
	InvoiceID   snowflake.ID `gorm:"not null;index" json:"invoice_id"`
	Description string       `gorm:"not null" json:"description"`
	Quantity    float64      `gorm:"not null" json:"quantity"`
	UnitPrice   float64      `gorm:"not null" json:"unit_price"`
	Amount      float64      `gorm:"not null" json:"amount"`
	Category    *string      `json:"category,omitempty"`
	TaxRate     float64      `gorm:"not null" json:"tax_rate"`
	TaxAmount   float64      `gorm:"not null" json:"tax_amount"`
}

// TableName sets the database table name.
func (LineItem) TableName() string { return "line_items" }

// Payment records money received against an invoice.
type Payment struct {
	ID              snowflake.ID `gorm:"primaryKey" json:"id"`
	InvoiceID       snowflake.ID `gorm:"not null;index" json:"invoice_id"`
	PaymentDate     time.Time    `gorm:"not null" json:"payment_date"`
	Amount          float64      `gorm:"not null" json:"amount"`
	PaymentMethod   string       `gorm:"size:64;not null" json:"payment_method"`
	ReferenceNumber *string      `json:"reference_number,omitempty"`
	Notes           *string      `json:"notes,omitempty"`
}

// TableName sets the database table name.
func (Payment) TableName() string { return "payments" }
