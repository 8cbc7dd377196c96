// Package domain contains the vendor persistence model.
package domain

import "time"

// Vendor is a supplier issuing invoices, identified by the key derived at ingest time.
type Vendor struct {
	VendorID     string    `gorm:"column:vendor_id;primaryKey;size:191" json:"vendor_id"`
	Name         string    `gorm:"not null" json:"name"`
	Email        *string   `json:"email,omitempty"`
	Phone        *string   `json:"phone,omitempty"`
	Address      *string   `json:"address,omitempty"`
	City         *string   `json:"city,omitempty"`
	State        *string   `json:"state,omitempty"`
	PostalCode   *string   `json:"postal_code,omitempty"`
	Country      string    `gorm:"not null" json:"country"`
	TaxID        *string   `gorm:"column:tax_id;index" json:"tax_id,omitempty"`
	PaymentTerms string    `gorm:"not null" json:"payment_terms"`
	CreatedAt    time.Time `gorm:"not null" json:"created_at"`
}

// TableName sets the database table name.
func (Vendor) TableName() string { return "vendors" }
