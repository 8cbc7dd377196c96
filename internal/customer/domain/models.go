package domain

import (
	"time"

	invoicedomain "github.com/smallbiznis/invoicelens/internal/invoice/domain"
)

// Customer is the billed party of an invoice. Deleting a customer detaches its
// invoices.
type Customer struct {
	CustomerID string                  `gorm:"column:customer_id;primaryKey;size:191" json:"customer_id"`
	Name       string                  `gorm:"not null" json:"name"`
	Email      *string                 `json:"email,omitempty"`
	Phone      *string                 `json:"phone,omitempty"`
	Address    *string                 `json:"address,omitempty"`
	City       *string                 `json:"city,omitempty"`
	State      *string                 `json:"state,omitempty"`
	PostalCode *string                 `json:"postal_code,omitempty"`
	Country    string                  `gorm:"not null" json:"country"`
	Invoices   []invoicedomain.Invoice `gorm:"foreignKey:CustomerID;references:CustomerID;constraint:OnDelete:SET NULL" json:"-"`
	CreatedAt  time.Time               `gorm:"not null" json:"created_at"`
}

// TableName sets the database table name.
func (Customer) TableName() string { return "customers" }
