package domain

import (
	"context"
	"time"

	customerdomain "github.com/smallbiznis/invoicelens/internal/customer/domain"
	"github.com/smallbiznis/invoicelens/internal/ingest/extract"
	invoicedomain "github.com/smallbiznis/invoicelens/internal/invoice/domain"
	vendordomain "github.com/smallbiznis/invoicelens/internal/vendors/domain"
)

// Entity names a persisted row set.
type Entity string

const (
	EntityRecord   Entity = "record"
	EntityVendor   Entity = "vendor"
	EntityCustomer Entity = "customer"
	EntityInvoice  Entity = "invoice"
	EntityLineItem Entity = "line_item"
	EntityPayment  Entity = "payment"
)

// ClearOrder deletes children before their parents.
var ClearOrder = []Entity{
	EntityPayment,
	EntityLineItem,
	EntityInvoice,
	EntityCustomer,
	EntityVendor,
}

// Store persists ingest output one row at a time.
type Store interface {
	Clear(ctx context.Context, entity Entity) (int64, error)
	CreateVendor(ctx context.Context, vendor *vendordomain.Vendor) error
	CreateCustomer(ctx context.Context, customer *customerdomain.Customer) error
	CreateInvoice(ctx context.Context, invoice *invoicedomain.Invoice) error
	CreateLineItem(ctx context.Context, item *invoicedomain.LineItem) error
	CreatePayment(ctx context.Context, payment *invoicedomain.Payment) error
}

// Options controls a single run.
type Options struct {
	// ConfirmReset allows the run to delete the existing dataset.
	ConfirmReset bool
	// DryRun extracts and resolves everything but persists nothing.
	DryRun bool
}

// Summary is the outcome of one run.
type Summary struct {
	RunID  string `json:"run_id"`
	Stage  Stage  `json:"stage"`
	DryRun bool   `json:"dry_run"`

	Records   int `json:"records"`
	Vendors   int `json:"vendors"`
	Customers int `json:"customers"`
	Invoices  int `json:"invoices"`
	LineItems int `json:"line_items"`
	Payments  int `json:"payments"`

	Skipped              int `json:"skipped"`
	RegistrationFailures int `json:"registration_failures"`
	VendorFailures       int `json:"vendor_failures"`
	CustomerFailures     int `json:"customer_failures"`
	LineItemFailures     int `json:"line_item_failures"`
	PaymentFailures      int `json:"payment_failures"`
	PlaceholderInvoices  int `json:"placeholder_invoices"`

	StartedAt time.Time     `json:"started_at"`
	Duration  time.Duration `json:"duration"`
	Stages    []Stage       `json:"stages"`
	Failures  []RecordError `json:"failures,omitempty"`
}

// Processed is the number of records whose invoice was persisted.
func (s Summary) Processed() int {
	return s.Invoices
}

// Service loads a batch of source records into the store.
type Service interface {
	Run(ctx context.Context, records []extract.Record, opts Options) (Summary, error)
	Load(ctx context.Context, path string, opts Options) (Summary, error)
}
