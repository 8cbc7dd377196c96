package store

import (
	"context"
	"fmt"

	customerdomain "github.com/smallbiznis/invoicelens/internal/customer/domain"
	"github.com/smallbiznis/invoicelens/internal/ingest/domain"
	invoicedomain "github.com/smallbiznis/invoicelens/internal/invoice/domain"
	vendordomain "github.com/smallbiznis/invoicelens/internal/vendors/domain"
)

// DiscardStore accepts every row without writing it. It enforces the same primary key
// and invoice number uniqueness as the database so dry runs report the same failures.
type DiscardStore struct {
	vendors        map[string]struct{}
	customers      map[string]struct{}
	invoiceNumbers map[string]struct{}
}

func NewDiscardStore() *DiscardStore {
	return &DiscardStore{
		vendors:        map[string]struct{}{},
		customers:      map[string]struct{}{},
		invoiceNumbers: map[string]struct{}{},
	}
}

var _ domain.Store = (*DiscardStore)(nil)

func (s *DiscardStore) Clear(ctx context.Context, entity domain.Entity) (int64, error) {
	switch entity {
	case domain.EntityVendor:
		s.vendors = map[string]struct{}{}
	case domain.EntityCustomer:
		s.customers = map[string]struct{}{}
	case domain.EntityInvoice:
		s.invoiceNumbers = map[string]struct{}{}
	}
	return 0, ctx.Err()
}

func (s *DiscardStore) CreateVendor(ctx context.Context, vendor *vendordomain.Vendor) error {
	if _, ok := s.vendors[vendor.VendorID]; ok {
		return fmt.Errorf("create vendor %s: duplicate key", vendor.VendorID)
	}
	s.vendors[vendor.VendorID] = struct{}{}
	return ctx.Err()
}

func (s *DiscardStore) CreateCustomer(ctx context.Context, customer *customerdomain.Customer) error {
	if _, ok := s.customers[customer.CustomerID]; ok {
		return fmt.Errorf("create customer %s: duplicate key", customer.CustomerID)
	}
	s.customers[customer.CustomerID] = struct{}{}
	return ctx.Err()
}

func (s *DiscardStore) CreateInvoice(ctx context.Context, invoice *invoicedomain.Invoice) error {
	if _, ok := s.invoiceNumbers[invoice.InvoiceNumber]; ok {
		return fmt.Errorf("create invoice %s: %w", invoice.InvoiceNumber, domain.ErrDuplicateInvoice)
	}
	s.invoiceNumbers[invoice.InvoiceNumber] = struct{}{}
	return ctx.Err()
}

func (s *DiscardStore) CreateLineItem(ctx context.Context, item *invoicedomain.LineItem) error {
	return ctx.Err()
}

func (s *DiscardStore) CreatePayment(ctx context.Context, payment *invoicedomain.Payment) error {
	return ctx.Err()
}
