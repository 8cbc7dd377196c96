// Package store persists ingest output.
package store

import (
	"context"
	"fmt"

	customerdomain "github.com/smallbiznis/invoicelens/internal/customer/domain"
	"github.com/smallbiznis/invoicelens/internal/ingest/domain"
	invoicedomain "github.com/smallbiznis/invoicelens/internal/invoice/domain"
	vendordomain "github.com/smallbiznis/invoicelens/internal/vendors/domain"
	"github.com/smallbiznis/invoicelens/pkg/repository"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type Params struct {
	fx.In

	DB  *gorm.DB
	Log *zap.Logger
}

// GormStore writes each row with its own INSERT so a failing row never takes its
// neighbours down with it.
type GormStore struct {
	db  *gorm.DB
	log *zap.Logger

	vendors   repository.Repository[vendordomain.Vendor]
	customers repository.Repository[customerdomain.Customer]
	invoices  repository.Repository[invoicedomain.Invoice]
	lineItems repository.Repository[invoicedomain.LineItem]
	payments  repository.Repository[invoicedomain.Payment]
}

func NewGormStore(p Params) *GormStore {
	return &GormStore{
		db:  p.DB,
		log: p.Log.Named("ingest.store"),

		vendors:   repository.ProvideStore[vendordomain.Vendor](p.DB),
		customers: repository.ProvideStore[customerdomain.Customer](p.DB),
		invoices:  repository.ProvideStore[invoicedomain.Invoice](p.DB.Omit(clause.Associations)),
		lineItems: repository.ProvideStore[invoicedomain.LineItem](p.DB),
		payments:  repository.ProvideStore[invoicedomain.Payment](p.DB),
	}
}

var _ domain.Store = (*GormStore)(nil)

func (s *GormStore) Clear(ctx context.Context, entity domain.Entity) (int64, error) {
	var (
		n   int64
		err error
	)
	switch entity {
	case domain.EntityPayment:
		n, err = s.payments.DeleteAll(ctx)
	case domain.EntityLineItem:
		n, err = s.lineItems.DeleteAll(ctx)
	case domain.EntityInvoice:
		n, err = s.invoices.DeleteAll(ctx)
	case domain.EntityCustomer:
		n, err = s.customers.DeleteAll(ctx)
	case domain.EntityVendor:
		n, err = s.vendors.DeleteAll(ctx)
	default:
		return 0, fmt.Errorf("clear: unknown entity %q", entity)
	}
	if err != nil {
		return 0, fmt.Errorf("clear %s: %w", entity, err)
	}
	s.log.Debug("cleared rows", zap.String("entity", string(entity)), zap.Int64("rows", n))
	return n, nil
}

func (s *GormStore) CreateVendor(ctx context.Context, vendor *vendordomain.Vendor) error {
	if err := s.vendors.Create(ctx, vendor); err != nil {
		return fmt.Errorf("create vendor %s: %w", vendor.VendorID, err)
	}
	return nil
}

func (s *GormStore) CreateCustomer(ctx context.Context, customer *customerdomain.Customer) error {
	if err := s.customers.Create(ctx, customer); err != nil {
		return fmt.Errorf("create customer %s: %w", customer.CustomerID, err)
	}
	return nil
}

func (s *GormStore) CreateInvoice(ctx context.Context, invoice *invoicedomain.Invoice) error {
	if err := s.invoices.Create(ctx, invoice); err != nil {
		return fmt.Errorf("create invoice %s: %w", invoice.InvoiceNumber, err)
	}
	return nil
}

func (s *GormStore) CreateLineItem(ctx context.Context, item *invoicedomain.LineItem) error {
	if err := s.lineItems.Create(ctx, item); err != nil {
		return fmt.Errorf("create line item for invoice %d: %w", item.InvoiceID, err)
	}
	return nil
}

func (s *GormStore) CreatePayment(ctx context.Context, payment *invoicedomain.Payment) error {
	if err := s.payments.Create(ctx, payment); err != nil {
		return fmt.Errorf("create payment for invoice %d: %w", payment.InvoiceID, err)
	}
	return nil
}
