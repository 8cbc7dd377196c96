package service

import (
	"strconv"
	"time"

	"github.com/bwmarrin/snowflake"
	customerdomain "github.com/smallbiznis/invoicelens/internal/customer/domain"
	"github.com/smallbiznis/invoicelens/internal/ingest/extract"
	"github.com/smallbiznis/invoicelens/internal/ingest/keys"
	invoicedomain "github.com/smallbiznis/invoicelens/internal/invoice/domain"
	vendordomain "github.com/smallbiznis/invoicelens/internal/vendors/domain"
	"gorm.io/datatypes"
)

func vendorIdentity(rec extract.Record) keys.Identity {
	return keys.Identity{
		ID:    vendorRules.ID.StringOr(rec, ""),
		TaxID: vendorRules.TaxID.StringOr(rec, ""),
		Name:  vendorRules.Name.StringOr(rec, ""),
	}
}

func customerIdentity(rec extract.Record) keys.Identity {
	return keys.Identity{
		ID:   customerRules.ID.StringOr(rec, ""),
		Name: customerRules.Name.StringOr(rec, ""),
	}
}

// buildVendor returns nil when the record names no vendor.
func (r *run) buildVendor(rec extract.Record) *vendordomain.Vendor {
	id := vendorIdentity(rec)
	if id.Name == "" {
		return nil
	}
	key := keys.VendorKey(id)
	if key == "" {
		return nil
	}
	return &vendordomain.Vendor{
		VendorID:     key,
		Name:         id.Name,
		Email:        vendorRules.Email.String(rec, nil),
		Phone:        vendorRules.Phone.String(rec, nil),
		Address:      vendorRules.Address.String(rec, nil),
		City:         vendorRules.City.String(rec, nil),
		State:        vendorRules.State.String(rec, nil),
		PostalCode:   vendorRules.PostalCode.String(rec, nil),
		Country:      vendorRules.Country.StringOr(rec, r.cfg.DefaultCountry),
		TaxID:        optional(id.TaxID),
		PaymentTerms: vendorRules.PaymentTerms.StringOr(rec, r.cfg.DefaultPaymentTerms),
		CreatedAt:    r.now,
	}
}

// buildCustomer returns nil when the record names no customer.
func (r *run) buildCustomer(rec extract.Record) *customerdomain.Customer {
	id := customerIdentity(rec)
	if id.Name == "" {
		return nil
	}
	key := keys.CustomerKey(id)
	if key == "" {
		return nil
	}
	return &customerdomain.Customer{
		CustomerID: key,
		Name:       id.Name,
		Email:      customerRules.Email.String(rec, nil),
		Phone:      customerRules.Phone.String(rec, nil),
		Address:    customerRules.Address.String(rec, nil),
		City:       customerRules.City.String(rec, nil),
		State:      customerRules.State.String(rec, nil),
		PostalCode: customerRules.PostalCode.String(rec, nil),
		Country:    customerRules.Country.StringOr(rec, r.cfg.DefaultCountry),
		CreatedAt:  r.now,
	}
}

func (r *run) buildInvoice(index int, rec extract.Record, vendorID string, customerID *string) *invoicedomain.Invoice {
	number := invoiceRules.Number.String(rec, nil)
	if number == nil {
		synthesized := r.nextInvoiceNumber()
		number = &synthesized
	}

	invoiceDate := r.now
	if d := invoiceRules.Date.Date(rec); d != nil {
		invoiceDate = *d
	}

	subtotal := invoiceRules.Subtotal.Number(rec, 0)
	tax := invoiceRules.Tax.Number(rec, 0)

	inv := &invoicedomain.Invoice{
		ID:            r.genID.Generate(),
		InvoiceNumber: *number,
		VendorID:      vendorID,
		CustomerID:    customerID,
		InvoiceDate:   invoiceDate,
		DueDate:       invoiceRules.DueDate.Date(rec),
		Status:        r.statuses.Normalize(invoiceRules.Status.StringOr(rec, "")),
		Currency:      invoiceRules.Currency.StringOr(rec, r.cfg.DefaultCurrency),
		Subtotal:      subtotal,
		TaxAmount:     tax,
		TotalAmount:   invoiceRules.Total.Number(rec, subtotal+tax),
		AmountPaid:    invoiceRules.AmountPaid.Number(rec, 0),
		Category:      invoiceRules.Category.String(rec, nil),
		Description:   invoiceRules.Description.String(rec, nil),
		DocumentURL:   invoiceRules.DocumentURL.String(rec, nil),
		Metadata:      r.provenance(index, invoiceRules.SourceID.String(rec, nil)),
		CreatedAt:     r.now,
	}
	inv.RecomputeAmountDue()
	return inv
}

func (r *run) buildLineItem(invoiceID snowflake.ID, item extract.Record) *invoicedomain.LineItem {
	quantity := lineItemRules.Quantity.Number(item, 1)
	unitPrice := lineItemRules.UnitPrice.Number(item, 0)
	return &invoicedomain.LineItem{
		ID:          r.genID.Generate(),
		InvoiceID:   invoiceID,
		Description: lineItemRules.Description.StringOr(item, r.cfg.DefaultLineDescription),
		Quantity:    quantity,
		UnitPrice:   unitPrice,
		Amount:      lineItemRules.Amount.Number(item, quantity*unitPrice),
		Category:    lineItemRules.Category.String(item, nil),
		TaxRate:     lineItemRules.TaxRate.Number(item, 0),
		TaxAmount:   lineItemRules.TaxAmount.Number(item, 0),
	}
}

func (r *run) buildPayment(invoiceID snowflake.ID, payment extract.Record) *invoicedomain.Payment {
	paidAt := r.now
	if d := paymentRules.Date.Date(payment); d != nil {
		paidAt = *d
	}
	return &invoicedomain.Payment{
		ID:              r.genID.Generate(),
		InvoiceID:       invoiceID,
		PaymentDate:     paidAt,
		Amount:          paymentRules.Amount.Number(payment, 0),
		PaymentMethod:   paymentRules.Method.StringOr(payment, r.cfg.DefaultPaymentMethod),
		ReferenceNumber: paymentRules.Reference.String(payment, nil),
		Notes:           paymentRules.Notes.String(payment, nil),
	}
}

// nextInvoiceNumber synthesizes PREFIX-n, skipping numbers that appear explicitly in
// the batch.
func (r *run) nextInvoiceNumber() string {
	for {
		r.synthesized++
		candidate := r.cfg.InvoiceNumberPrefix + strconv.Itoa(r.synthesized)
		if _, taken := r.reservedNumbers[candidate]; !taken {
			return candidate
		}
	}
}

func (r *run) provenance(index int, sourceID *string) datatypes.JSONMap {
	meta := datatypes.JSONMap{
		"source_index": index,
		"run_id":       r.summary.RunID,
		"loaded_at":    r.now.Format(time.RFC3339),
	}
	if sourceID != nil {
		meta["source_id"] = *sourceID
	}
	return meta
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
