package service

import (
	"strings"

	"github.com/smallbiznis/invoicelens/internal/ingest/extract"
	"github.com/smallbiznis/invoicelens/internal/ingest/keys"
)

// resolveVendor picks the vendor key for an invoice from the vendors that were
// persisted: the record's own key, then its tax id, then the first persisted vendor.
// With no persisted vendor at all it falls back to the placeholder key and reports so.
func (r *run) resolveVendor(rec extract.Record) (string, bool) {
	id := vendorIdentity(rec)
	if key := keys.VendorKey(id); key != "" && r.persistedVendors.Has(key) {
		return key, false
	}
	if taxID := strings.TrimSpace(id.TaxID); taxID != "" && r.persistedVendors.Has(taxID) {
		return taxID, false
	}
	if first, ok := r.persistedVendors.First(); ok {
		return first, false
	}
	return r.cfg.PlaceholderVendorKey, true
}

// resolveCustomer returns nil unless the record's customer was persisted.
func (r *run) resolveCustomer(rec extract.Record) *string {
	key := keys.CustomerKey(customerIdentity(rec))
	if key == "" || !r.persistedCustomers.Has(key) {
		return nil
	}
	return &key
}
