package service

import (
	"testing"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/invoicelens/internal/clock"
	"github.com/smallbiznis/invoicelens/internal/config"
	"github.com/smallbiznis/invoicelens/internal/ingest/domain"
	"github.com/smallbiznis/invoicelens/internal/ingest/keys"
	invoicedomain "github.com/smallbiznis/invoicelens/internal/invoice/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const fullRecord = `{
	"_id": {"$oid": "65a1"},
	"vendor": {"name": "Acme Co", "country": "DE", "paymentTerms": "Net 14", "email": "ap@acme.test"},
	"customer": {"name": "Globex", "country": "FR"},
	"status": "processed",
	"currency": "EUR",
	"subtotal": 90,
	"tax": 10,
	"category": "hardware",
	"lineItems": [{"description": "Widget", "quantity": 3, "unitPrice": 2}],
	"payments": [{"method": "CARD", "amount": 100, "reference": "R-9"}]
}`

func newTestRun(t *testing.T) *run {
	t.Helper()
	node, err := snowflake.NewNode(1)
	require.NoError(t, err)
	statuses, err := invoicedomain.NewStatusNormalizer(nil)
	require.NoError(t, err)
	return &run{
		cfg:             config.DefaultIngestConfig(),
		clock:           clock.NewFakeClock(loadTime),
		now:             loadTime,
		genID:           node,
		statuses:        statuses,
		reservedNumbers: map[string]struct{}{},
		summary:         domain.Summary{RunID: "run-1"},
	}
}

func TestIdentitiesReadSourceStrings(t *testing.T) {
	rec := records(t, fullRecord)[0]

	assert.Equal(t, keys.Identity{Name: "Acme Co"}, vendorIdentity(rec))
	assert.Equal(t, keys.Identity{Name: "Globex"}, customerIdentity(rec))
	assert.Equal(t, "65a1", sourceID(rec))

	wrapped := records(t, `{"extractedData": {"llmData": {"vendor": {"value": {"vendorName": {"value": "Initech"}, "vendorTaxId": {"value": "TX-1"}}}}}}`)[0]
	assert.Equal(t, keys.Identity{Name: "Initech", TaxID: "TX-1"}, vendorIdentity(wrapped))
}

func TestBuildEntitiesUseSourceValues(t *testing.T) {
	r := newTestRun(t)
	rec := records(t, fullRecord)[0]

	v := r.buildVendor(rec)
	require.NotNil(t, v)
	assert.Equal(t, "acme-co", v.VendorID)
	assert.Equal(t, "DE", v.Country)
	assert.Equal(t, "Net 14", v.PaymentTerms)
	require.NotNil(t, v.Email)
	assert.Equal(t, "ap@acme.test", *v.Email)

	c := r.buildCustomer(rec)
	require.NotNil(t, c)
	assert.Equal(t, "globex", c.CustomerID)
	assert.Equal(t, "FR", c.Country)

	assert.Nil(t, r.buildVendor(records(t, `{"invoiceNumber": "X"}`)[0]))
}

func TestBuildEntitiesFallBackToDefaults(t *testing.T) {
	r := newTestRun(t)
	rec := records(t, `{"vendor": {"name": "Bare"}, "customer": {"name": "Plain"}}`)[0]

	v := r.buildVendor(rec)
	require.NotNil(t, v)
	assert.Equal(t, "USA", v.Country)
	assert.Equal(t, "Net 30", v.PaymentTerms)
	assert.Equal(t, "USA", r.buildCustomer(rec).Country)
}

func TestBuildInvoiceUsesSourceValues(t *testing.T) {
	r := newTestRun(t)
	rec := records(t, fullRecord)[0]
	customerID := "globex"

	inv := r.buildInvoice(0, rec, "acme-co", &customerID)
	assert.Equal(t, invoicedomain.InvoiceStatusPaid, inv.Status)
	assert.Equal(t, "EUR", inv.Currency)
	assert.Equal(t, float64(100), inv.TotalAmount)
	assert.Equal(t, float64(100), inv.AmountDue)
	require.NotNil(t, inv.Category)
	assert.Equal(t, "hardware", *inv.Category)
	assert.Equal(t, "65a1", inv.InvoiceNumber)
	assert.Equal(t, "65a1", inv.Metadata["source_id"])
	assert.Equal(t, "run-1", inv.Metadata["run_id"])

	item := r.buildLineItem(inv.ID, invoiceRules.LineItems.List(rec)[0])
	assert.Equal(t, "Widget", item.Description)
	assert.Equal(t, float64(6), item.Amount)

	payment := r.buildPayment(inv.ID, invoiceRules.Payments.List(rec)[0])
	assert.Equal(t, "CARD", payment.PaymentMethod)
	require.NotNil(t, payment.ReferenceNumber)
	assert.Equal(t, "R-9", *payment.ReferenceNumber)
}

func TestBuildInvoiceDefaults(t *testing.T) {
	r := newTestRun(t)
	rec := records(t, `{"status": "mystery", "currency": "  "}`)[0]

	inv := r.buildInvoice(3, rec, "VND-1", nil)
	assert.Equal(t, invoicedomain.InvoiceStatusPending, inv.Status)
	assert.Equal(t, "USD", inv.Currency)
	assert.Equal(t, "INV-1", inv.InvoiceNumber)
	assert.True(t, loadTime.Equal(inv.InvoiceDate))
	assert.Equal(t, 3, inv.Metadata["source_index"])

	item := r.buildLineItem(inv.ID, map[string]any{})
	assert.Equal(t, "Line Item", item.Description)
	assert.Equal(t, float64(1), item.Quantity)
	assert.Equal(t, "BANK_TRANSFER", r.buildPayment(inv.ID, map[string]any{}).PaymentMethod)
}
