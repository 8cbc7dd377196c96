package service

import (
	"context"
	"errors"
	"testing"

	customerdomain "github.com/smallbiznis/invoicelens/internal/customer/domain"
	"github.com/smallbiznis/invoicelens/internal/ingest/domain"
	invoicedomain "github.com/smallbiznis/invoicelens/internal/invoice/domain"
	vendordomain "github.com/smallbiznis/invoicelens/internal/vendors/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockStore struct {
	mock.Mock
}

func (m *mockStore) Clear(ctx context.Context, entity domain.Entity) (int64, error) {
	args := m.Called(ctx, entity)
	return args.Get(0).(int64), args.Error(1)
}

func (m *mockStore) CreateVendor(ctx context.Context, vendor *vendordomain.Vendor) error {
	return m.Called(ctx, vendor).Error(0)
}

func (m *mockStore) CreateCustomer(ctx context.Context, customer *customerdomain.Customer) error {
	return m.Called(ctx, customer).Error(0)
}

func (m *mockStore) CreateInvoice(ctx context.Context, invoice *invoicedomain.Invoice) error {
	return m.Called(ctx, invoice).Error(0)
}

func (m *mockStore) CreateLineItem(ctx context.Context, item *invoicedomain.LineItem) error {
	return m.Called(ctx, item).Error(0)
}

func (m *mockStore) CreatePayment(ctx context.Context, payment *invoicedomain.Payment) error {
	return m.Called(ctx, payment).Error(0)
}

func invoiceNumbered(number string) any {
	return mock.MatchedBy(func(inv *invoicedomain.Invoice) bool { return inv.InvoiceNumber == number })
}

func expectClear(st *mockStore) {
	for _, entity := range domain.ClearOrder {
		st.On("Clear", mock.Anything, entity).Return(int64(0), nil).Once()
	}
}

func TestClearRunsChildrenFirst(t *testing.T) {
	st := new(mockStore)
	var order []domain.Entity
	st.On("Clear", mock.Anything, mock.Anything).Return(int64(0), nil).Run(func(args mock.Arguments) {
		order = append(order, args.Get(1).(domain.Entity))
	})

	_, err := newTestLoader(t, st, nil).Run(context.Background(), nil, confirmed)
	require.NoError(t, err)
	assert.Equal(t, []domain.Entity{
		domain.EntityPayment,
		domain.EntityLineItem,
		domain.EntityInvoice,
		domain.EntityCustomer,
		domain.EntityVendor,
	}, order)
}

func TestPanickingRecordIsIsolated(t *testing.T) {
	st := new(mockStore)
	expectClear(st)
	st.On("CreateVendor", mock.Anything, mock.Anything).Return(nil)
	st.On("CreateInvoice", mock.Anything, invoiceNumbered("P-2")).Run(func(mock.Arguments) {
		panic("driver exploded")
	})
	st.On("CreateInvoice", mock.Anything, mock.Anything).Return(nil)

	summary, err := newTestLoader(t, st, nil).Run(context.Background(), records(t, `[
		{"vendor": {"name": "A"}, "invoiceNumber": "P-1"},
		{"vendor": {"name": "A"}, "invoiceNumber": "P-2"},
		{"vendor": {"name": "A"}, "invoiceNumber": "P-3"}
	]`), confirmed)
	require.NoError(t, err)

	assert.Equal(t, domain.StageDone, summary.Stage)
	assert.Equal(t, 2, summary.Invoices)
	assert.Equal(t, 1, summary.Skipped)
	require.Len(t, summary.Failures, 1)
	assert.Equal(t, 1, summary.Failures[0].Index)
	assert.True(t, errors.Is(summary.Failures[0], domain.ErrRecordPanicked))
}

func TestFailedVendorIsExcludedFromResolution(t *testing.T) {
	st := new(mockStore)
	expectClear(st)
	st.On("CreateVendor", mock.Anything, mock.MatchedBy(func(v *vendordomain.Vendor) bool { return v.VendorID == "broken" })).
		Return(errors.New("insert failed"))
	st.On("CreateVendor", mock.Anything, mock.Anything).Return(nil)

	var vendorIDs []string
	st.On("CreateInvoice", mock.Anything, mock.Anything).Return(nil).Run(func(args mock.Arguments) {
		vendorIDs = append(vendorIDs, args.Get(1).(*invoicedomain.Invoice).VendorID)
	})

	summary, err := newTestLoader(t, st, nil).Run(context.Background(), records(t, `[
		{"vendor": {"name": "Broken"}, "invoiceNumber": "F-1"},
		{"vendor": {"name": "Working"}, "invoiceNumber": "F-2"}
	]`), confirmed)
	require.NoError(t, err)

	assert.Equal(t, 1, summary.Vendors)
	assert.Equal(t, 1, summary.VendorFailures)
	assert.Equal(t, 2, summary.Invoices)
	assert.Equal(t, []string{"working", "working"}, vendorIDs)
}

func TestClearingFailureFailsRun(t *testing.T) {
	st := new(mockStore)
	st.On("Clear", mock.Anything, domain.EntityPayment).Return(int64(0), errors.New("connection refused"))

	summary, err := newTestLoader(t, st, nil).Run(context.Background(), records(t, `[{"vendor": {"name": "A"}}]`), confirmed)
	require.Error(t, err)
	assert.Equal(t, domain.StageFailed, summary.Stage)
	st.AssertNotCalled(t, "CreateVendor", mock.Anything, mock.Anything)
}

func TestSubEntityFailuresDoNotFailInvoice(t *testing.T) {
	st := new(mockStore)
	expectClear(st)
	st.On("CreateVendor", mock.Anything, mock.Anything).Return(nil)
	st.On("CreateInvoice", mock.Anything, mock.Anything).Return(nil)
	st.On("CreateLineItem", mock.Anything, mock.Anything).Return(errors.New("line item rejected"))
	st.On("CreatePayment", mock.Anything, mock.Anything).Return(nil)

	summary, err := newTestLoader(t, st, nil).Run(context.Background(), records(t, `[
		{"vendor": {"name": "A"}, "lineItems": [{"amount": 1}, {"amount": 2}], "payments": [{"amount": 3}]}
	]`), confirmed)
	require.NoError(t, err)

	assert.Equal(t, 1, summary.Invoices)
	assert.Equal(t, 0, summary.Skipped)
	assert.Equal(t, 0, summary.LineItems)
	assert.Equal(t, 2, summary.LineItemFailures)
	assert.Equal(t, 1, summary.Payments)
	st.AssertNumberOfCalls(t, "CreateLineItem", 2)
}
