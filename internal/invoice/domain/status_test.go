package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeStatus(t *testing.T) {
	cases := []struct {
		raw  string
		want InvoiceStatus
	}{
		{"", InvoiceStatusPending},
		{"   ", InvoiceStatusPending},
		{"processed", InvoiceStatusPaid},
		{" Completed ", InvoiceStatusPaid},
		{"success", InvoiceStatusPaid},
		{"open", InvoiceStatusPending},
		{"unpaid", InvoiceStatusPending},
		{"void", InvoiceStatusCancelled},
		{"deleted", InvoiceStatusCancelled},
		{"approved", InvoiceStatusApproved},
		{"OVERDUE", InvoiceStatusOverdue},
		{"draft", InvoiceStatusDraft},
		{"something else", InvoiceStatusPending},
	}

	for _, tc := range cases {
		t.Run(tc.raw, func(t *testing.T) {
			assert.Equal(t, tc.want, NormalizeStatus(tc.raw))
		})
	}
}

func TestNormalizeStatusIsClosed(t *testing.T) {
	for _, raw := range []string{"", "x", "PAID", "¿qué?", "12345", "pending\n"} {
		assert.True(t, NormalizeStatus(raw).Valid(), raw)
	}
}

func TestStatusNormalizerExtraSynonyms(t *testing.T) {
	n, err := NewStatusNormalizer(map[string]string{"settled": "paid", "on_hold": "Draft"})
	require.NoError(t, err)

	assert.Equal(t, InvoiceStatusPaid, n.Normalize("SETTLED"))
	assert.Equal(t, InvoiceStatusDraft, n.Normalize("on_hold"))
	assert.Equal(t, InvoiceStatusCancelled, n.Normalize("void"))
	assert.Equal(t, InvoiceStatusPending, n.Normalize("unknown"))
}

func TestStatusNormalizerRejectsUnknownTarget(t *testing.T) {
	_, err := NewStatusNormalizer(map[string]string{"settled": "closed"})
	assert.Error(t, err)
}

func TestRecomputeAmountDue(t *testing.T) {
	inv := Invoice{TotalAmount: 1100, AmountPaid: 400, AmountDue: 9999}
	inv.RecomputeAmountDue()
	assert.Equal(t, float64(700), inv.AmountDue)
}
