package domain

import (
	"fmt"
	"strings"
)

// InvoiceStatus is the fixed invoice status vocabulary.
type InvoiceStatus string

const (
	InvoiceStatusDraft     InvoiceStatus = "DRAFT"
	InvoiceStatusPending   InvoiceStatus = "PENDING"
	InvoiceStatusApproved  InvoiceStatus = "APPROVED"
	InvoiceStatusPaid      InvoiceStatus = "PAID"
	InvoiceStatusOverdue   InvoiceStatus = "OVERDUE"
	InvoiceStatusCancelled InvoiceStatus = "CANCELLED"
)

// Statuses lists the vocabulary in lifecycle order.
var Statuses = []InvoiceStatus{
	InvoiceStatusDraft,
	InvoiceStatusPending,
	InvoiceStatusApproved,
	InvoiceStatusPaid,
	InvoiceStatusOverdue,
	InvoiceStatusCancelled,
}

var builtinSynonyms = map[string]InvoiceStatus{
	"PROCESSED": InvoiceStatusPaid,
	"COMPLETE":  InvoiceStatusPaid,
	"COMPLETED": InvoiceStatusPaid,
	"SUCCESS":   InvoiceStatusPaid,
	"OPEN":      InvoiceStatusPending,
	"UNPAID":    InvoiceStatusPending,
	"DUE":       InvoiceStatusPending,
	"VOID":      InvoiceStatusCancelled,
	"DELETED":   InvoiceStatusCancelled,
}

// Valid reports whether s belongs to the vocabulary.
func (s InvoiceStatus) Valid() bool {
	for _, known := range Statuses {
		if s == known {
			return true
		}
	}
	return false
}

// NormalizeStatus maps a free-text source status onto the vocabulary. Absent and
// unknown values become PENDING.
func NormalizeStatus(raw string) InvoiceStatus {
	return defaultNormalizer.Normalize(raw)
}

var defaultNormalizer = &StatusNormalizer{synonyms: builtinSynonyms}

// StatusNormalizer is NormalizeStatus extended with extra synonyms.
type StatusNormalizer struct {
	synonyms map[string]InvoiceStatus
}

// NewStatusNormalizer layers extra synonyms over the built-in ones. Every target must
// already be part of the vocabulary.
func NewStatusNormalizer(extra map[string]string) (*StatusNormalizer, error) {
	synonyms := make(map[string]InvoiceStatus, len(builtinSynonyms)+len(extra))
	for k, v := range builtinSynonyms {
		synonyms[k] = v
	}
	for from, to := range extra {
		target := InvoiceStatus(strings.ToUpper(strings.TrimSpace(to)))
		if !target.Valid() {
			return nil, fmt.Errorf("status synonym %q maps to unknown status %q", from, to)
		}
		key := strings.ToUpper(strings.TrimSpace(from))
		if key == "" {
			continue
		}
		synonyms[key] = target
	}
	return &StatusNormalizer{synonyms: synonyms}, nil
}

func (n *StatusNormalizer) Normalize(raw string) InvoiceStatus {
	s := InvoiceStatus(strings.ToUpper(strings.TrimSpace(raw)))
	if s == "" {
		return InvoiceStatusPending
	}
	if s.Valid() {
		return s
	}
	if mapped, ok := n.synonyms[string(s)]; ok {
		return mapped
	}
	return InvoiceStatusPending
}
