package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/smallbiznis/invoicelens/internal/ingest/domain"
	"github.com/smallbiznis/invoicelens/internal/ingest/extract"
	"github.com/smallbiznis/invoicelens/pkg/db"
	"go.uber.org/zap"
)

// guard runs fn and turns a panic into ErrRecordPanicked so one record cannot abort
// the batch.
func guard(fn func() error) (err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("%w: %v", domain.ErrRecordPanicked, rec)
		}
	}()
	return fn()
}

func sourceID(rec extract.Record) string {
	return invoiceRules.SourceID.StringOr(rec, "")
}

func (r *run) recordFailure(index int, id string, stage domain.Stage, entity domain.Entity, err error) {
	r.summary.Failures = append(r.summary.Failures, domain.RecordError{
		Index:    index,
		SourceID: id,
		Stage:    stage,
		Entity:   entity,
		Err:      err,
	})
	r.metrics.IncFailure(string(stage))

	r.log.Warn("record failed",
		zap.Int("index", index),
		zap.String("source_id", id),
		zap.String("stage", string(stage)),
		zap.String("entity", string(entity)),
		zap.String("reason", failureReason(err)),
		zap.Error(err),
	)
}

func failureReason(err error) string {
	switch {
	case errors.Is(err, domain.ErrRecordPanicked):
		return "panic"
	case errors.Is(err, domain.ErrNotAnObject):
		return "malformed"
	case errors.Is(err, domain.ErrDuplicateInvoice), db.IsDuplicateKeyErr(err):
		return "duplicate"
	case db.IsForeignKeyErr(err):
		return "foreign_key"
	default:
		return "error"
	}
}

func (r *run) logSummary(err error) {
	s := r.summary
	fields := []zap.Field{
		zap.String("stage", string(s.Stage)),
		zap.Bool("dry_run", s.DryRun),
		zap.Int("records", s.Records),
		zap.Int("processed", s.Processed()),
		zap.Int("skipped", s.Skipped),
		zap.Int("vendors", s.Vendors),
		zap.Int("customers", s.Customers),
		zap.Int("invoices", s.Invoices),
		zap.Int("line_items", s.LineItems),
		zap.Int("payments", s.Payments),
		zap.Int("registration_failures", s.RegistrationFailures),
		zap.Int("vendor_failures", s.VendorFailures),
		zap.Int("customer_failures", s.CustomerFailures),
		zap.Int("line_item_failures", s.LineItemFailures),
		zap.Int("payment_failures", s.PaymentFailures),
		zap.Int("placeholder_invoices", s.PlaceholderInvoices),
		zap.Duration("duration", s.Duration),
	}

	switch {
	case err == nil:
		r.log.Info("ingest completed", fields...)
	case s.Stage == domain.StageFailed:
		r.log.Error("ingest failed", append(fields, zap.Error(err))...)
	default:
		r.log.Warn("ingest interrupted", append(fields, zap.Error(err))...)
	}
}

func (l *Loader) push(ctx context.Context, r *run) {
	if l.pusher == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), pushTimeout)
	defer cancel()
	if err := l.pusher.Push(ctx, r.metrics.Registry()); err != nil {
		r.log.Warn("push ingest metrics failed", zap.Error(err))
	}
}
