package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/oklog/ulid/v2"
	"github.com/smallbiznis/invoicelens/internal/clock"
	"github.com/smallbiznis/invoicelens/internal/config"
	customerdomain "github.com/smallbiznis/invoicelens/internal/customer/domain"
	"github.com/smallbiznis/invoicelens/internal/ingest/domain"
	"github.com/smallbiznis/invoicelens/internal/ingest/extract"
	"github.com/smallbiznis/invoicelens/internal/ingest/registry"
	"github.com/smallbiznis/invoicelens/internal/ingest/source"
	"github.com/smallbiznis/invoicelens/internal/ingest/store"
	invoicedomain "github.com/smallbiznis/invoicelens/internal/invoice/domain"
	"github.com/smallbiznis/invoicelens/internal/observability/logger"
	"github.com/smallbiznis/invoicelens/internal/observability/metrics"
	"github.com/smallbiznis/invoicelens/internal/observability/tracing"
	vendordomain "github.com/smallbiznis/invoicelens/internal/vendors/domain"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

const pushTimeout = 10 * time.Second

type Params struct {
	fx.In

	Log           *zap.Logger
	Store         domain.Store
	Clock         clock.Clock
	GenID         *snowflake.Node
	Config        config.IngestConfig
	MetricsConfig metrics.Config
	Pusher        metrics.Pusher `optional:"true"`
}

// Loader runs the two-pass ingest: entities first, then invoices with their line items
// and payments.
type Loader struct {
	log           *zap.Logger
	store         domain.Store
	clock         clock.Clock
	genID         *snowflake.Node
	cfg           config.IngestConfig
	statuses      *invoicedomain.StatusNormalizer
	metricsConfig metrics.Config
	pusher        metrics.Pusher
}

func New(p Params) (*Loader, error) {
	statuses, err := invoicedomain.NewStatusNormalizer(p.Config.StatusSynonyms)
	if err != nil {
		return nil, fmt.Errorf("ingest status synonyms: %w", err)
	}
	return &Loader{
		log:           p.Log.Named("ingest.loader"),
		store:         p.Store,
		clock:         p.Clock,
		genID:         p.GenID,
		cfg:           p.Config,
		statuses:      statuses,
		metricsConfig: p.MetricsConfig,
		pusher:        p.Pusher,
	}, nil
}

var _ domain.Service = (*Loader)(nil)

// Load reads the batch file at path and runs it. A missing or unparseable file fails
// the run before anything is cleared.
func (l *Loader) Load(ctx context.Context, path string, opts domain.Options) (domain.Summary, error) {
	return l.execute(ctx, opts, func() ([]extract.Record, error) {
		return source.ReadFile(path)
	})
}

// Run loads records that are already in memory.
func (l *Loader) Run(ctx context.Context, records []extract.Record, opts domain.Options) (domain.Summary, error) {
	return l.execute(ctx, opts, func() ([]extract.Record, error) {
		return records, nil
	})
}

type entry[T any] struct {
	value    T
	index    int
	sourceID string
}

// run is the state of one execution. It is never shared between executions.
type run struct {
	cfg      config.IngestConfig
	clock    clock.Clock
	now      time.Time
	genID    *snowflake.Node
	statuses *invoicedomain.StatusNormalizer
	store    domain.Store
	log      *zap.Logger
	metrics  *metrics.IngestMetrics
	machine  *domain.StageMachine
	summary  domain.Summary

	vendors            *registry.Registry[entry[*vendordomain.Vendor]]
	customers          *registry.Registry[entry[*customerdomain.Customer]]
	persistedVendors   *registry.Registry[struct{}]
	persistedCustomers *registry.Registry[struct{}]
	reservedNumbers    map[string]struct{}
	synthesized        int
}

func (l *Loader) execute(ctx context.Context, opts domain.Options, fetch func() ([]extract.Record, error)) (domain.Summary, error) {
	started := l.clock.Now()
	runID := ulid.MustNew(ulid.Timestamp(started), ulid.DefaultEntropy()).String()

	ctx = logger.ContextWithRunID(ctx, runID)
	ctx, span := tracing.Tracer().Start(ctx, "ingest.run", trace.WithAttributes(
		attribute.String("ingest.run_id", runID),
		attribute.Bool("ingest.dry_run", opts.DryRun),
	))
	defer span.End()

	st := l.store
	if opts.DryRun {
		st = store.NewDiscardStore()
	}

	r := &run{
		cfg:                l.cfg,
		clock:              l.clock,
		now:                started,
		genID:              l.genID,
		statuses:           l.statuses,
		store:              st,
		log:                logger.WithContext(ctx, l.log),
		metrics:            metrics.NewIngestMetrics(l.metricsConfig),
		machine:            domain.NewStageMachine(),
		vendors:            registry.New[entry[*vendordomain.Vendor]](),
		customers:          registry.New[entry[*customerdomain.Customer]](),
		persistedVendors:   registry.New[struct{}](),
		persistedCustomers: registry.New[struct{}](),
		reservedNumbers:    map[string]struct{}{},
	}
	r.summary = domain.Summary{
		RunID:     runID,
		Stage:     domain.StageIdle,
		DryRun:    opts.DryRun,
		StartedAt: started,
	}

	err := r.execute(ctx, opts, fetch)

	r.summary.Stage = r.machine.Current()
	r.summary.Stages = r.machine.History()
	r.summary.Duration = l.clock.Now().Sub(started)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	r.logSummary(err)
	l.push(ctx, r)

	return r.summary, err
}

func (r *run) execute(ctx context.Context, opts domain.Options, fetch func() ([]extract.Record, error)) error {
	records, err := fetch()
	if err != nil {
		return r.failRun(err)
	}
	r.summary.Records = len(records)

	if !opts.ConfirmReset && !opts.DryRun {
		return r.failRun(domain.ErrResetNotConfirmed)
	}

	if err := r.stage(ctx, domain.StageClearing, r.clear); err != nil {
		return r.failRun(err)
	}

	if err := r.stage(ctx, domain.StageRegisteringEntities, func(ctx context.Context) error {
		return r.registerEntities(ctx, records)
	}); err != nil {
		return err
	}

	if err := r.stage(ctx, domain.StagePersistingEntities, r.persistEntities); err != nil {
		return err
	}

	if err := r.stage(ctx, domain.StagePersistingInvoices, func(ctx context.Context) error {
		return r.persistInvoices(ctx, records)
	}); err != nil {
		return err
	}

	return r.machine.Transition(domain.StageDone)
}

// stage enters next and runs fn inside its own span.
func (r *run) stage(ctx context.Context, next domain.Stage, fn func(context.Context) error) error {
	if err := r.machine.Transition(next); err != nil {
		return err
	}

	ctx, span := tracing.Tracer().Start(ctx, "ingest."+string(next))
	defer span.End()

	began := r.clock.Now()
	r.log.Info("stage started", zap.String("stage", string(next)))
	err := fn(ctx)
	r.metrics.ObserveStage(string(next), r.clock.Now().Sub(began))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	return err
}

func (r *run) failRun(err error) error {
	if terr := r.machine.Transition(domain.StageFailed); terr != nil {
		return errors.Join(err, terr)
	}
	return err
}

func (r *run) clear(ctx context.Context) error {
	for _, entity := range domain.ClearOrder {
		n, err := r.store.Clear(ctx, entity)
		if err != nil {
			return fmt.Errorf("clear %s: %w", entity, err)
		}
		r.log.Debug("cleared", zap.String("entity", string(entity)), zap.Int64("rows", n))
	}
	return nil
}

// registerEntities is pass 1: collect distinct vendors and customers and reserve every
// explicit invoice number.
func (r *run) registerEntities(ctx context.Context, records []extract.Record) error {
	for i, rec := range records {
		if err := ctx.Err(); err != nil {
			return err
		}
		err := guard(func() error {
			if _, ok := rec.(map[string]any); !ok {
				return domain.ErrNotAnObject
			}
			if v := r.buildVendor(rec); v != nil {
				r.vendors.Register(v.VendorID, entry[*vendordomain.Vendor]{value: v, index: i, sourceID: sourceID(rec)})
			}
			if c := r.buildCustomer(rec); c != nil {
				r.customers.Register(c.CustomerID, entry[*customerdomain.Customer]{value: c, index: i, sourceID: sourceID(rec)})
			}
			if number := invoiceRules.Number.String(rec, nil); number != nil {
				r.reservedNumbers[*number] = struct{}{}
			}
			return nil
		})
		if err != nil {
			r.summary.RegistrationFailures++
			r.recordFailure(i, sourceID(rec), domain.StageRegisteringEntities, domain.EntityRecord, err)
		}
	}

	r.log.Info("entities registered",
		zap.Int("vendors", r.vendors.Len()),
		zap.Int("customers", r.customers.Len()),
		zap.Int("reserved_invoice_numbers", len(r.reservedNumbers)),
	)
	return nil
}

// persistEntities writes vendors then customers in registration order. Rows that fail
// are left out of pass 2 resolution.
func (r *run) persistEntities(ctx context.Context) error {
	for _, key := range r.vendors.Keys() {
		if err := ctx.Err(); err != nil {
			return err
		}
		e, _ := r.vendors.Get(key)
		err := guard(func() error { return r.store.CreateVendor(ctx, e.value) })
		if err != nil {
			r.summary.VendorFailures++
			r.recordFailure(e.index, e.sourceID, domain.StagePersistingEntities, domain.EntityVendor, err)
			continue
		}
		r.persistedVendors.Register(key, struct{}{})
		r.summary.Vendors++
		r.metrics.AddRows(string(domain.EntityVendor), 1)
	}

	for _, key := range r.customers.Keys() {
		if err := ctx.Err(); err != nil {
			return err
		}
		e, _ := r.customers.Get(key)
		err := guard(func() error { return r.store.CreateCustomer(ctx, e.value) })
		if err != nil {
			r.summary.CustomerFailures++
			r.recordFailure(e.index, e.sourceID, domain.StagePersistingEntities, domain.EntityCustomer, err)
			continue
		}
		r.persistedCustomers.Register(key, struct{}{})
		r.summary.Customers++
		r.metrics.AddRows(string(domain.EntityCustomer), 1)
	}

	r.log.Info("entities persisted",
		zap.Int("vendors", r.summary.Vendors),
		zap.Int("customers", r.summary.Customers),
		zap.Int("vendor_failures", r.summary.VendorFailures),
		zap.Int("customer_failures", r.summary.CustomerFailures),
	)
	return nil
}

// persistInvoices is pass 2.
func (r *run) persistInvoices(ctx context.Context, records []extract.Record) error {
	progressEvery := r.cfg.ProgressEvery
	for i, rec := range records {
		if err := ctx.Err(); err != nil {
			return err
		}

		var inv *invoicedomain.Invoice
		err := guard(func() error {
			if _, ok := rec.(map[string]any); !ok {
				return domain.ErrNotAnObject
			}
			vendorID, placeholder := r.resolveVendor(rec)
			inv = r.buildInvoice(i, rec, vendorID, r.resolveCustomer(rec))
			if err := r.store.CreateInvoice(ctx, inv); err != nil {
				return err
			}
			if placeholder {
				r.summary.PlaceholderInvoices++
				r.metrics.IncPlaceholderVendor()
				r.log.Warn("invoice attached to placeholder vendor",
					zap.Int("index", i),
					zap.String("invoice_number", inv.InvoiceNumber),
					zap.String("vendor_id", vendorID),
				)
			}
			return nil
		})
		if err != nil {
			r.summary.Skipped++
			r.recordFailure(i, sourceID(rec), domain.StagePersistingInvoices, domain.EntityInvoice, err)
			continue
		}
		r.summary.Invoices++
		r.metrics.AddRows(string(domain.EntityInvoice), 1)

		r.persistChildren(ctx, i, rec, inv)

		if progressEvery > 0 && r.summary.Invoices%progressEvery == 0 {
			r.log.Info("progress", zap.Int("invoices", r.summary.Invoices), zap.Int("records", len(records)))
		}
	}
	return nil
}

func (r *run) persistChildren(ctx context.Context, index int, rec extract.Record, inv *invoicedomain.Invoice) {
	id := sourceID(rec)

	for _, raw := range invoiceRules.LineItems.List(rec) {
		err := guard(func() error {
			if _, ok := raw.(map[string]any); !ok {
				return domain.ErrNotAnObject
			}
			return r.store.CreateLineItem(ctx, r.buildLineItem(inv.ID, raw))
		})
		if err != nil {
			r.summary.LineItemFailures++
			r.recordFailure(index, id, domain.StagePersistingInvoices, domain.EntityLineItem, err)
			continue
		}
		r.summary.LineItems++
		r.metrics.AddRows(string(domain.EntityLineItem), 1)
	}

	for _, raw := range invoiceRules.Payments.List(rec) {
		err := guard(func() error {
			if _, ok := raw.(map[string]any); !ok {
				return domain.ErrNotAnObject
			}
			return r.store.CreatePayment(ctx, r.buildPayment(inv.ID, raw))
		})
		if err != nil {
			r.summary.PaymentFailures++
			r.recordFailure(index, id, domain.StagePersistingInvoices, domain.EntityPayment, err)
			continue
		}
		r.summary.Payments++
		r.metrics.AddRows(string(domain.EntityPayment), 1)
	}
}
