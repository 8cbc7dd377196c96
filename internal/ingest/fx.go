package ingest

import (
	"github.com/smallbiznis/invoicelens/internal/ingest/domain"
	"github.com/smallbiznis/invoicelens/internal/ingest/service"
	"github.com/smallbiznis/invoicelens/internal/ingest/store"
	"go.uber.org/fx"
)

var Module = fx.Module("ingest",
	fx.Provide(
		fx.Annotate(store.NewGormStore, fx.As(new(domain.Store))),
		service.New,
	),
)

// DryRunModule wires the loader without a database.
var DryRunModule = fx.Module("ingest.dryrun",
	fx.Provide(
		fx.Annotate(store.NewDiscardStore, fx.As(new(domain.Store))),
		service.New,
	),
)
