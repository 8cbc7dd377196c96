package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/invoicelens/internal/clock"
	"github.com/smallbiznis/invoicelens/internal/config"
	"github.com/smallbiznis/invoicelens/internal/ingest"
	"github.com/smallbiznis/invoicelens/internal/migration"
	"github.com/smallbiznis/invoicelens/internal/observability"
	"github.com/smallbiznis/invoicelens/internal/observability/logger"
	"github.com/smallbiznis/invoicelens/pkg/db"
	"go.uber.org/fx"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "invoicelens: %v\n", err)
		stop()
		os.Exit(1)
	}
}

type appOptions struct {
	ingestConfigPath string
	withDatabase     bool
	dryRun           bool
}

func newApp(opts appOptions, extra ...fx.Option) *fx.App {
	options := []fx.Option{
		fx.WithLogger(logger.NewFxLogger),

		// Core Infrastructure
		config.Module,
		observability.Module,
		fx.Provide(RegisterSnowflake),
		clock.Module,
	}

	if path := opts.ingestConfigPath; path != "" {
		options = append(options, fx.Decorate(func(config.IngestConfig) (config.IngestConfig, error) {
			return config.LoadIngestConfigFile(path)
		}))
	}

	if opts.withDatabase {
		options = append(options, db.Module, migration.Module)
	}

	switch {
	case opts.dryRun:
		options = append(options, ingest.DryRunModule)
	case opts.withDatabase:
		options = append(options, ingest.Module)
	}

	return fx.New(append(options, extra...)...)
}

// runApp starts app, runs fn, and stops app even when fn fails.
func runApp(ctx context.Context, app *fx.App, fn func(context.Context) error) (err error) {
	if err := app.Err(); err != nil {
		return err
	}
	if err := app.Start(ctx); err != nil {
		return err
	}
	defer func() {
		stopCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), app.StopTimeout())
		defer cancel()
		if stopErr := app.Stop(stopCtx); stopErr != nil && err == nil {
			err = stopErr
		}
	}()
	return fn(ctx)
}

func RegisterSnowflake() *snowflake.Node {
	node, err := snowflake.NewNode(1)
	if err != nil {
		panic(err)
	}
	return node
}
