package main

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/smallbiznis/invoicelens/internal/ingest/domain"
	"github.com/smallbiznis/invoicelens/internal/ingest/service"
	"github.com/smallbiznis/invoicelens/internal/migration"
	"github.com/spf13/cobra"
	"go.uber.org/fx"
)

var loadFlags struct {
	reset   bool
	dryRun  bool
	migrate bool
}

var loadCmd = &cobra.Command{
	Use:   "load <file>",
	Short: "Replace the invoice dataset with the records in file",
	Long: `Load reads every record in file and rebuilds the vendor, customer, invoice,
line item and payment tables from it.

The existing dataset is deleted first, so --reset is required. With --dry-run the
records are extracted and resolved without touching the database.`,
	Example: `  # Rebuild the dataset from an export
  invoicelens load Analytics_Test_Data.json --reset

  # Check what an export would produce
  invoicelens load export.xlsx --dry-run

  # Create the schema first on a fresh database
  invoicelens load export.json --reset --migrate`,
	Args: cobra.ExactArgs(1),
	RunE: runLoad,
}

func init() {
	rootCmd.AddCommand(loadCmd)

	loadCmd.Flags().BoolVar(&loadFlags.reset, "reset", false, "confirm deletion of the existing dataset")
	loadCmd.Flags().BoolVar(&loadFlags.dryRun, "dry-run", false, "extract and resolve without writing to the database")
	loadCmd.Flags().BoolVar(&loadFlags.migrate, "migrate", false, "apply the schema before loading")
}

func runLoad(cmd *cobra.Command, args []string) error {
	if loadFlags.dryRun && loadFlags.migrate {
		return errors.New("--migrate cannot be combined with --dry-run")
	}

	var (
		loader   *service.Loader
		migrator *migration.Migrator
	)
	populate := []any{&loader}
	if loadFlags.migrate {
		populate = append(populate, &migrator)
	}

	app := newApp(appOptions{
		ingestConfigPath: rootFlags.ingestConfig,
		withDatabase:     !loadFlags.dryRun,
		dryRun:           loadFlags.dryRun,
	}, fx.Populate(populate...))

	return runApp(cmd.Context(), app, func(ctx context.Context) error {
		if migrator != nil {
			if err := migrator.Up(ctx); err != nil {
				return err
			}
		}

		summary, err := loader.Load(ctx, args[0], domain.Options{
			ConfirmReset: loadFlags.reset,
			DryRun:       loadFlags.dryRun,
		})
		printSummary(cmd.OutOrStdout(), summary)
		return err
	})
}

func printSummary(w io.Writer, s domain.Summary) {
	mode := ""
	if s.DryRun {
		mode = " (dry run)"
	}
	fmt.Fprintf(w, "run %s%s: %s in %s\n", s.RunID, mode, s.Stage, s.Duration.Round(1e6))
	fmt.Fprintf(w, "  records:    %d processed, %d skipped of %d\n", s.Processed(), s.Skipped, s.Records)
	fmt.Fprintf(w, "  vendors:    %d (%d failed)\n", s.Vendors, s.VendorFailures)
	fmt.Fprintf(w, "  customers:  %d (%d failed)\n", s.Customers, s.CustomerFailures)
	fmt.Fprintf(w, "  invoices:   %d (%d on placeholder vendor)\n", s.Invoices, s.PlaceholderInvoices)
	fmt.Fprintf(w, "  line items: %d (%d failed)\n", s.LineItems, s.LineItemFailures)
	fmt.Fprintf(w, "  payments:   %d (%d failed)\n", s.Payments, s.PaymentFailures)
	if s.RegistrationFailures > 0 {
		fmt.Fprintf(w, "  unreadable records: %d\n", s.RegistrationFailures)
	}
}
