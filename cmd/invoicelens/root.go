package main

import (
	"github.com/spf13/cobra"
)

var version = "0.1.0"

var rootFlags struct {
	ingestConfig string
}

var rootCmd = &cobra.Command{
	Use:   "invoicelens",
	Short: "Load heterogeneous invoice exports into the invoicelens database",
	Long: `invoicelens normalizes exported invoice documents (JSON, YAML or XLSX) into
vendors, customers, invoices, line items and payments.

Database and observability settings come from the environment (or a .env file).
Ingest defaults come from ingest.yml in /etc/invoicelens or the working directory,
overridable with INVOICELENS_INGEST_* variables.`,
	Version:       version,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&rootFlags.ingestConfig, "ingest-config", "", "path to an ingest.yml overriding the default search locations")
}
