package main

import (
	"context"

	"github.com/smallbiznis/invoicelens/internal/migration"
	"github.com/spf13/cobra"
	"go.uber.org/fx"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or update the invoice tables",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		var migrator *migration.Migrator
		app := newApp(appOptions{
			ingestConfigPath: rootFlags.ingestConfig,
			withDatabase:     true,
		}, fx.Populate(&migrator))

		return runApp(cmd.Context(), app, func(ctx context.Context) error {
			return migrator.Up(ctx)
		})
	},
}

func init() {
	rootCmd.AddCommand(migrateCmd)
}
