package main

import (
	"fmt"

	"github.com/cmlabs-hris/hris-attendance-bot/internal/pkg/database"
	"github.com/spf13/cobra"
)

var listMigrations bool

func init() {
	migrateCmd.Flags().BoolVar(&listMigrations, "list", false, "List the embedded migrations without applying them")
}

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply pending database migrations",
	Long: `Apply the embedded SQL migrations that have not run yet.

Examples:
  # Apply pending migrations
  attendance-bot migrate

  # Show the embedded migrations
  attendance-bot migrate --list`,
	RunE: runMigrate,
}

func runMigrate(cmd *cobra.Command, _ []string) error {
	if listMigrations {
		names, err := database.MigrationNames()
		if err != nil {
			return err
		}
		for _, name := range names {
			fmt.Fprintln(cmd.OutOrStdout(), name)
		}
		return nil
	}

	cfg, logger, err := setup()
	if err != nil {
		return err
	}

	db, err := database.NewPostgreSQLDB(cfg.DatabaseURL())
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()

	applied, err := db.Migrate(cmd.Context())
	if err != nil {
		return fmt.Errorf("failed to migrate: %w", err)
	}

	if len(applied) == 0 {
		logger.Info("Database is up to date")
		return nil
	}
	for _, name := range applied {
		logger.Info("Applied migration", "name", name)
	}
	return nil
}
