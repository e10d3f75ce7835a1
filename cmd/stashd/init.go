package main

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/stash-sh/stash/config"
	"github.com/stash-sh/stash/database"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize the item database",
	Long: `Connect to the configured database and create the item table
if it does not exist. This is useful when:
  - Preparing a database before the first serve
  - Verifying connection details without starting the server`,
	RunE: runInit,
}

func init() {
	rootCmd.AddCommand(initCmd)
}

func runInit(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	cfg, err := config.FromContext(ctx)
	if err != nil {
		return err
	}

	repo, closeDB, err := database.Connect(ctx, database.Config{
		Type:     cfg.Database.Type,
		DSN:      cfg.Database.DSN,
		Table:    cfg.Database.Table,
		Attempts: cfg.Database.Attempts,
		Wait:     cfg.Database.WaitDuration(),
	})
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}
	defer closeDB()

	count, err := repo.Count(ctx)
	if err != nil {
		return fmt.Errorf("probe item table: %w", err)
	}

	slog.Info("initialization complete", "type", cfg.Database.Type, "table", cfg.Database.Table, "items", count)
	return nil
}
