package main

import (
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/SscSPs/splitsettle/pkg/database"
)

func init() {
	rootCmd.AddCommand(migrateCmd)
}

var migrateCmd = &cobra.Command{
	Use:       "migrate up|down",
	Short:     "Apply or roll back the database schema",
	Long:      `Apply (up) or roll back (down) the embedded migrations of the configured storage backend.`,
	Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
	ValidArgs: []string{string(database.Up), string(database.Down)},
	RunE:      runMigrate,
}

func runMigrate(cmd *cobra.Command, args []string) error {
	dir, err := database.ParseDirection(args[0])
	if err != nil {
		return err
	}
	logger.Info("Running database migrations...", slog.String("backend", cfg.StorageBackend), slog.String("direction", string(dir)))
	if err := migrateStorage(cfg, dir); err != nil {
		logger.Error("Failed to apply migrations", slog.String("error", err.Error()))
		return err
	}
	return nil
}
