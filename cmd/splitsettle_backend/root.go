package main

import (
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/SscSPs/splitsettle/internal/platform/config"
	"github.com/SscSPs/splitsettle/pkg/logging"
)

// Populated by PersistentPreRunE before any subcommand runs.
var (
	cfg    *config.Config
	logger *slog.Logger
)

var rootCmd = &cobra.Command{
	Use:   "splitsettle_backend",
	Short: "Group balances and settlement plans for shared expenses",
	Long: `splitsettle_backend derives member balances from a group's expenses and
settlements, suggests the transfers that settle the group and records the
settlements users confirm.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		loaded, err := config.LoadConfig()
		if err != nil {
			slog.Error("Failed to load config", slog.String("error", err.Error()))
			return err
		}
		cfg = loaded
		logger = logging.Setup(cfg.IsProduction, cfg.LogLevel)
		return nil
	},
}
