// Package main implements the attendance bot: the Discord gateway worker,
// its dashboard API and the operator commands around them.
package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/cmlabs-hris/hris-attendance-bot/internal/config"
	"github.com/cmlabs-hris/hris-attendance-bot/internal/pkg/logging"
	"github.com/spf13/cobra"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "attendance-bot",
	Short: "Discord attendance, leave and compliance bot",
	Long: `attendance-bot tracks working hours, breaks and screen sharing in a Discord
guild, handles leave requests with manager review, and serves a read-only
dashboard API.

Configuration is read from the environment and an optional .env file.`,
	Version:       logging.Version,
	SilenceUsage:  true,
	SilenceErrors: false,
}

func init() {
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(commandsCmd)
	rootCmd.AddCommand(tokenCmd)
}

// setup loads the configuration and installs the process logger.
func setup() (*config.Config, *slog.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load config: %w", err)
	}

	logger := logging.New(os.Stdout, cfg.App.LogLevel, cfg.App.Env)
	slog.SetDefault(logger)
	return cfg, logger, nil
}
