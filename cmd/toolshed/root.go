package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/aretw0/toolshed/internal/cli"
	"github.com/aretw0/toolshed/internal/config"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "toolshed",
	Short: "Toolshed is a directory of AI tools",
	Long: `Toolshed serves a catalog of AI tools together with per-session UI state:
navigation, a comparison tray, multi-step forms, notifications, sign-in and a
simulated checkout.`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringP("config", "c", "", "Configuration file (YAML, TOML or JSON)")
	rootCmd.PersistentFlags().String("log-level", "", "Override the log level (debug, info, warn, error)")
}

// setup loads the configuration and builds the process logger.
func setup(cmd *cobra.Command) (config.Config, *slog.Logger, error) {
	path, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(path)
	if err != nil {
		return cfg, nil, err
	}
	if cmd.Flags().Changed("log-level") {
		cfg.LogLevel, _ = cmd.Flags().GetString("log-level")
	}
	logger, err := cli.NewLogger(cfg)
	if err != nil {
		return cfg, nil, err
	}
	return cfg, logger, nil
}
