// Package main provides the dailyarxiv CLI entry point.
package main

import (
	"fmt"
	"os"

	"github.com/pevans/dailyarxiv/config"
	"github.com/pevans/dailyarxiv/logging"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// Version is set at build time via ldflags
var Version = "dev"

var (
	cfg    *config.Config
	logger = zap.NewNop()

	logLevel  string
	logFormat string
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "dailyarxiv",
	Short: "Collect the day's new arXiv submissions for a set of categories",
	Long: `dailyarxiv fetches the arXiv "new submissions" listing for each target
category, keeps the papers that belong to the targets, removes duplicates
across categories and emits them in a stable order.

Environment Variables:
  CATEGORIES              Comma-separated categories (default: cs.CV)
  DAILYARXIV_CONFIG       Config file (default: ~/.dailyarxiv/config.yaml)
  DAILYARXIV_MODE         html or rss (default: html)
  DAILYARXIV_OUTPUT       JSON lines output file (default: stdout)
  DAILYARXIV_ARCHIVE_DSN  SQLite archive path (default: disabled)
  DAILYARXIV_LOG_LEVEL    debug, info, warn or error (default: info)`,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: setup,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level (overrides config)")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "", "Log format: console or json")
	rootCmd.Version = Version
}

// setup loads configuration and builds the logger before any command runs.
func setup(cmd *cobra.Command, args []string) error {
	loaded, err := config.Load()
	if err != nil {
		return err
	}
	cfg = loaded

	if logLevel != "" {
		cfg.Log.Level = logLevel
	}
	if logFormat != "" {
		cfg.Log.Format = logFormat
	}

	l, err := logging.New(os.Stderr, cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		return err
	}
	logger = l

	return nil
}
