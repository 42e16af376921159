// Package main provides the coverage_agent command line tool.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/jonathan/curriculum-coverage/internal/config"
	"github.com/jonathan/curriculum-coverage/internal/logging"
)

var (
	logLevel  string
	logFormat string
)

var rootCmd = &cobra.Command{
	Use:   "coverage_agent",
	Short: "Curriculum coverage analysis",
	Long: `coverage_agent measures how much of a curriculum is covered by a content inventory.
Topics are matched to lesson titles by token-set similarity against a threshold.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, _ []string) {
		logging.Init(loggingConfig(cmd, config.Config{}))
	},
}

// loggingConfig layers a config file's log settings over LOG_LEVEL/LOG_FORMAT.
// --log-level and --log-format win over both when given.
func loggingConfig(cmd *cobra.Command, fileCfg config.Config) logging.Config {
	cfg := logging.ConfigFromEnv()
	if fileCfg.LogLevel != "" {
		cfg.Level = fileCfg.LogLevel
	}
	if fileCfg.LogFormat != "" {
		cfg.Format = fileCfg.LogFormat
	}
	if cmd.Flags().Changed("log-level") {
		cfg.Level = logLevel
	}
	if cmd.Flags().Changed("log-format") {
		cfg.Format = logFormat
	}
	return cfg
}

func init() {
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "Log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "json", "Log format (json, console)")
}

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
