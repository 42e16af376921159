package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jonathan/curriculum-coverage/internal/config"
	"github.com/jonathan/curriculum-coverage/internal/logging"
	"github.com/jonathan/curriculum-coverage/internal/server"
)

var (
	servePort       int
	serveConfigPath string
	serveThreshold  float64
	serveWorkers    int
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the REST API server",
	Long: `Start an HTTP server that exposes coverage computation, single-topic matching and
stored reports. Reports are stored when DATABASE_URL is set; bearer tokens are
required on POST endpoints when JWT_SECRET is set.`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 8080, "Port to listen on")
	serveCmd.Flags().StringVar(&serveConfigPath, "config", "", "Path to config.json file")
	serveCmd.Flags().Float64Var(&serveThreshold, "threshold", config.DefaultThreshold, "Default threshold when a request sets none")
	serveCmd.Flags().IntVar(&serveWorkers, "workers", 0, "Subjects matched concurrently per request")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	var cfg config.Config
	if serveConfigPath != "" {
		loadedCfg, err := config.LoadConfig(serveConfigPath)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		cfg = *loadedCfg
	}

	if cmd.Flags().Changed("port") || cfg.Port == 0 {
		cfg.Port = servePort
	}
	if cmd.Flags().Changed("threshold") {
		threshold := serveThreshold
		cfg.Threshold = &threshold
	}
	if cmd.Flags().Changed("workers") {
		cfg.Workers = serveWorkers
	}
	if cfg.DatabaseURL == "" {
		cfg.DatabaseURL = os.Getenv("DATABASE_URL")
	}

	cfg = cfg.MergeWithDefaults(config.Config{})
	if err := cfg.Validate(); err != nil {
		return err
	}
	logging.Init(loggingConfig(cmd, cfg))

	srv, err := server.New(server.Config{
		Port:        cfg.Port,
		DatabaseURL: cfg.DatabaseURL,
		Threshold:   cfg.Threshold,
		Workers:     cfg.Workers,
	})
	if err != nil {
		return fmt.Errorf("failed to create server: %w", err)
	}

	return srv.Start()
}
