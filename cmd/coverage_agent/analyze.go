package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jonathan/curriculum-coverage/internal/config"
	"github.com/jonathan/curriculum-coverage/internal/logging"
	"github.com/jonathan/curriculum-coverage/internal/pipeline"
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Compute curriculum coverage for a content inventory",
	Long: `Loads a curriculum and a content inventory, matches every curriculum topic against
the content of its subject, and writes a coverage report.

Configuration can be loaded from a JSON file using --config. Command-line arguments override config file values.`,
	RunE: runAnalyze,
}

var (
	analyzeConfigPath  string
	analyzeCurriculum  string
	analyzeContent     string
	analyzeOut         string
	analyzeLabel       string
	analyzeThreshold   float64
	analyzeWorkers     int
	analyzeVerbose     bool
	analyzePersist     bool
	analyzeDatabaseURL string
)

func init() {
	// Config file flag (processed first)
	analyzeCmd.Flags().StringVar(&analyzeConfigPath, "config", "", "Path to config.json file (values can be overridden by other flags)")

	analyzeCmd.Flags().StringVarP(&analyzeCurriculum, "curriculum", "c", "", "Path to curriculum JSON")
	analyzeCmd.Flags().StringVarP(&analyzeContent, "content", "i", "", "Path to content inventory JSON")
	analyzeCmd.Flags().StringVarP(&analyzeOut, "out", "o", "", "Path to write the coverage report JSON")
	analyzeCmd.Flags().StringVar(&analyzeLabel, "label", "", "Label stored with the run (defaults to the curriculum file name)")
	analyzeCmd.Flags().Float64VarP(&analyzeThreshold, "threshold", "t", config.DefaultThreshold, "Minimum similarity for a topic to count as covered (0-1)")
	analyzeCmd.Flags().IntVarP(&analyzeWorkers, "workers", "w", 0, "Subjects matched concurrently (0 or 1 is sequential)")
	analyzeCmd.Flags().BoolVarP(&analyzeVerbose, "verbose", "v", false, "Print a summary of the inputs and the report")
	analyzeCmd.Flags().BoolVar(&analyzePersist, "persist", false, "Store the run in PostgreSQL")
	analyzeCmd.Flags().StringVar(&analyzeDatabaseURL, "db-url", "", "PostgreSQL connection URL (optional, defaults to DATABASE_URL env var)")

	rootCmd.AddCommand(analyzeCmd)
}

func runAnalyze(cmd *cobra.Command, _ []string) error {
	// Step 1: Load config file if provided
	var cfg config.Config
	if analyzeConfigPath != "" {
		loadedCfg, err := config.LoadConfig(analyzeConfigPath)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		cfg = *loadedCfg
	}

	// Step 2: Apply CLI overrides; only flags that were explicitly set win
	if cmd.Flags().Changed("curriculum") {
		cfg.Curriculum = analyzeCurriculum
	}
	if cmd.Flags().Changed("content") {
		cfg.Content = analyzeContent
	}
	if cmd.Flags().Changed("out") {
		cfg.Out = analyzeOut
	}
	if cmd.Flags().Changed("threshold") {
		threshold := analyzeThreshold
		cfg.Threshold = &threshold
	}
	if cmd.Flags().Changed("workers") {
		cfg.Workers = analyzeWorkers
	}
	if cmd.Flags().Changed("verbose") {
		cfg.Verbose = analyzeVerbose
	}
	if cmd.Flags().Changed("db-url") {
		cfg.DatabaseURL = analyzeDatabaseURL
	}

	// Step 3: Apply defaults for unset values
	cfg = cfg.MergeWithDefaults(config.Config{})

	// Step 4: Validate required fields and ranges
	if cfg.Curriculum == "" {
		return fmt.Errorf("--curriculum is required (via flag or config)")
	}
	if cfg.Content == "" {
		return fmt.Errorf("--content is required (via flag or config)")
	}
	if cfg.Out == "" {
		return fmt.Errorf("--out is required (via flag or config)")
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	if analyzeConfigPath != "" {
		logging.Init(loggingConfig(cmd, cfg))
		logging.Debug().Str("path", analyzeConfigPath).Msg("loaded config")
	}

	// Step 5: Database URL is only needed when persisting
	databaseURL := ""
	if analyzePersist {
		databaseURL = cfg.DatabaseURL
		if databaseURL == "" {
			databaseURL = os.Getenv("DATABASE_URL")
		}
		if databaseURL == "" {
			return fmt.Errorf("DATABASE_URL environment variable or --db-url flag is required with --persist")
		}
	}

	label := analyzeLabel
	if label == "" {
		label = labelFromPath(cfg.Curriculum)
	}

	out := cmd.OutOrStdout()
	result, err := pipeline.RunPipeline(context.Background(), pipeline.RunOptions{
		CurriculumPath: cfg.Curriculum,
		ContentPath:    cfg.Content,
		OutputPath:     cfg.Out,
		Label:          label,
		Threshold:      cfg.ThresholdOrDefault(),
		Workers:        cfg.Workers,
		Verbose:        cfg.Verbose,
		DatabaseURL:    databaseURL,
		Out:            out,
	})
	if err != nil {
		return fmt.Errorf("coverage analysis failed: %w", err)
	}

	overall := result.Report.Overall
	_, _ = fmt.Fprintf(out, "Coverage: %.1f%% (%d/%d topics matched)\n", overall.OverallPct, overall.TotalMatched, overall.TotalTopics)
	_, _ = fmt.Fprintf(out, "Report: %s\n", cfg.Out)
	if result.RunID != "" {
		_, _ = fmt.Fprintf(out, "Run ID: %s\n", result.RunID)
	}

	return nil
}

// labelFromPath names a run after its curriculum file: "data/year10.json" becomes "year10"
func labelFromPath(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
