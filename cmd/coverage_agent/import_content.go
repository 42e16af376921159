package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"time"

	"github.com/spf13/cobra"

	"github.com/jonathan/curriculum-coverage/internal/config"
	"github.com/jonathan/curriculum-coverage/internal/fetch"
	"github.com/jonathan/curriculum-coverage/internal/ingestion"
	"github.com/jonathan/curriculum-coverage/internal/logging"
	"github.com/jonathan/curriculum-coverage/internal/schemas"
)

var importContentCmd = &cobra.Command{
	Use:   "import-content",
	Short: "Build a content inventory from a lesson index page",
	Long: `Fetch a lesson index page (or read a saved HTML file), extract the lesson titles,
and write them as a content inventory JSON document usable by analyze.

With --follow, unit pages linked from the index are imported too, so a whole
course can be inventoried from its front page.`,
	RunE: runImportContent,
}

var (
	importConfigPath string
	importURL        string
	importHTMLFile   string
	importSubject    string
	importOut        string
	importSelector   string
	importPlatform   string
	importUseBrowser bool
	importTimeout    time.Duration
	importFollow     int
	importFollowExpr string
)

func init() {
	importContentCmd.Flags().StringVar(&importConfigPath, "config", "", "Path to config.json file (use_browser and log settings)")
	importContentCmd.Flags().StringVarP(&importURL, "url", "u", "", "URL of the lesson index page")
	importContentCmd.Flags().StringVar(&importHTMLFile, "html", "", "Path to a saved HTML lesson index")
	importContentCmd.Flags().StringVarP(&importSubject, "subject", "s", "", "Subject stamped on every item")
	importContentCmd.Flags().StringVarP(&importOut, "out", "o", "", "Path to write the content inventory JSON (required)")
	importContentCmd.Flags().StringVar(&importSelector, "selector", "", "CSS selector for lesson titles (overrides platform detection)")
	importContentCmd.Flags().StringVar(&importPlatform, "platform", "", "Learning platform: moodle, canvas, khanacademy, unknown (default: detect from URL)")
	importContentCmd.Flags().BoolVar(&importUseBrowser, "use-browser", false, "Use headless browser for JavaScript-rendered pages (requires Chrome)")
	importContentCmd.Flags().DurationVar(&importTimeout, "timeout", 30*time.Second, "Fetch timeout")

	importContentCmd.Flags().IntVar(&importFollow, "follow", 0, "Also import up to N unit pages linked from the index (--url only)")
	importContentCmd.Flags().StringVar(&importFollowExpr, "follow-pattern", "", "Regular expression for unit page paths (default: the platform's unit layout)")

	_ = importContentCmd.MarkFlagRequired("out")
	importContentCmd.MarkFlagsMutuallyExclusive("url", "html")

	rootCmd.AddCommand(importContentCmd)
}

func runImportContent(cmd *cobra.Command, _ []string) error {
	if importURL == "" && importHTMLFile == "" {
		return fmt.Errorf("either --url or --html must be provided")
	}

	var cfg config.Config
	if importConfigPath != "" {
		loadedCfg, err := config.LoadConfig(importConfigPath)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		if err := loadedCfg.Validate(); err != nil {
			return err
		}
		cfg = *loadedCfg
		logging.Init(loggingConfig(cmd, cfg))
	}

	platform, err := fetch.ParsePlatform(importPlatform)
	if err != nil {
		return err
	}

	opts := ingestion.Options{
		Subject:    importSubject,
		Selector:   importSelector,
		Platform:   platform,
		UseBrowser: useBrowser(cmd, cfg),
	}

	if importFollow > 0 && importHTMLFile != "" {
		return fmt.Errorf("--follow needs --url; saved HTML files have no linked pages")
	}

	var result *ingestion.Result
	switch {
	case importHTMLFile != "":
		result, err = ingestion.ImportFile(importHTMLFile, opts)
		if err != nil {
			return fmt.Errorf("failed to import from file: %w", err)
		}
	case importFollow > 0:
		courseOpts := ingestion.CourseOptions{Options: opts, MaxPages: importFollow}
		courseOpts.Fetch = fetchOptions()
		if importFollowExpr != "" {
			courseOpts.Pattern, err = regexp.Compile(importFollowExpr)
			if err != nil {
				return fmt.Errorf("invalid --follow-pattern: %w", err)
			}
		}

		result, err = ingestion.ImportCourse(context.Background(), importURL, courseOpts)
		if err != nil {
			return fmt.Errorf("failed to import course: %w", err)
		}
	default:
		opts.Fetch = fetchOptions()
		result, err = ingestion.ImportURL(context.Background(), importURL, opts)
		if err != nil {
			return fmt.Errorf("failed to import from URL: %w", err)
		}
	}

	data, err := json.MarshalIndent(result.Document, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal content inventory: %w", err)
	}
	data = append(data, '\n')

	// The importer should never produce a document analyze would reject
	if err := schemas.ValidateDocument(schemas.KindContent, data); err != nil {
		return fmt.Errorf("imported inventory failed validation: %w", err)
	}

	if dir := filepath.Dir(importOut); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
	}
	if err := os.WriteFile(importOut, data, 0644); err != nil {
		return fmt.Errorf("failed to write content inventory: %w", err)
	}

	metaPath := importOut + ".meta.json"
	metaJSON, err := result.Metadata.ToJSON()
	if err != nil {
		return fmt.Errorf("failed to marshal metadata: %w", err)
	}
	if err := os.WriteFile(metaPath, metaJSON, 0644); err != nil {
		return fmt.Errorf("failed to write metadata: %w", err)
	}

	out := cmd.OutOrStdout()
	_, _ = fmt.Fprintf(out, "Successfully imported %d content items\n", result.Metadata.ItemCount)
	if result.Metadata.Pages > 0 {
		_, _ = fmt.Fprintf(out, "Unit pages: %d\n", result.Metadata.Pages)
	}
	_, _ = fmt.Fprintf(out, "Content inventory: %s\n", importOut)
	_, _ = fmt.Fprintf(out, "Metadata: %s\n", metaPath)
	return nil
}

func fetchOptions() *fetch.Options {
	opts := fetch.DefaultOptions()
	opts.Timeout = importTimeout
	return opts
}

// useBrowser prefers an explicit --use-browser over the config file
func useBrowser(cmd *cobra.Command, cfg config.Config) bool {
	if cmd.Flags().Changed("use-browser") {
		return importUseBrowser
	}
	return cfg.UseBrowser
}
