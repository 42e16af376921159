// Package pipeline orchestrates a coverage run: load and validate the input
// documents, match, write the report, and optionally persist it.
package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/jonathan/curriculum-coverage/internal/curriculum"
	"github.com/jonathan/curriculum-coverage/internal/db"
	"github.com/jonathan/curriculum-coverage/internal/logging"
	"github.com/jonathan/curriculum-coverage/internal/matching"
	"github.com/jonathan/curriculum-coverage/internal/metrics"
	"github.com/jonathan/curriculum-coverage/internal/observability"
	"github.com/jonathan/curriculum-coverage/internal/schemas"
	"github.com/jonathan/curriculum-coverage/internal/types"
)

// Step names reported through OnProgress
const (
	StepLoad    = "load"
	StepMatch   = "match"
	StepWrite   = "write"
	StepPersist = "persist"
)

// ProgressEvent represents a progress update during pipeline execution
type ProgressEvent struct {
	Step    string `json:"step"`
	Message string `json:"message"`
	RunID   string `json:"run_id,omitempty"`
}

// ProgressCallback is called when pipeline progress occurs
type ProgressCallback func(event ProgressEvent)

// RunStore persists finished reports. *db.DB satisfies it.
type RunStore interface {
	SaveRun(ctx context.Context, input db.RunInput) (*db.CoverageRun, error)
}

// RunOptions holds configuration for running the pipeline
type RunOptions struct {
	CurriculumPath string
	ContentPath    string
	OutputPath     string // empty skips writing
	Label          string
	Threshold      float64
	Workers        int
	Verbose        bool

	// Store takes precedence over DatabaseURL when both are set
	Store       RunStore
	DatabaseURL string

	// Out receives verbose output; defaults to os.Stdout
	Out        io.Writer
	OnProgress ProgressCallback
}

// Result is what a finished run produced
type Result struct {
	Report *types.CoverageReport
	RunID  string
}

// Inputs holds the two parsed input documents
type Inputs struct {
	Curriculum *types.CurriculumDocument
	Content    *types.ContentDocument
}

func emitProgress(opts *RunOptions, step, message, runID string) {
	if opts.OnProgress != nil {
		opts.OnProgress(ProgressEvent{Step: step, Message: message, RunID: runID})
	}
}

// Analyze runs the matcher and records metrics under source. It is the single
// entry point used by both the CLI pipeline and the HTTP API.
func Analyze(curriculumMap types.CurriculumMap, content []types.ContentItem, threshold float64, workers int, source string) *types.CoverageReport {
	start := time.Now()
	report := matching.ComputeCoverage(curriculumMap, content,
		matching.WithThreshold(threshold),
		matching.WithWorkers(workers),
	)
	metrics.RecordCoverageRun(source, time.Since(start),
		report.Overall.TotalTopics, report.Overall.TotalMatched, report.Overall.OverallPct)

	logging.Debug().
		Str("source", source).
		Int("subjects", len(report.PerSubject)).
		Int("total_topics", report.Overall.TotalTopics).
		Int("total_matched", report.Overall.TotalMatched).
		Dur("elapsed", time.Since(start)).
		Msg("coverage computed")

	return report
}

// LoadInputs reads, schema-validates and parses both documents concurrently.
// Any failure is fatal.
func LoadInputs(ctx context.Context, curriculumPath, contentPath string) (*Inputs, error) {
	g, _ := errgroup.WithContext(ctx)
	var inputs Inputs

	g.Go(func() error {
		data, err := readValidated(schemas.KindCurriculum, curriculumPath)
		if err != nil {
			return err
		}
		doc, err := curriculum.ParseCurriculum(data)
		if err != nil {
			return fmt.Errorf("failed to parse curriculum %s: %w", curriculumPath, err)
		}
		inputs.Curriculum = doc
		return nil
	})

	g.Go(func() error {
		data, err := readValidated(schemas.KindContent, contentPath)
		if err != nil {
			return err
		}
		doc, err := curriculum.ParseContent(data)
		if err != nil {
			return fmt.Errorf("failed to parse content %s: %w", contentPath, err)
		}
		inputs.Content = doc
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return &inputs, nil
}

func readValidated(kind schemas.Kind, path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s file %s: %w", kind, path, err)
	}
	if err := schemas.ValidateDocument(kind, data); err != nil {
		return nil, fmt.Errorf("%s file %s failed schema validation: %w", kind, path, err)
	}
	return data, nil
}

// WriteReport writes report as indented JSON, creating parent directories
func WriteReport(path string, report *types.CoverageReport) error {
	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal report: %w", err)
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
	}

	if err := os.WriteFile(path, append(data, '\n'), 0644); err != nil {
		return fmt.Errorf("failed to write report %s: %w", path, err)
	}

	// Output schema drift is reported but never fails the run
	if err := schemas.ValidateDocument(schemas.KindReport, data); err != nil {
		logging.Warn().Err(err).Str("path", path).Msg("report does not match its schema")
	}
	return nil
}

// RunPipeline orchestrates a full coverage run
func RunPipeline(ctx context.Context, opts RunOptions) (*Result, error) {
	out := opts.Out
	if out == nil {
		out = os.Stdout
	}
	printer := observability.NewPrinter(out)

	inputs, err := LoadInputs(ctx, opts.CurriculumPath, opts.ContentPath)
	if err != nil {
		return nil, err
	}
	curriculumMap := inputs.Curriculum.Map()
	emitProgress(&opts, StepLoad,
		fmt.Sprintf("Loaded %d subjects and %d content items", len(curriculumMap), len(inputs.Content.Content)), "")
	if opts.Verbose {
		printer.PrintInputs(curriculumMap, inputs.Content.Content)
	}

	report := Analyze(curriculumMap, inputs.Content.Content, opts.Threshold, opts.Workers, db.SourceCLI)
	emitProgress(&opts, StepMatch,
		fmt.Sprintf("Matched %d of %d topics", report.Overall.TotalMatched, report.Overall.TotalTopics), "")
	if opts.Verbose {
		printer.PrintCoverageReport(report)
		for _, name := range report.SubjectNames() {
			printer.PrintMatchedTopics(name, report.PerSubject[name])
		}
	}

	if opts.OutputPath != "" {
		if err := WriteReport(opts.OutputPath, report); err != nil {
			return nil, err
		}
		emitProgress(&opts, StepWrite, fmt.Sprintf("Wrote report to %s", opts.OutputPath), "")
	}

	result := &Result{Report: report}
	if runID := persist(ctx, &opts, report); runID != "" {
		result.RunID = runID
		emitProgress(&opts, StepPersist, "Stored coverage run", runID)
	}

	return result, nil
}

// persist stores the report when a store is available. Database problems are
// logged and the run continues without persistence.
func persist(ctx context.Context, opts *RunOptions, report *types.CoverageReport) string {
	store := opts.Store
	if store == nil && opts.DatabaseURL != "" {
		database, err := db.Connect(ctx, opts.DatabaseURL)
		if err != nil {
			logging.Warn().Err(err).Msg("failed to connect to database, continuing without persistence")
			return ""
		}
		defer database.Close()
		if err := database.EnsureSchema(ctx); err != nil {
			logging.Warn().Err(err).Msg("failed to prepare database schema, continuing without persistence")
			return ""
		}
		store = database
	}
	if store == nil {
		return ""
	}

	run, err := store.SaveRun(ctx, db.RunInput{Label: opts.Label, Source: db.SourceCLI, Report: report})
	metrics.RecordPersist(err)
	if err != nil {
		logging.Warn().Err(err).Msg("failed to store coverage run")
		return ""
	}

	logging.Info().Str("run_id", run.ID.String()).Msg("stored coverage run")
	return run.ID.String()
}
