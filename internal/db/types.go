package db

import (
	"time"

	"github.com/google/uuid"
	"github.com/jonathan/curriculum-coverage/internal/types"
)

// Run sources
const (
	SourceCLI = "cli"
	SourceAPI = "api"
)

// DefaultListLimit caps ListRuns when no limit is given
const DefaultListLimit = 50

// MaxListLimit is the most runs a single ListRuns call returns
const MaxListLimit = 100

// CoverageRun is a stored coverage computation with its full report
type CoverageRun struct {
	ID           uuid.UUID             `json:"id"`
	Label        string                `json:"label"`
	Source       string                `json:"source"`
	Threshold    float64               `json:"threshold"`
	TotalTopics  int                   `json:"total_topics"`
	TotalMatched int                   `json:"total_matched"`
	OverallPct   float64               `json:"overall_pct"`
	Report       *types.CoverageReport `json:"report,omitempty"`
	CreatedAt    time.Time             `json:"created_at"`
}

// RunInput holds what a caller provides when persisting a run
type RunInput struct {
	Label  string
	Source string
	Report *types.CoverageReport
}

// RunFilters holds optional filters for listing runs
type RunFilters struct {
	Label  string
	Source string
	Limit  int
}

// EffectiveLimit returns Limit bounded to [1, MaxListLimit], or
// DefaultListLimit when unset.
func (f RunFilters) EffectiveLimit() int {
	if f.Limit <= 0 {
		return DefaultListLimit
	}
	return min(f.Limit, MaxListLimit)
}

// NewRun builds the row for input. The report's own totals fill the summary
// columns so list queries never need to read the JSONB column.
func NewRun(input RunInput) *CoverageRun {
	source := input.Source
	if source == "" {
		source = SourceCLI
	}
	run := &CoverageRun{
		ID:     uuid.New(),
		Label:  input.Label,
		Source: source,
		Report: input.Report,
	}
	if input.Report != nil {
		run.Threshold = input.Report.Threshold
		run.TotalTopics = input.Report.Overall.TotalTopics
		run.TotalMatched = input.Report.Overall.TotalMatched
		run.OverallPct = input.Report.Overall.OverallPct
	}
	return run
}
