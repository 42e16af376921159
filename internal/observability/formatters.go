// Package observability provides formatted output utilities for verbose CLI mode.
package observability

import (
	"fmt"
	"io"
	"strings"

	"github.com/jonathan/curriculum-coverage/internal/types"
)

const (
	// boxWidth is the default width for formatted output boxes
	boxWidth = 60
	// maxItemsToShow is the default number of items to display in lists
	maxItemsToShow = 5
)

// Printer handles formatted output for verbose mode
type Printer struct {
	out io.Writer
}

// NewPrinter creates a new Printer that writes to the given writer
func NewPrinter(out io.Writer) *Printer {
	return &Printer{out: out}
}

// printBox prints a formatted box with a title and content
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) printBox(title string, content string) {
	border := strings.Repeat("─", boxWidth-2)
	fmt.Fprintf(p.out, "┌%s┐\n", border)
	fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, title)
	fmt.Fprintf(p.out, "├%s┤\n", border)

	lines := strings.Split(content, "\n")
	for _, line := range lines {
		if len(line) > boxWidth-4 {
			line = line[:boxWidth-7] + "..."
		}
		fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, line)
	}

	fmt.Fprintf(p.out, "└%s┘\n", border)
}

// PrintInputs summarizes the loaded curriculum and content documents.
func (p *Printer) PrintInputs(curriculum types.CurriculumMap, content []types.ContentItem) {
	var sb strings.Builder

	topics := 0
	for _, list := range curriculum {
		topics += len(list)
	}
	sb.WriteString(fmt.Sprintf("Curriculum subjects: %d (%d topics)\n", len(curriculum), topics))
	sb.WriteString(fmt.Sprintf("Content items:       %d\n", len(content)))

	perSubject := make(map[string]int)
	for _, item := range content {
		perSubject[item.SubjectOrDefault()]++
	}

	orphaned := 0
	for subject, n := range perSubject {
		if _, ok := curriculum[subject]; !ok {
			orphaned += n
		}
	}
	if orphaned > 0 {
		sb.WriteString(fmt.Sprintf("Items outside curriculum subjects: %d", orphaned))
	}

	p.printBox("INPUTS", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintCoverageReport outputs per-subject coverage with the first unmatched topics.
func (p *Printer) PrintCoverageReport(report *types.CoverageReport) {
	if report == nil {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Threshold: %.2f\n", report.Threshold))
	sb.WriteString(fmt.Sprintf("Overall:   %d/%d topics (%.1f%%)\n",
		report.Overall.TotalMatched, report.Overall.TotalTopics, report.Overall.OverallPct))

	for _, name := range report.SubjectNames() {
		sc := report.PerSubject[name]
		sb.WriteString("\n")
		sb.WriteString(fmt.Sprintf("%s  %d/%d (%.1f%%)\n", name, sc.MatchedCount, sc.TopicCount, sc.CoveragePct))

		count := min(len(sc.UnmatchedTopics), maxItemsToShow)
		for i := 0; i < count; i++ {
			sb.WriteString(fmt.Sprintf("  ✗ %s\n", sc.UnmatchedTopics[i]))
		}
		if len(sc.UnmatchedTopics) > maxItemsToShow {
			sb.WriteString(fmt.Sprintf("  ... and %d more\n", len(sc.UnmatchedTopics)-maxItemsToShow))
		}
	}

	p.printBox("CURRICULUM COVERAGE", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintMatchedTopics lists the strongest matches of one subject.
func (p *Printer) PrintMatchedTopics(subject string, coverage types.SubjectCoverage) {
	if len(coverage.MatchedTopics) == 0 {
		return
	}

	var sb strings.Builder
	count := min(len(coverage.MatchedTopics), maxItemsToShow)
	for i := 0; i < count; i++ {
		m := coverage.MatchedTopics[i]
		sb.WriteString(fmt.Sprintf("✓ %s\n", m.Topic))
		sb.WriteString(fmt.Sprintf("    → %s (%.2f)\n", m.Candidate, m.Score))
	}
	if len(coverage.MatchedTopics) > maxItemsToShow {
		sb.WriteString(fmt.Sprintf("... and %d more\n", len(coverage.MatchedTopics)-maxItemsToShow))
	}

	p.printBox("MATCHES: "+strings.ToUpper(subject), strings.TrimSuffix(sb.String(), "\n"))
}
