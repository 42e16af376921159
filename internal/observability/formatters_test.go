package observability

import (
	"bytes"
	"strings"
	"testing"

	"github.com/jonathan/curriculum-coverage/internal/types"
	"github.com/stretchr/testify/assert"
)

func sampleReport() *types.CoverageReport {
	return &types.CoverageReport{
		Threshold: 0.5,
		PerSubject: map[string]types.SubjectCoverage{
			"Physics": {
				TopicCount:      2,
				MatchedCount:    1,
				CoveragePct:     50.0,
				UnmatchedTopics: []string{"Waves"},
				MatchedTopics:   []types.TopicMatch{{Topic: "Ohm's Law", Candidate: "Ohm's Law Basics", Score: 0.75}},
			},
			"Biology": {
				TopicCount:      7,
				MatchedCount:    0,
				CoveragePct:     0.0,
				UnmatchedTopics: []string{"Cells", "Genetics", "Evolution", "Ecology", "Enzymes", "Respiration", "Photosynthesis"},
				MatchedTopics:   []types.TopicMatch{},
			},
		},
		Overall: types.OverallCoverage{TotalTopics: 9, TotalMatched: 1, OverallPct: 11.1},
	}
}

func TestPrintCoverageReport(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	p.PrintCoverageReport(sampleReport())
	output := buf.String()

	assert.Contains(t, output, "CURRICULUM COVERAGE")
	assert.Contains(t, output, "1/9 topics (11.1%)")
	assert.Contains(t, output, "Physics  1/2 (50.0%)")
	assert.Contains(t, output, "✗ Waves")
	assert.Contains(t, output, "... and 2 more")
	assert.NotContains(t, output, "Photosynthesis")

	// Subjects are listed alphabetically
	assert.Less(t, strings.Index(output, "Biology"), strings.Index(output, "Physics"))
}

func TestPrintCoverageReport_Nil(t *testing.T) {
	var buf bytes.Buffer
	NewPrinter(&buf).PrintCoverageReport(nil)
	assert.Empty(t, buf.String())
}

func TestPrintInputs(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	curriculum := types.CurriculumMap{"Physics": {"Ohm's Law", "Waves"}}
	content := []types.ContentItem{
		{Subject: "Physics", Title: "Ohm's Law Basics"},
		{Title: "Study Skills"},
		{Subject: "Art", Topic: "Colour"},
	}

	p.PrintInputs(curriculum, content)
	output := buf.String()

	assert.Contains(t, output, "INPUTS")
	assert.Contains(t, output, "Curriculum subjects: 1 (2 topics)")
	assert.Contains(t, output, "Content items:       3")
	assert.Contains(t, output, "Items outside curriculum subjects: 2")
}

func TestPrintMatchedTopics(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	report := sampleReport()
	p.PrintMatchedTopics("Physics", report.PerSubject["Physics"])
	assert.Contains(t, buf.String(), "MATCHES: PHYSICS")
	assert.Contains(t, buf.String(), "Ohm's Law Basics (0.75)")

	buf.Reset()
	p.PrintMatchedTopics("Biology", report.PerSubject["Biology"])
	assert.Empty(t, buf.String())
}

func TestPrintBox_TruncatesLongLines(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	p.printBox("TITLE", strings.Repeat("x", 100))
	assert.Contains(t, buf.String(), "...")
	assert.NotContains(t, buf.String(), strings.Repeat("x", 60))
}
