package types

// CoverageReport is the result of matching a curriculum against a content inventory.
type CoverageReport struct {
	PerSubject map[string]SubjectCoverage `json:"per_subject"`
	Overall    OverallCoverage            `json:"overall"`
	Threshold  float64                    `json:"threshold"`
}

// SubjectCoverage holds the coverage figures of one curriculum subject.
type SubjectCoverage struct {
	TopicCount      int          `json:"topic_count"`
	MatchedCount    int          `json:"matched_count"`
	CoveragePct     float64      `json:"coverage_pct"`
	UnmatchedTopics []string     `json:"unmatched_topics"`
	MatchedTopics   []TopicMatch `json:"matched_topics"`
}

// TopicMatch records the best candidate found for a curriculum topic.
type TopicMatch struct {
	Topic     string  `json:"topic"`
	Candidate string  `json:"candidate"`
	Score     float64 `json:"score"`
}

// OverallCoverage holds totals summed across all curriculum subjects.
type OverallCoverage struct {
	TotalTopics  int     `json:"total_topics"`
	TotalMatched int     `json:"total_matched"`
	OverallPct   float64 `json:"overall_pct"`
}

// SubjectNames returns the subjects of the report in sorted order.
func (r *CoverageReport) SubjectNames() []string {
	m := make(CurriculumMap, len(r.PerSubject))
	for name := range r.PerSubject {
		m[name] = nil
	}
	return m.Subjects()
}
