package matching

import (
	"strconv"

	"golang.org/x/sync/errgroup"

	"github.com/jonathan/curriculum-coverage/internal/types"
)

// DefaultThreshold is the minimum score for a topic to count as covered.
// Half of the token union must overlap, which tolerates paraphrases such as
// "Quadratic Equations" vs "Solving Quadratic Equations".
const DefaultThreshold = 0.5

type options struct {
	threshold float64
	workers   int
}

// Option configures ComputeCoverage.
type Option func(*options)

// WithThreshold sets the acceptance threshold (default DefaultThreshold).
func WithThreshold(threshold float64) Option {
	return func(o *options) {
		o.threshold = threshold
	}
}

// WithWorkers matches up to n subjects concurrently. Values below 2 keep the
// computation sequential. The report is identical either way.
func WithWorkers(n int) Option {
	return func(o *options) {
		o.workers = n
	}
}

// TopicResult is the outcome of matching one topic against a list of items.
type TopicResult struct {
	Topic     string
	Candidate string
	Score     float64
	Matched   bool
}

// MatchTopic finds the best-scoring item for topic. The first item reaching the
// best score wins ties. A topic is matched when the best score is positive and
// at least threshold; with no items it is never matched.
func MatchTopic(topic string, items []types.ContentItem, threshold float64) TopicResult {
	result := TopicResult{Topic: topic}
	for _, item := range items {
		candidate := item.MatchText()
		score := Score(topic, candidate)
		if score > result.Score {
			result.Score = score
			result.Candidate = candidate
		}
	}
	result.Matched = result.Score > 0 && result.Score >= threshold
	return result
}

// GroupBySubject partitions items by subject, keeping their original order.
// Items without a subject are grouped under types.UnknownSubject.
func GroupBySubject(items []types.ContentItem) map[string][]types.ContentItem {
	groups := make(map[string][]types.ContentItem)
	for _, item := range items {
		subject := item.SubjectOrDefault()
		groups[subject] = append(groups[subject], item)
	}
	return groups
}

// ComputeCoverage reports, per curriculum subject and overall, how many topics
// have at least one sufficiently similar content item of the same subject.
// Content under subjects missing from the curriculum is ignored. The inputs are
// not modified and the function performs no I/O.
func ComputeCoverage(curriculum types.CurriculumMap, content []types.ContentItem, opts ...Option) *types.CoverageReport {
	o := options{threshold: DefaultThreshold}
	for _, opt := range opts {
		opt(&o)
	}

	bySubject := GroupBySubject(content)
	subjects := curriculum.Subjects()
	results := make([]types.SubjectCoverage, len(subjects))

	if o.workers > 1 && len(subjects) > 1 {
		var g errgroup.Group
		g.SetLimit(o.workers)
		for i, subject := range subjects {
			g.Go(func() error {
				results[i] = coverSubject(curriculum[subject], bySubject[subject], o.threshold)
				return nil
			})
		}
		_ = g.Wait() // coverSubject cannot fail
	} else {
		for i, subject := range subjects {
			results[i] = coverSubject(curriculum[subject], bySubject[subject], o.threshold)
		}
	}

	report := &types.CoverageReport{
		PerSubject: make(map[string]types.SubjectCoverage, len(subjects)),
		Threshold:  o.threshold,
	}
	for i, subject := range subjects {
		sc := results[i]
		report.PerSubject[subject] = sc
		report.Overall.TotalTopics += sc.TopicCount
		report.Overall.TotalMatched += sc.MatchedCount
	}
	report.Overall.OverallPct = Percent(report.Overall.TotalMatched, report.Overall.TotalTopics)

	return report
}

// coverSubject matches every topic of one subject against that subject's items.
func coverSubject(topics []string, items []types.ContentItem, threshold float64) types.SubjectCoverage {
	sc := types.SubjectCoverage{
		TopicCount:      len(topics),
		UnmatchedTopics: make([]string, 0),
		MatchedTopics:   make([]types.TopicMatch, 0),
	}

	for _, topic := range topics {
		res := MatchTopic(topic, items, threshold)
		if !res.Matched {
			sc.UnmatchedTopics = append(sc.UnmatchedTopics, topic)
			continue
		}
		sc.MatchedCount++
		sc.MatchedTopics = append(sc.MatchedTopics, types.TopicMatch{
			Topic:     res.Topic,
			Candidate: res.Candidate,
			Score:     res.Score,
		})
	}

	sc.CoveragePct = Percent(sc.MatchedCount, sc.TopicCount)
	return sc
}

// Percent returns 100*matched/max(1,total) rounded to one decimal place.
// Rounding formats the exact binary value, so true ties such as 6.25 round
// half to even (6.2).
func Percent(matched, total int) float64 {
	pct := float64(100*matched) / float64(max(1, total))
	rounded, err := strconv.ParseFloat(strconv.FormatFloat(pct, 'f', 1, 64), 64)
	if err != nil {
		return 0.0
	}
	return rounded
}
