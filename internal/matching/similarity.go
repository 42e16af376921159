// Package matching scores curriculum topics against content items and aggregates
// per-subject coverage.
package matching

import (
	"github.com/jonathan/curriculum-coverage/internal/parsing"
)

// Similarity returns the Jaccard index of the token sets of a and b.
// If either token set is empty the similarity is 0.0, so an empty topic or
// candidate never matches anything.
func Similarity(a, b string) float64 {
	tokensA := parsing.Tokens(a)
	tokensB := parsing.Tokens(b)
	if len(tokensA) == 0 || len(tokensB) == 0 {
		return 0.0
	}

	intersection := 0
	for token := range tokensA {
		if _, ok := tokensB[token]; ok {
			intersection++
		}
	}
	union := len(tokensA) + len(tokensB) - intersection

	return float64(intersection) / float64(union)
}

// Score is the match score between a curriculum topic and a candidate string.
// Both directions are evaluated and the larger value wins; Jaccard is symmetric
// today, but callers rely on Score rather than on that property.
func Score(topic, candidate string) float64 {
	return max(Similarity(topic, candidate), Similarity(candidate, topic))
}
