// Package parsing normalizes free-text curriculum topic names and content titles
// into comparable token sets.
package parsing

import (
	"sort"
	"strings"
)

// Normalize lower-cases text, replaces every character that is not an ASCII
// letter, digit or whitespace with a space, collapses whitespace runs to a
// single space and trims the result. It never fails; empty input yields "".
func Normalize(text string) string {
	if text == "" {
		return ""
	}

	// Whitespace is mapped to a space too; strings.Fields collapses the runs.
	mapped := strings.Map(func(r rune) rune {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			return r
		}
		return ' '
	}, strings.ToLower(text))

	return strings.Join(strings.Fields(mapped), " ")
}

// Tokens returns the set of whitespace-separated words of Normalize(text).
// Empty input yields an empty set.
func Tokens(text string) map[string]struct{} {
	words := strings.Fields(Normalize(text))
	set := make(map[string]struct{}, len(words))
	for _, w := range words {
		set[w] = struct{}{}
	}
	return set
}

// SortedTokens returns the token set of text as a sorted slice.
func SortedTokens(text string) []string {
	set := Tokens(text)
	out := make([]string, 0, len(set))
	for w := range set {
		out = append(out, w)
	}
	sort.Strings(out)
	return out
}
