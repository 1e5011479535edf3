package catalog

import (
	"sort"
	"strings"

	"github.com/pmezard/go-difflib/difflib"
)

const (
	// DefaultMaxResults bounds FuzzyLookup results when callers pass n <= 0.
	DefaultMaxResults = 5
	// DefaultCutoff is the minimum similarity ratio for a fuzzy match.
	DefaultCutoff = 0.6
)

type fuzzyMatch struct {
	title string
	score float64
}

// FuzzyLookup returns up to maxResults titles whose sequence-matching ratio
// against query is at least cutoff, best first. Equal scores keep catalog
// insertion order. Comparison is case-sensitive over raw characters.
func (s *Store) FuzzyLookup(query string, maxResults int, cutoff float64) []string {
	if maxResults <= 0 {
		maxResults = DefaultMaxResults
	}
	if cutoff < 0 || cutoff > 1 {
		cutoff = DefaultCutoff
	}
	snap := s.snap()
	if len(snap.order) == 0 {
		return []string{}
	}

	matcher := difflib.NewMatcher(nil, nil)
	matcher.SetSeq2(splitChars(query))

	var matches []fuzzyMatch
	for _, title := range snap.order {
		matcher.SetSeq1(splitChars(title))
		if matcher.RealQuickRatio() < cutoff || matcher.QuickRatio() < cutoff {
			continue
		}
		if score := matcher.Ratio(); score >= cutoff {
			matches = append(matches, fuzzyMatch{title: title, score: score})
		}
	}

	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].score > matches[j].score
	})
	if len(matches) > maxResults {
		matches = matches[:maxResults]
	}
	out := make([]string, len(matches))
	for i, match := range matches {
		out[i] = match.title
	}
	return out
}

func splitChars(text string) []string {
	return strings.Split(text, "")
}
