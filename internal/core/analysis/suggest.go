package analysis

import (
	"sort"
	"strings"

	"github.com/agext/levenshtein"
)

// =============================================================================
// Fuzzy Suggestions
// =============================================================================

// Suggester proposes likely-intended names for an unmatched identifier.
// Implementations must return deduplicated, lexicographically sorted results
// with at most maxSuggestions entries.
type Suggester interface {
	Suggest(target string, candidates []string) []string
}

const maxSuggestions = 3

// overlapThreshold is the minimum positional character-overlap score for a
// candidate to qualify.
const overlapThreshold = 0.6

// OverlapSuggester qualifies candidates in three tiers: exact
// case-insensitive match, substring containment in either direction, then a
// positional character-overlap score above the threshold. It is deliberately
// cheap - no edit-distance matrix - which is plenty for catching the typical
// one-typo build-argument mistake.
type OverlapSuggester struct{}

func (OverlapSuggester) Suggest(target string, candidates []string) []string {
	t := strings.ToLower(target)
	var hits []string
	for _, cand := range candidates {
		c := strings.ToLower(cand)
		switch {
		case c == t:
			hits = append(hits, cand)
		case strings.Contains(c, t) || strings.Contains(t, c):
			hits = append(hits, cand)
		case overlapScore(t, c) > overlapThreshold:
			hits = append(hits, cand)
		}
	}
	return finishSuggestions(hits)
}

// overlapScore is the fraction of aligned-position character matches over
// the longer string's length.
func overlapScore(a, b string) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	shorter, longer := a, b
	if len(shorter) > len(longer) {
		shorter, longer = longer, shorter
	}
	matches := 0
	for i := 0; i < len(shorter); i++ {
		if shorter[i] == longer[i] {
			matches++
		}
	}
	return float64(matches) / float64(len(longer))
}

// LevenshteinSuggester qualifies candidates within edit distance 2 of the
// target, compared case-insensitively. Stricter than OverlapSuggester on
// transpositions and a drop-in replacement for it.
type LevenshteinSuggester struct{}

func (LevenshteinSuggester) Suggest(target string, candidates []string) []string {
	t := strings.ToLower(target)
	var hits []string
	for _, cand := range candidates {
		if levenshtein.Distance(t, strings.ToLower(cand), nil) < 3 {
			hits = append(hits, cand)
		}
	}
	return finishSuggestions(hits)
}

// finishSuggestions applies the shared output contract: deduplicate, sort
// lexicographically, truncate.
func finishSuggestions(hits []string) []string {
	seen := make(map[string]struct{}, len(hits))
	out := hits[:0]
	for _, h := range hits {
		if _, ok := seen[h]; ok {
			continue
		}
		seen[h] = struct{}{}
		out = append(out, h)
	}
	sort.Strings(out)
	if len(out) > maxSuggestions {
		out = out[:maxSuggestions]
	}
	return out
}
