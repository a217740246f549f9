package matching

import (
	"sort"
	"strings"
)

// DefaultThreshold is the minimum similarity score for a fuzzy model
// match. Empirical tuning knob, overridable per matcher.
const DefaultThreshold = 80

// Matcher maps free-text model strings onto a canonical candidate set
// using similarity scoring. It is stateless apart from its threshold and
// safe for concurrent use.
type Matcher struct {
	threshold int
}

// NewMatcher creates a matcher with the given threshold (0..100). Values
// outside that range fall back to DefaultThreshold.
func NewMatcher(threshold int) *Matcher {
	if threshold < 0 || threshold > 100 {
		threshold = DefaultThreshold
	}
	return &Matcher{threshold: threshold}
}

// Score computes the similarity between two strings after normalization,
// taking the better of the plain and token-sorted ratios.
func (m *Matcher) Score(a, b string) int {
	na, nb := Normalize(a), Normalize(b)
	if na == "" || nb == "" {
		return 0
	}
	score := Ratio(na, nb)
	if ts := TokenSortRatio(na, nb); ts > score {
		score = ts
	}
	return score
}

// Match returns the best-scoring candidate when its score reaches the
// threshold, and false otherwise. Candidates are evaluated in sorted
// order and only a strictly higher score replaces the current best, so
// ties resolve to the lexicographically first candidate regardless of
// input order.
func (m *Matcher) Match(text string, candidates []string) (string, bool) {
	if strings.TrimSpace(text) == "" || len(candidates) == 0 {
		return "", false
	}

	ordered := append([]string(nil), candidates...)
	sort.Strings(ordered)

	best := ""
	bestScore := -1
	for _, c := range ordered {
		if score := m.Score(text, c); score > bestScore {
			best = c
			bestScore = score
		}
	}

	if bestScore < m.threshold {
		return "", false
	}
	return best, true
}
