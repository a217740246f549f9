package matching

import (
	"sort"
	"strings"

	"github.com/agnivade/levenshtein"
)

// Ratio is a normalized edit-distance similarity in 0..100. Identical
// strings score 100, fully dissimilar strings 0.
func Ratio(a, b string) int {
	if a == b {
		if a == "" {
			return 0
		}
		return 100
	}
	la, lb := len([]rune(a)), len([]rune(b))
	if la == 0 || lb == 0 {
		return 0
	}
	longest := la
	if lb > longest {
		longest = lb
	}
	dist := levenshtein.ComputeDistance(a, b)
	return (100*(longest-dist) + longest/2) / longest
}

// TokenSortRatio compares the strings with their tokens sorted, so word
// order does not matter ("rover range" vs "range rover").
func TokenSortRatio(a, b string) int {
	return Ratio(sortTokens(a), sortTokens(b))
}

func sortTokens(s string) string {
	fields := strings.Fields(s)
	sort.Strings(fields)
	return strings.Join(fields, " ")
}
