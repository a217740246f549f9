package matching

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var punctRegex = regexp.MustCompile(`[^\w\s\-]`)

// Normalize normalizes a string for similarity comparison: lowercase,
// accents stripped, whitespace collapsed.
func Normalize(s string) string {
	s = strings.ToLower(s)
	s = StripAccents(s)
	s = strings.Join(strings.Fields(s), " ")
	return s
}

// StripAccents removes combining marks after NFD decomposition, so
// "Škoda" becomes "Skoda" and "Citroën" becomes "Citroen".
func StripAccents(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return out
}

// CleanModel canonicalizes a raw model string for the clean_models
// candidate set: accents stripped, punctuation removed (word characters,
// spaces and hyphens survive), title-cased unless the string is already
// all-caps like "CR-V". Returns "" for values that are junk (empty,
// digits only, shorter than two characters).
func CleanModel(s string) string {
	s = strings.TrimSpace(s)
	s = StripAccents(s)
	s = punctRegex.ReplaceAllString(s, "")
	s = strings.Join(strings.Fields(s), " ")

	if s != strings.ToUpper(s) {
		s = cases.Title(language.English).String(s)
	}

	if s == "" || isDigits(s) || len([]rune(s)) < 2 {
		return ""
	}
	return s
}

func isDigits(s string) bool {
	for _, r := range s {
		if !unicode.IsDigit(r) {
			return false
		}
	}
	return len(s) > 0
}
