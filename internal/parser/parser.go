package parser

import (
	"regexp"
	"strings"

	"github.com/Lucky-luke36/auto-arbitrage/internal/vocab"
)

var yearRegex = regexp.MustCompile(`\b(19|20)\d{2}\b`)

// Result is the structured extraction of a listing title. ValidMake and
// ValidModel report whether the extracted values were confirmed against
// the vocabulary; a false flag means the field is a first-token guess.
type Result struct {
	Year       string
	Make       string
	Model      string
	Trim       string
	ValidMake  bool
	ValidModel bool
}

// Parser segments listing titles into year/make/model/trim using a
// vocabulary of known makes and models.
type Parser struct {
	vocab *vocab.Vocabulary
}

func New(v *vocab.Vocabulary) *Parser {
	return &Parser{vocab: v}
}

// Parse extracts year, make, model and trim from a raw title.
//
// The year is the first 4-digit token starting with 19 or 20, removed at
// its first occurrence only. Make and model are resolved by scanning the
// vocabulary's candidate lists (longest names first) for a prefix of the
// remaining text; when no candidate matches, the first token is kept as a
// best guess with the validity flag left false.
func (p *Parser) Parse(title string) Result {
	var res Result

	title = collapse(title)

	if year := yearRegex.FindString(title); year != "" {
		res.Year = year
		title = collapse(strings.Replace(title, year, "", 1))
	}

	if make, ok := matchPrefix(title, p.vocab.Makes()); ok {
		res.Make = make
		res.ValidMake = true
		title = strings.TrimSpace(title[len(make):])
	} else {
		parts := strings.Fields(title)
		if len(parts) > 0 {
			res.Make = parts[0]
			title = strings.Join(parts[1:], " ")
		} else {
			title = ""
		}
	}

	if title == "" {
		return res
	}

	models := p.vocab.Models(res.Make)
	if model, ok := matchPrefix(title, models); ok {
		res.Model = model
		res.ValidModel = true
		title = strings.TrimSpace(title[len(model):])
	} else {
		parts := strings.Fields(title)
		res.Model = parts[0]
		title = strings.Join(parts[1:], " ")
	}

	res.Trim = title
	return res
}

// matchPrefix scans candidates in order and returns the first that is a
// case-insensitive prefix of s followed by a space or end of string. The
// boundary requirement keeps a catalogued "Kia" from claiming the "Kia"
// of "Kiano".
func matchPrefix(s string, candidates []string) (string, bool) {
	lower := strings.ToLower(s)
	for _, c := range candidates {
		cl := strings.ToLower(c)
		if !strings.HasPrefix(lower, cl) {
			continue
		}
		if len(lower) == len(cl) || lower[len(cl)] == ' ' {
			return c, true
		}
	}
	return "", false
}

func collapse(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
