package vocab

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"
)

type modelEntry struct {
	Name string `json:"name"`
}

type makeEntry struct {
	Name   string       `json:"name"`
	Models []modelEntry `json:"models"`
}

// Vocabulary is the read-only taxonomy of known makes and their models.
// It is loaded once at startup and shared by reference; candidate lists
// are pre-sorted by descending word count with a lexicographic tie-break
// so prefix scans are deterministic and multi-word names win over their
// single-word prefixes.
type Vocabulary struct {
	makes  []string
	models map[string][]string
}

// Load reads the makes/models definition file. A missing or corrupt file
// is a hard error: every downstream parse decision depends on a complete
// vocabulary.
func Load(path string) (*Vocabulary, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read vocabulary %s: %w", path, err)
	}

	var entries []makeEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("parse vocabulary %s: %w", path, err)
	}

	byMake := make(map[string][]string, len(entries))
	for _, e := range entries {
		if strings.TrimSpace(e.Name) == "" {
			continue
		}
		models := make([]string, 0, len(e.Models))
		for _, m := range e.Models {
			if strings.TrimSpace(m.Name) != "" {
				models = append(models, m.Name)
			}
		}
		byMake[e.Name] = models
	}

	return New(byMake), nil
}

// New builds a Vocabulary from an in-memory make → models map. Used by
// Load and by tests that need synthetic vocabularies.
func New(byMake map[string][]string) *Vocabulary {
	v := &Vocabulary{
		makes:  make([]string, 0, len(byMake)),
		models: make(map[string][]string, len(byMake)),
	}
	for make, models := range byMake {
		v.makes = append(v.makes, make)
		sorted := append([]string(nil), models...)
		sortCandidates(sorted)
		v.models[make] = sorted
	}
	sortCandidates(v.makes)
	return v
}

// sortCandidates orders by descending word count, then lexicographically.
func sortCandidates(names []string) {
	sort.Slice(names, func(i, j int) bool {
		wi, wj := len(strings.Fields(names[i])), len(strings.Fields(names[j]))
		if wi != wj {
			return wi > wj
		}
		return names[i] < names[j]
	})
}

// Makes returns all known makes in candidate-scan order.
func (v *Vocabulary) Makes() []string {
	return v.makes
}

// Models returns the catalogued models for a make in candidate-scan
// order, or nil when the make is unknown.
func (v *Vocabulary) Models(make string) []string {
	return v.models[make]
}

// HasMake reports whether a make is part of the vocabulary.
func (v *Vocabulary) HasMake(make string) bool {
	_, ok := v.models[make]
	return ok
}

// Len returns the number of catalogued makes.
func (v *Vocabulary) Len() int {
	return len(v.makes)
}
