package normalize

import "strings"

// FuelTypes maps marketplace fuel labels (lowercased) onto canonical
// values. Unmapped values pass through unchanged.
var FuelTypes = map[string]string{
	"benzyna":               "gas",
	"benzyna + gaz":         "gas+lpg",
	"cng":                   "cng",
	"diesel":                "diesel",
	"inne":                  "other",
	"napęd elektryczny":     "electric",
	"elektryczny":           "electric",
	"technologia hybrydowa": "hybrid",
	"hybrid":                "hybrid",
	"gas":                   "gas",
}

// Transmissions maps marketplace transmission labels (lowercased) onto
// canonical values.
var Transmissions = map[string]string{
	"automatyczna":    "automatic",
	"manualna":        "manual",
	"półautomatyczna": "semi-automatic",
	"manual":          "manual",
	"automatic":       "automatic",
}

// Canonical looks up a raw categorical value in a mapping table after
// trimming and lowercasing. Empty input stays empty; unrecognized values
// are returned unchanged, never dropped.
func Canonical(raw string, table map[string]string) string {
	if raw == "" {
		return ""
	}
	if mapped, ok := table[strings.ToLower(strings.TrimSpace(raw))]; ok {
		return mapped
	}
	return raw
}
