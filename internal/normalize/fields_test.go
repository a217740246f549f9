package normalize

import "testing"

func TestCanonical(t *testing.T) {
	cases := []struct {
		name  string
		raw   string
		table map[string]string
		want  string
	}{
		{name: "empty_stays_empty", raw: "", table: FuelTypes, want: ""},
		{name: "known_fuel", raw: "benzyna", table: FuelTypes, want: "gas"},
		{name: "case_insensitive", raw: "DIESEL", table: FuelTypes, want: "diesel"},
		{name: "trims_whitespace", raw: "  benzyna + gaz ", table: FuelTypes, want: "gas+lpg"},
		{name: "polish_electric", raw: "Napęd elektryczny", table: FuelTypes, want: "electric"},
		{name: "hybrid", raw: "Technologia hybrydowa", table: FuelTypes, want: "hybrid"},
		{name: "unknown_passes_through", raw: "unknown-fuel-xyz", table: FuelTypes, want: "unknown-fuel-xyz"},
		{name: "known_transmission", raw: "Automatyczna", table: Transmissions, want: "automatic"},
		{name: "semi_automatic", raw: "półautomatyczna", table: Transmissions, want: "semi-automatic"},
		{name: "already_canonical", raw: "manual", table: Transmissions, want: "manual"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := Canonical(tc.raw, tc.table); got != tc.want {
				t.Fatalf("Canonical(%q): got %q, want %q", tc.raw, got, tc.want)
			}
		})
	}
}

func TestCanonicalIsCaseInsensitive(t *testing.T) {
	if Canonical("DIESEL", FuelTypes) != Canonical("diesel", FuelTypes) {
		t.Fatal("lookup must be case-insensitive")
	}
}
