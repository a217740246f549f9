package matching

import "testing"

func TestRatio(t *testing.T) {
	cases := []struct {
		name string
		a, b string
		want int
	}{
		{name: "identical", a: "insignia", b: "insignia", want: 100},
		{name: "both_empty", a: "", b: "", want: 0},
		{name: "one_empty", a: "astra", b: "", want: 0},
		{name: "disjoint", a: "ab", b: "xy", want: 0},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := Ratio(tc.a, tc.b); got != tc.want {
				t.Fatalf("Ratio(%q, %q): got %d, want %d", tc.a, tc.b, got, tc.want)
			}
		})
	}

	// one-character edit over an 8-rune string stays high
	if got := Ratio("insignia", "insygnia"); got < 80 {
		t.Fatalf("close strings scored too low: %d", got)
	}
}

func TestTokenSortRatio(t *testing.T) {
	if got := TokenSortRatio("rover range", "range rover"); got != 100 {
		t.Fatalf("token sort: got %d, want 100", got)
	}
}

func TestMatcherMatch(t *testing.T) {
	candidates := []string{"Insignia", "Astra", "Corsa", "Vectra"}
	m := NewMatcher(DefaultThreshold)

	cases := []struct {
		name   string
		text   string
		want   string
		wantOK bool
	}{
		{name: "exact", text: "Insignia", want: "Insignia", wantOK: true},
		{name: "case_and_accents", text: "insígnia", want: "Insignia", wantOK: true},
		{name: "typo", text: "Insygnia", want: "Insignia", wantOK: true},
		{name: "empty", text: "", wantOK: false},
		{name: "whitespace_only", text: "   ", wantOK: false},
		{name: "garbage", text: "zzzzzzzz", wantOK: false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, ok := m.Match(tc.text, candidates)
			if ok != tc.wantOK || got != tc.want {
				t.Fatalf("Match(%q): got (%q, %v), want (%q, %v)", tc.text, got, ok, tc.want, tc.wantOK)
			}
		})
	}
}

func TestMatcherTieBreakDeterministic(t *testing.T) {
	m := NewMatcher(0)

	// Both candidates are one edit away; the lexicographically first must
	// win regardless of input order.
	a, okA := m.Match("golx", []string{"golf", "gols"})
	b, okB := m.Match("golx", []string{"gols", "golf"})
	if !okA || !okB {
		t.Fatal("expected matches with zero threshold")
	}
	if a != "golf" || b != "golf" {
		t.Fatalf("tie-break: got %q and %q, want golf both times", a, b)
	}
}

func TestMatcherThresholdBoundary(t *testing.T) {
	m := NewMatcher(100)
	if _, ok := m.Match("Astre", []string{"Astra"}); ok {
		t.Fatal("near match must fail a threshold of 100")
	}
	if got, ok := m.Match("Astra", []string{"Astra"}); !ok || got != "Astra" {
		t.Fatal("exact match must pass a threshold of 100")
	}
}

func TestCleanModel(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
	}{
		{name: "punctuation", in: "insignia,", want: "Insignia"},
		{name: "accents", in: "Škoda", want: "Skoda"},
		{name: "keeps_allcaps", in: "CR-V", want: "CR-V"},
		{name: "title_cases", in: "grand cherokee", want: "Grand Cherokee"},
		{name: "digits_only", in: "2016", want: ""},
		{name: "too_short", in: "x", want: ""},
		{name: "empty", in: "  ", want: ""},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := CleanModel(tc.in); got != tc.want {
				t.Fatalf("CleanModel(%q): got %q, want %q", tc.in, got, tc.want)
			}
		})
	}
}

func TestNormalize(t *testing.T) {
	if got := Normalize("  Citroën   C4 "); got != "citroen c4" {
		t.Fatalf("Normalize: got %q", got)
	}
}
