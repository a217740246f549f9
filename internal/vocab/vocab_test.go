package vocab

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func TestCandidateOrder(t *testing.T) {
	v := New(map[string][]string{
		"Land Rover":   {"Range Rover Sport", "Defender", "Discovery"},
		"Land":         nil,
		"Alfa Romeo":   {"Giulia"},
		"Opel":         {"Insignia", "Astra"},
		"Aston Martin": nil,
	})

	wantMakes := []string{"Alfa Romeo", "Aston Martin", "Land Rover", "Land", "Opel"}
	if got := v.Makes(); !reflect.DeepEqual(got, wantMakes) {
		t.Fatalf("makes order: got %v, want %v", got, wantMakes)
	}

	wantModels := []string{"Range Rover Sport", "Defender", "Discovery"}
	if got := v.Models("Land Rover"); !reflect.DeepEqual(got, wantModels) {
		t.Fatalf("models order: got %v, want %v", got, wantModels)
	}
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "makes_models.json")
	body := `[
		{"name": "Opel", "models": [{"name": "Insignia"}, {"name": "Astra"}]},
		{"name": "Honda", "models": [{"name": "CR-V"}]},
		{"name": "Fiat", "models": []}
	]`
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}

	v, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if v.Len() != 3 {
		t.Fatalf("len: got %d, want 3", v.Len())
	}
	if !v.HasMake("Opel") || !v.HasMake("Fiat") {
		t.Fatal("expected Opel and Fiat to be known makes")
	}
	if v.HasMake("opel") {
		t.Fatal("make lookup must be case-preserving")
	}
	if got := v.Models("Honda"); len(got) != 1 || got[0] != "CR-V" {
		t.Fatalf("Honda models: got %v", got)
	}
	if got := v.Models("Fiat"); len(got) != 0 {
		t.Fatalf("Fiat models: got %v, want empty", got)
	}
	if got := v.Models("Mazda"); got != nil {
		t.Fatalf("unknown make models: got %v, want nil", got)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.json")); err == nil {
		t.Fatal("expected error for missing vocabulary file")
	}
}

func TestLoadCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.json")
	if err := os.WriteFile(path, []byte(`{"name": "not a list"`), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Fatal("expected error for corrupt vocabulary file")
	}
}
