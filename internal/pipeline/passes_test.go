package pipeline

import (
	"context"
	"database/sql"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/Lucky-luke36/auto-arbitrage/internal/database"
	"github.com/Lucky-luke36/auto-arbitrage/internal/matching"
	"github.com/Lucky-luke36/auto-arbitrage/internal/repository"
)

func openStore(t *testing.T, name string) *sql.DB {
	t.Helper()
	db, err := database.Open(filepath.Join(t.TempDir(), name))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { db.Close() })
	if err := database.Migrate(db); err != nil {
		t.Fatal(err)
	}
	return db
}

func TestNormalizeFields(t *testing.T) {
	db := openStore(t, "gratka.db")
	cars := repository.NewCarRepo(db)

	inserts := []struct {
		link, fuel, trans string
	}{
		{"l-1", "Benzyna", "Manualna"},
		{"l-2", "diesel", "automatyczna"},
		{"l-3", "unknown-fuel-xyz", "półautomatyczna"},
	}
	for _, in := range inserts {
		if _, err := db.Exec(`
			INSERT INTO cars (link, fuelType, transmission) VALUES (?, ?, ?)
		`, in.link, in.fuel, in.trans); err != nil {
			t.Fatal(err)
		}
	}
	// a row with NULL categoricals must stay NULL
	if _, err := db.Exec(`INSERT INTO cars (link) VALUES ('l-4')`); err != nil {
		t.Fatal(err)
	}

	report, err := NormalizeFields(context.Background(), cars)
	if err != nil {
		t.Fatalf("normalize: %v", err)
	}
	if report.Rows != 4 {
		t.Fatalf("report rows: %+v", report)
	}

	want := map[string][2]string{
		"l-1": {"gas", "manual"},
		"l-2": {"diesel", "automatic"},
		"l-3": {"unknown-fuel-xyz", "semi-automatic"},
	}
	for link, w := range want {
		var fuel, trans string
		err := db.QueryRow(`SELECT fuelType, transmission FROM cars WHERE link = ?`, link).
			Scan(&fuel, &trans)
		if err != nil {
			t.Fatal(err)
		}
		if fuel != w[0] || trans != w[1] {
			t.Fatalf("%s: got (%q, %q), want (%q, %q)", link, fuel, trans, w[0], w[1])
		}
	}

	var fuel sql.NullString
	if err := db.QueryRow(`SELECT fuelType FROM cars WHERE link = 'l-4'`).Scan(&fuel); err != nil {
		t.Fatal(err)
	}
	if fuel.Valid {
		t.Fatalf("NULL fuel must stay NULL, got %q", fuel.String)
	}

	// second pass changes nothing
	report, err = NormalizeFields(context.Background(), cars)
	if err != nil {
		t.Fatal(err)
	}
	if report.Changed != 0 {
		t.Fatalf("second pass must be a no-op: %+v", report)
	}
}

func TestExtractCleanModels(t *testing.T) {
	db := openStore(t, "kijiji.db")
	cars := repository.NewCarRepo(db)
	models := repository.NewModelRepo(db)

	raws := []string{"insignia,", "Insignia", "CR-V", "Škoda", "7", "x", "civic"}
	for i, m := range raws {
		if _, err := db.Exec(`
			INSERT INTO cars (link, model) VALUES (?, ?)
		`, filepath.Join("l", string(rune('a'+i))), m); err != nil {
			t.Fatal(err)
		}
	}

	n, err := ExtractCleanModels(context.Background(), cars, models)
	if err != nil {
		t.Fatalf("extract: %v", err)
	}

	got, err := models.CleanModels(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	want := []string{"CR-V", "Civic", "Insignia", "Skoda"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("clean models: got %v, want %v", got, want)
	}
	if n != len(want) {
		t.Fatalf("count: got %d, want %d", n, len(want))
	}
}

func TestMatchModels(t *testing.T) {
	ref := openStore(t, "kijiji.db")
	target := openStore(t, "polish_cars.db")

	refModels := repository.NewModelRepo(ref)
	if err := refModels.ReplaceCleanModels(context.Background(), []string{"Insignia", "Ceed", "Civic"}); err != nil {
		t.Fatal(err)
	}

	rows := []struct {
		link, make, model, year string
		mileage, price          int64
	}{
		{"l-1", "Opel", "Insygnia", "2016", 120000, 50000},
		{"l-2", "Kia", "ceed", "2018", 80000, 45000},
		{"l-3", "Opel", "Zafira", "2015", 150000, 30000},
	}
	for _, r := range rows {
		if _, err := target.Exec(`
			INSERT INTO cars (link, make, model, year, mileage, price)
			VALUES (?, ?, ?, ?, ?, ?)
		`, r.link, r.make, r.model, r.year, r.mileage, r.price); err != nil {
			t.Fatal(err)
		}
	}

	targetCars := repository.NewCarRepo(target)
	targetModels := repository.NewModelRepo(target)

	report, err := MatchModels(context.Background(), targetCars, targetModels, refModels,
		matching.NewMatcher(matching.DefaultThreshold), 0)
	if err != nil {
		t.Fatalf("match: %v", err)
	}
	if report.Rows != 3 || report.Matched != 2 || report.NoMatch != 1 {
		t.Fatalf("report: %+v", report)
	}

	filtered, err := targetModels.FilteredModels(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if len(filtered) != 2 {
		t.Fatalf("filtered rows: %d", len(filtered))
	}
	byModel := map[string]bool{}
	for _, fm := range filtered {
		byModel[fm.MatchedModel] = true
	}
	if !byModel["Insignia"] || !byModel["Ceed"] {
		t.Fatalf("matched set: %v", byModel)
	}

	// raw model column untouched
	var raw string
	if err := target.QueryRow(`SELECT model FROM cars WHERE link = 'l-1'`).Scan(&raw); err != nil {
		t.Fatal(err)
	}
	if raw != "Insygnia" {
		t.Fatalf("raw model overwritten: %q", raw)
	}
}

func TestMatchModelsMinRowsCutoff(t *testing.T) {
	ref := openStore(t, "kijiji.db")
	target := openStore(t, "polish_cars.db")

	refModels := repository.NewModelRepo(ref)
	if err := refModels.ReplaceCleanModels(context.Background(), []string{"Insignia", "Ceed"}); err != nil {
		t.Fatal(err)
	}

	for i, m := range []string{"Insignia", "Insignia", "Ceed"} {
		if _, err := target.Exec(`
			INSERT INTO cars (link, make, model, price) VALUES (?, 'X', ?, 1)
		`, filepath.Join("l", string(rune('a'+i))), m); err != nil {
			t.Fatal(err)
		}
	}

	targetCars := repository.NewCarRepo(target)
	targetModels := repository.NewModelRepo(target)

	report, err := MatchModels(context.Background(), targetCars, targetModels, refModels,
		matching.NewMatcher(matching.DefaultThreshold), 2)
	if err != nil {
		t.Fatal(err)
	}
	if report.Matched != 3 || report.Kept != 2 || report.CutModels != 1 {
		t.Fatalf("report: %+v", report)
	}
}
