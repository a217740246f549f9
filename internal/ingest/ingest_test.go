package ingest

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/Lucky-luke36/auto-arbitrage/internal/database"
	"github.com/Lucky-luke36/auto-arbitrage/internal/repository"
)

func newStore(t *testing.T) *repository.CarRepo {
	t.Helper()
	db, err := database.Open(filepath.Join(t.TempDir(), "gratka.db"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { db.Close() })
	if err := database.Migrate(db); err != nil {
		t.Fatal(err)
	}
	return repository.NewCarRepo(db)
}

func writeDump(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "dump.jl")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestFileInsertsNewListings(t *testing.T) {
	cars := newStore(t)
	dump := writeDump(t, `
{"title": "2016 Opel Insignia", "price": 50000, "currency": "PLN", "mileage": "120000", "mileage_unit": "km", "fuelType": "diesel", "transmission": "manualna", "source": "gratka", "link": "l-1", "year": "2016"}
{"title": "Kia Ceed", "price": "40000", "source": "gratka", "link": "l-2"}
`)

	report, err := File(context.Background(), cars, dump)
	if err != nil {
		t.Fatalf("ingest: %v", err)
	}
	if report.Read != 2 || report.Inserted != 2 || report.Failed != 0 {
		t.Fatalf("report: %+v", report)
	}

	var price, mileage int64
	err = cars.DB().QueryRow(`SELECT price, mileage FROM cars WHERE link = 'l-1'`).Scan(&price, &mileage)
	if err != nil {
		t.Fatal(err)
	}
	if price != 50000 || mileage != 120000 {
		t.Fatalf("coerced values: price=%d mileage=%d", price, mileage)
	}
}

func TestFileUpsertUpdatesOnlyChangedPrice(t *testing.T) {
	cars := newStore(t)

	first := writeDump(t, `{"title": "Opel Insignia", "price": 50000, "mileage": 120000, "source": "gratka", "link": "l-1"}`)
	if _, err := File(context.Background(), cars, first); err != nil {
		t.Fatal(err)
	}

	// same price: unchanged
	second := writeDump(t, `{"title": "CHANGED TITLE", "price": 50000, "mileage": 999999, "source": "gratka", "link": "l-1"}`)
	report, err := File(context.Background(), cars, second)
	if err != nil {
		t.Fatal(err)
	}
	if report.Unchanged != 1 || report.Updated != 0 || report.Inserted != 0 {
		t.Fatalf("same-price report: %+v", report)
	}

	// new price: only price moves
	third := writeDump(t, `{"title": "CHANGED TITLE", "price": 48000, "mileage": 999999, "source": "gratka", "link": "l-1"}`)
	report, err = File(context.Background(), cars, third)
	if err != nil {
		t.Fatal(err)
	}
	if report.Updated != 1 {
		t.Fatalf("price-change report: %+v", report)
	}

	var title string
	var price, mileage int64
	err = cars.DB().QueryRow(`SELECT title, price, mileage FROM cars WHERE link = 'l-1'`).
		Scan(&title, &price, &mileage)
	if err != nil {
		t.Fatal(err)
	}
	if price != 48000 {
		t.Fatalf("price not updated: %d", price)
	}
	if title != "Opel Insignia" || mileage != 120000 {
		t.Fatalf("non-price fields must keep first-seen values: title=%q mileage=%d", title, mileage)
	}
}

func TestFileCoercesMalformedNumbers(t *testing.T) {
	cars := newStore(t)
	dump := writeDump(t, `{"title": "Opel Astra", "price": "ask dealer", "mileage": null, "source": "gratka", "link": "l-9"}`)

	report, err := File(context.Background(), cars, dump)
	if err != nil {
		t.Fatalf("malformed numerics must not fail the row: %v", err)
	}
	if report.Inserted != 1 {
		t.Fatalf("report: %+v", report)
	}

	var price int64
	if err := cars.DB().QueryRow(`SELECT price FROM cars WHERE link = 'l-9'`).Scan(&price); err != nil {
		t.Fatal(err)
	}
	if price != 0 {
		t.Fatalf("malformed price: got %d, want 0", price)
	}
}

func TestFileSkipsListingWithoutLink(t *testing.T) {
	cars := newStore(t)
	dump := writeDump(t, `{"title": "No link", "price": 100, "source": "gratka"}`)

	report, err := File(context.Background(), cars, dump)
	if err != nil {
		t.Fatal(err)
	}
	if report.Failed != 1 || report.Inserted != 0 {
		t.Fatalf("report: %+v", report)
	}
}

func TestFileJSONArrayLayout(t *testing.T) {
	cars := newStore(t)
	path := filepath.Join(t.TempDir(), "dump.json")
	body := `[
		{"title": "Opel Corsa", "price": 20000, "source": "gratka", "link": "a-1"},
		{"title": "Opel Astra", "price": 30000, "source": "gratka", "link": "a-2"}
	]`
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}

	report, err := File(context.Background(), cars, path)
	if err != nil {
		t.Fatal(err)
	}
	if report.Inserted != 2 {
		t.Fatalf("report: %+v", report)
	}
}
