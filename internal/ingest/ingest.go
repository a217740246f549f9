package ingest

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/Lucky-luke36/auto-arbitrage/internal/model"
	"github.com/Lucky-luke36/auto-arbitrage/internal/repository"
)

// Listing is the raw record shape produced by the scraping collaborators.
// price and mileage arrive as numbers or numeric strings depending on the
// marketplace and are coerced on decode.
type Listing struct {
	Title        string  `json:"title"`
	Price        FlexInt `json:"price"`
	Currency     string  `json:"currency"`
	Mileage      FlexInt `json:"mileage"`
	MileageUnit  string  `json:"mileage_unit"`
	Transmission string  `json:"transmission"`
	FuelType     string  `json:"fuelType"`
	Source       string  `json:"source"`
	Link         string  `json:"link"`
	Year         string  `json:"year"`
	Make         string  `json:"make"`
	Model        string  `json:"model"`
	Trim         string  `json:"trim"`
	ManualReview FlexInt `json:"manual_review"`
}

// FlexInt decodes a JSON number, numeric string or null. Malformed
// values coerce to zero and set Malformed so the caller can log a
// data-quality warning instead of failing the row.
type FlexInt struct {
	Value     int64
	Malformed bool
}

func (f *FlexInt) UnmarshalJSON(data []byte) error {
	s := strings.TrimSpace(string(data))
	if s == "null" || s == `""` {
		return nil
	}
	s = strings.Trim(s, `"`)
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	// tolerate decimal forms like "50000.0"
	if dot := strings.IndexByte(s, '.'); dot >= 0 {
		s = s[:dot]
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		f.Malformed = true
		return nil
	}
	f.Value = n
	return nil
}

// Report accounts for every listing of an ingested dump.
type Report struct {
	Read      int `json:"read"`
	Inserted  int `json:"inserted"`
	Updated   int `json:"updated"`
	Unchanged int `json:"unchanged"`
	Failed    int `json:"failed"`
}

// File ingests a scraper dump into a marketplace store via the price-only
// upsert: new links insert, seen links update price when it changed and
// nothing else. The file holds either a JSON array of listings or JSON
// Lines with one listing per line.
func File(ctx context.Context, cars *repository.CarRepo, path string) (*Report, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open dump %s: %w", path, err)
	}
	defer f.Close()

	listings, err := decode(f)
	if err != nil {
		return nil, fmt.Errorf("decode dump %s: %w", path, err)
	}

	report := &Report{}
	for _, l := range listings {
		report.Read++

		if strings.TrimSpace(l.Link) == "" {
			slog.Warn("skipping listing without link", "dump", path, "title", l.Title)
			report.Failed++
			continue
		}
		if l.Price.Malformed {
			slog.Warn("malformed price coerced to zero", "link", l.Link)
		}
		if l.Mileage.Malformed {
			slog.Warn("malformed mileage coerced to zero", "link", l.Link)
		}

		outcome, err := cars.UpsertListing(ctx, toCar(l))
		if err != nil {
			slog.Warn("skipping listing", "link", l.Link, "error", err)
			report.Failed++
			continue
		}
		switch outcome {
		case repository.UpsertInserted:
			report.Inserted++
		case repository.UpsertUpdated:
			report.Updated++
		default:
			report.Unchanged++
		}
	}

	slog.Info("ingested dump",
		"dump", path,
		"read", report.Read,
		"inserted", report.Inserted,
		"updated", report.Updated,
		"unchanged", report.Unchanged,
		"failed", report.Failed,
	)
	return report, nil
}

func toCar(l Listing) model.Car {
	return model.Car{
		Title:        l.Title,
		Price:        l.Price.Value,
		Currency:     l.Currency,
		Mileage:      l.Mileage.Value,
		MileageUnit:  l.MileageUnit,
		Transmission: l.Transmission,
		FuelType:     l.FuelType,
		Source:       l.Source,
		Link:         l.Link,
		Year:         l.Year,
		Make:         l.Make,
		Model:        l.Model,
		Trim:         l.Trim,
		ManualReview: l.ManualReview.Value != 0,
	}
}

// decode handles both dump layouts: a JSON array ("-o listings.json") and
// JSON Lines ("-o listings.jl").
func decode(r io.Reader) ([]Listing, error) {
	br := bufio.NewReader(r)

	first, err := firstByte(br)
	if err != nil {
		if err == io.EOF {
			return nil, nil
		}
		return nil, err
	}

	if first == '[' {
		var listings []Listing
		if err := json.NewDecoder(br).Decode(&listings); err != nil {
			return nil, err
		}
		return listings, nil
	}

	var listings []Listing
	scanner := bufio.NewScanner(br)
	scanner.Buffer(make([]byte, 0, 1024*1024), 1024*1024)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		var l Listing
		if err := json.Unmarshal([]byte(line), &l); err != nil {
			return nil, fmt.Errorf("line %q: %w", line, err)
		}
		listings = append(listings, l)
	}
	return listings, scanner.Err()
}

func firstByte(br *bufio.Reader) (byte, error) {
	for {
		b, err := br.Peek(1)
		if err != nil {
			return 0, err
		}
		switch b[0] {
		case ' ', '\t', '\n', '\r':
			if _, err := br.ReadByte(); err != nil {
				return 0, err
			}
		default:
			return b[0], nil
		}
	}
}
