package pipeline

import (
	"context"
	"log/slog"
	"sort"

	"github.com/Lucky-luke36/auto-arbitrage/internal/matching"
	"github.com/Lucky-luke36/auto-arbitrage/internal/model"
	"github.com/Lucky-luke36/auto-arbitrage/internal/repository"
)

// ExtractCleanModels rebuilds the clean_models table of the reference
// store from its distinct raw model strings: cleaned, deduplicated and
// sorted. Returns the number of candidates written.
func ExtractCleanModels(ctx context.Context, cars *repository.CarRepo, models *repository.ModelRepo) (int, error) {
	raw, err := cars.DistinctModels(ctx)
	if err != nil {
		return 0, err
	}

	seen := make(map[string]struct{}, len(raw))
	cleaned := make([]string, 0, len(raw))
	for _, m := range raw {
		c := matching.CleanModel(m)
		if c == "" {
			continue
		}
		if _, dup := seen[c]; dup {
			continue
		}
		seen[c] = struct{}{}
		cleaned = append(cleaned, c)
	}
	sort.Strings(cleaned)

	if err := models.ReplaceCleanModels(ctx, cleaned); err != nil {
		return 0, err
	}

	slog.Info("extracted clean models", "raw", len(raw), "cleaned", len(cleaned))
	return len(cleaned), nil
}

// MatchReport summarizes a fuzzy model mapping pass.
type MatchReport struct {
	Rows      int `json:"rows"`
	Matched   int `json:"matched"`
	NoMatch   int `json:"no_match"`
	Kept      int `json:"kept"`
	CutModels int `json:"cut_models"`
}

// MatchModels maps every canonical record's raw model onto the reference
// store's clean model set and rebuilds filtered_models from the rows that
// matched. The raw model column is never overwritten; the match lands
// only in the derived table. Matched models with fewer than minRows rows
// are cut, they carry too little signal for per-segment price modeling.
func MatchModels(ctx context.Context, target *repository.CarRepo, targetModels *repository.ModelRepo, reference *repository.ModelRepo, m *matching.Matcher, minRows int) (*MatchReport, error) {
	candidates, err := reference.CleanModels(ctx)
	if err != nil {
		return nil, err
	}
	slog.Info("loaded clean model candidates", "count", len(candidates))

	report := &MatchReport{}
	tracker := NewProgressTracker(0)

	var filtered []model.FilteredModel
	perModel := make(map[string]int)

	// walk the whole store in pages to keep memory flat
	const page = 200
	for offset := 0; ; offset += page {
		cars, err := target.List(ctx, repository.ListQuery{Limit: page, Offset: offset})
		if err != nil {
			return nil, err
		}
		if len(cars) == 0 {
			break
		}

		for _, c := range cars {
			report.Rows++
			tracker.IncrProcessed()

			matched, ok := m.Match(c.Model, candidates)
			if !ok {
				report.NoMatch++
				tracker.IncrNoMatch()
				continue
			}
			report.Matched++
			tracker.IncrMatched()
			perModel[matched]++
			filtered = append(filtered, model.FilteredModel{
				Make:         c.Make,
				MatchedModel: matched,
				Year:         c.Year,
				Mileage:      c.Mileage,
				Price:        c.Price,
			})
		}

		if len(cars) < page {
			break
		}
	}

	if minRows > 1 {
		kept := filtered[:0]
		cut := make(map[string]struct{})
		for _, fm := range filtered {
			if perModel[fm.MatchedModel] < minRows {
				cut[fm.MatchedModel] = struct{}{}
				continue
			}
			kept = append(kept, fm)
		}
		filtered = kept
		report.CutModels = len(cut)
	}
	report.Kept = len(filtered)

	if err := targetModels.ReplaceFilteredModels(ctx, filtered); err != nil {
		return nil, err
	}

	slog.Info("matched models",
		"rows", report.Rows,
		"matched", report.Matched,
		"no_match", report.NoMatch,
		"kept", report.Kept,
		"cut_models", report.CutModels,
	)
	return report, nil
}
