package pipeline

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/Lucky-luke36/auto-arbitrage/internal/normalize"
	"github.com/Lucky-luke36/auto-arbitrage/internal/repository"
)

// NormalizeReport summarizes a categorical normalization pass.
type NormalizeReport struct {
	Rows    int `json:"rows"`
	Changed int `json:"changed"`
}

// NormalizeFields canonicalizes the fuelType and transmission values of
// every record in a store. NULLs stay NULL and unrecognized values pass
// through unchanged; only rows whose values actually change are written.
func NormalizeFields(ctx context.Context, cars *repository.CarRepo) (*NormalizeReport, error) {
	rows, err := cars.Categoricals(ctx)
	if err != nil {
		return nil, err
	}

	report := &NormalizeReport{Rows: len(rows)}

	tx, err := cars.DB().BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin normalize tx: %w", err)
	}
	defer tx.Rollback()

	for _, row := range rows {
		fuel := canonicalNull(row.FuelType, normalize.FuelTypes)
		trans := canonicalNull(row.Transmission, normalize.Transmissions)

		if fuel == row.FuelType && trans == row.Transmission {
			continue
		}
		if err := cars.UpdateCategoricals(ctx, tx, row.ID, fuel, trans); err != nil {
			return nil, err
		}
		report.Changed++
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit normalize tx: %w", err)
	}

	slog.Info("normalized categorical fields", "rows", report.Rows, "changed", report.Changed)
	return report, nil
}

func canonicalNull(v sql.NullString, table map[string]string) sql.NullString {
	if !v.Valid || v.String == "" {
		return v
	}
	return sql.NullString{String: normalize.Canonical(v.String, table), Valid: true}
}
