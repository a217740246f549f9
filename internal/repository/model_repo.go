package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/Lucky-luke36/auto-arbitrage/internal/model"
)

// ModelRepo manages the derived clean_models and filtered_models tables.
type ModelRepo struct {
	db *sql.DB
}

func NewModelRepo(db *sql.DB) *ModelRepo {
	return &ModelRepo{db: db}
}

// ReplaceCleanModels rebuilds the clean_models table from the given set.
func (r *ModelRepo) ReplaceCleanModels(ctx context.Context, models []string) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin clean_models tx: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM clean_models`); err != nil {
		return fmt.Errorf("clear clean_models: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `INSERT OR IGNORE INTO clean_models (model) VALUES (?)`)
	if err != nil {
		return fmt.Errorf("prepare clean_models insert: %w", err)
	}
	defer stmt.Close()

	for _, m := range models {
		if _, err := stmt.ExecContext(ctx, m); err != nil {
			return fmt.Errorf("insert clean model %q: %w", m, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit clean_models: %w", err)
	}
	return nil
}

// CleanModels returns the canonical model candidate set, sorted.
func (r *ModelRepo) CleanModels(ctx context.Context) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT model FROM clean_models ORDER BY model`)
	if err != nil {
		return nil, fmt.Errorf("select clean_models: %w", err)
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var m string
		if err := rows.Scan(&m); err != nil {
			return nil, fmt.Errorf("scan clean model: %w", err)
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

// ReplaceFilteredModels rebuilds the filtered_models table with the rows
// that survived fuzzy matching.
func (r *ModelRepo) ReplaceFilteredModels(ctx context.Context, rows []model.FilteredModel) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin filtered_models tx: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM filtered_models`); err != nil {
		return fmt.Errorf("clear filtered_models: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO filtered_models (make, matched_model, year, mileage, price)
		VALUES (?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("prepare filtered_models insert: %w", err)
	}
	defer stmt.Close()

	for _, fm := range rows {
		if _, err := stmt.ExecContext(ctx, fm.Make, fm.MatchedModel, fm.Year, fm.Mileage, fm.Price); err != nil {
			return fmt.Errorf("insert filtered model %q: %w", fm.MatchedModel, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit filtered_models: %w", err)
	}
	return nil
}

// FilteredModels returns the derived dataset, mainly for verification.
func (r *ModelRepo) FilteredModels(ctx context.Context) ([]model.FilteredModel, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT make, matched_model, year, mileage, price FROM filtered_models
	`)
	if err != nil {
		return nil, fmt.Errorf("select filtered_models: %w", err)
	}
	defer rows.Close()

	var out []model.FilteredModel
	for rows.Next() {
		var (
			fm      model.FilteredModel
			mileage sql.NullInt64
			price   sql.NullInt64
		)
		if err := rows.Scan(&fm.Make, &fm.MatchedModel, &fm.Year, &mileage, &price); err != nil {
			return nil, fmt.Errorf("scan filtered model: %w", err)
		}
		fm.Mileage = mileage.Int64
		fm.Price = price.Int64
		out = append(out, fm)
	}
	return out, rows.Err()
}
