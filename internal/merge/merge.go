package merge

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"

	"github.com/Lucky-luke36/auto-arbitrage/internal/database"
)

// SourceReport carries the per-source row accounting of a rebuild.
type SourceReport struct {
	Path     string `json:"path"`
	Read     int    `json:"read"`
	Inserted int    `json:"inserted"`
	Skipped  int    `json:"skipped"`
}

// Report summarizes a full rebuild.
type Report struct {
	Sources []SourceReport `json:"sources"`
}

func (r *Report) Inserted() int {
	total := 0
	for _, s := range r.Sources {
		total += s.Inserted
	}
	return total
}

// Rebuild merges the source stores into a fresh canonical store at
// destPath. Any prior content at destPath is discarded. Sources are
// processed in the given order and rows within a source in rowid order;
// a link already present in the destination makes the insert a no-op, so
// the first writer wins for all fields. Row-level failures are logged
// and skipped, they never abort the batch.
func Rebuild(ctx context.Context, destPath string, sourcePaths []string) (*Report, error) {
	for _, leftover := range []string{destPath, destPath + "-wal", destPath + "-shm"} {
		if err := os.Remove(leftover); err != nil && !os.IsNotExist(err) {
			return nil, fmt.Errorf("remove previous store %s: %w", leftover, err)
		}
	}

	dest, err := database.Open(destPath)
	if err != nil {
		return nil, fmt.Errorf("open destination: %w", err)
	}
	defer dest.Close()

	if err := database.Migrate(dest); err != nil {
		return nil, fmt.Errorf("migrate destination: %w", err)
	}

	report := &Report{}
	for _, path := range sourcePaths {
		src, err := copySource(ctx, dest, path)
		if err != nil {
			return nil, err
		}
		report.Sources = append(report.Sources, src)
	}
	return report, nil
}

const mergeColumns = `title, price, currency, mileage, mileage_unit,
	transmission, fuelType, source, link, year, make, model, trim, manual_review`

func copySource(ctx context.Context, dest *sql.DB, path string) (SourceReport, error) {
	report := SourceReport{Path: path}

	src, err := database.Open(path)
	if err != nil {
		return report, fmt.Errorf("open source %s: %w", path, err)
	}
	defer src.Close()

	rows, err := src.QueryContext(ctx, `SELECT `+mergeColumns+` FROM cars ORDER BY id`)
	if err != nil {
		return report, fmt.Errorf("read source %s: %w", path, err)
	}
	defer rows.Close()

	stmt, err := dest.PrepareContext(ctx, `
		INSERT OR IGNORE INTO cars (`+mergeColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return report, fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	for rows.Next() {
		vals := make([]sql.NullString, 11)
		var price, mileage sql.NullInt64
		var review sql.NullInt64

		// title, currency, mileage_unit, transmission, fuelType, source,
		// link, year, make, model, trim pass through untyped as text
		if err := rows.Scan(
			&vals[0], &price, &vals[1], &mileage, &vals[2],
			&vals[3], &vals[4], &vals[5], &vals[6], &vals[7],
			&vals[8], &vals[9], &vals[10], &review,
		); err != nil {
			slog.Warn("skipping unreadable row", "source", path, "error", err)
			report.Skipped++
			continue
		}
		report.Read++

		res, err := stmt.ExecContext(ctx,
			vals[0], price, vals[1], mileage, vals[2],
			vals[3], vals[4], vals[5], vals[6], vals[7],
			vals[8], vals[9], vals[10], review,
		)
		if err != nil {
			slog.Warn("skipping row", "source", path, "link", vals[6].String, "error", err)
			report.Skipped++
			continue
		}

		affected, err := res.RowsAffected()
		if err != nil {
			return report, fmt.Errorf("rows affected: %w", err)
		}
		if affected == 0 {
			// duplicate link, first writer already holds the record
			report.Skipped++
		} else {
			report.Inserted++
		}
	}
	if err := rows.Err(); err != nil {
		return report, fmt.Errorf("iterate source %s: %w", path, err)
	}

	slog.Info("merged source",
		"source", path,
		"read", report.Read,
		"inserted", report.Inserted,
		"skipped", report.Skipped,
	)
	return report, nil
}
