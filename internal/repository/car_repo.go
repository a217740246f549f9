package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/Lucky-luke36/auto-arbitrage/internal/model"
)

type CarRepo struct {
	db *sql.DB
}

func NewCarRepo(db *sql.DB) *CarRepo {
	return &CarRepo{db: db}
}

func (r *CarRepo) DB() *sql.DB {
	return r.db
}

const carColumns = `id, title, price, currency, mileage, mileage_unit,
	transmission, fuelType, source, link, year, make, model, trim, manual_review`

func scanCar(sc interface{ Scan(...any) error }) (model.Car, error) {
	var (
		c            model.Car
		title        sql.NullString
		price        sql.NullInt64
		currency     sql.NullString
		mileage      sql.NullInt64
		mileageUnit  sql.NullString
		transmission sql.NullString
		fuelType     sql.NullString
		source       sql.NullString
		link         sql.NullString
		year         sql.NullString
		mk           sql.NullString
		mdl          sql.NullString
		trim         sql.NullString
		review       sql.NullInt64
	)

	if err := sc.Scan(
		&c.ID, &title, &price, &currency, &mileage, &mileageUnit,
		&transmission, &fuelType, &source, &link, &year, &mk, &mdl, &trim, &review,
	); err != nil {
		return model.Car{}, err
	}

	c.Title = title.String
	c.Price = price.Int64
	c.Currency = currency.String
	c.Mileage = mileage.Int64
	c.MileageUnit = mileageUnit.String
	c.Transmission = transmission.String
	c.FuelType = fuelType.String
	c.Source = source.String
	c.Link = link.String
	c.Year = year.String
	c.Make = mk.String
	c.Model = mdl.String
	c.Trim = trim.String
	c.ManualReview = review.Int64 != 0
	return c, nil
}

type ListQuery struct {
	Make         string
	Model        string
	Year         string
	ManualReview *bool
	Limit        int
	Offset       int
}

func buildListSQL(q ListQuery, countOnly bool) (string, []any) {
	base := `SELECT ` + carColumns + ` FROM cars`
	if countOnly {
		base = `SELECT COUNT(*) FROM cars`
	}

	var where []string
	var args []any

	if strings.TrimSpace(q.Make) != "" {
		where = append(where, "make = ?")
		args = append(args, q.Make)
	}
	if strings.TrimSpace(q.Model) != "" {
		where = append(where, "model = ?")
		args = append(args, q.Model)
	}
	if strings.TrimSpace(q.Year) != "" {
		where = append(where, "year = ?")
		args = append(args, q.Year)
	}
	if q.ManualReview != nil {
		where = append(where, "manual_review = ?")
		if *q.ManualReview {
			args = append(args, 1)
		} else {
			args = append(args, 0)
		}
	}

	sqlStr := base
	if len(where) > 0 {
		sqlStr += " WHERE " + strings.Join(where, " AND ")
	}

	if !countOnly {
		sqlStr += " ORDER BY id DESC LIMIT ? OFFSET ?"
		limit := q.Limit
		if limit <= 0 || limit > 200 {
			limit = 50
		}
		offset := q.Offset
		if offset < 0 {
			offset = 0
		}
		args = append(args, limit, offset)
	}

	return sqlStr, args
}

func (r *CarRepo) List(ctx context.Context, q ListQuery) ([]model.Car, error) {
	sqlStr, args := buildListSQL(q, false)

	rows, err := r.db.QueryContext(ctx, sqlStr, args...)
	if err != nil {
		return nil, fmt.Errorf("list cars: %w", err)
	}
	defer rows.Close()

	out := make([]model.Car, 0, q.Limit)
	for rows.Next() {
		c, err := scanCar(rows)
		if err != nil {
			return nil, fmt.Errorf("scan car: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (r *CarRepo) Count(ctx context.Context, q ListQuery) (int, error) {
	sqlStr, args := buildListSQL(q, true)
	var total int
	if err := r.db.QueryRowContext(ctx, sqlStr, args...).Scan(&total); err != nil {
		return 0, fmt.Errorf("count cars: %w", err)
	}
	return total, nil
}

type StatsQuery struct {
	Make    string
	Model   string
	Year    string
	Mileage int64 // 0 = no mileage window
	Radius  int64
	Limit   int
}

// PriceStats returns price aggregates over a make/model/year segment.
// When q.Mileage is set the segment is restricted to a +/- Radius window
// and rows come back ordered by mileage distance.
func (r *CarRepo) PriceStats(ctx context.Context, q StatsQuery) (model.PriceStats, []model.Car, error) {
	var stats model.PriceStats

	radius := q.Radius
	if radius <= 0 {
		radius = 30000
	}
	limit := q.Limit
	if limit <= 0 || limit > 500 {
		limit = 500
	}

	var (
		avg sql.NullFloat64
		min sql.NullInt64
		max sql.NullInt64
	)

	if q.Mileage > 0 {
		err := r.db.QueryRowContext(ctx, `
			SELECT COUNT(*), AVG(price), MIN(price), MAX(price)
			FROM cars
			WHERE make = ? AND model = ? AND year = ?
			  AND mileage BETWEEN ? AND ?
		`, q.Make, q.Model, q.Year, q.Mileage-radius, q.Mileage+radius).
			Scan(&stats.Count, &avg, &min, &max)
		if err != nil {
			return stats, nil, fmt.Errorf("price stats: %w", err)
		}
	} else {
		err := r.db.QueryRowContext(ctx, `
			SELECT COUNT(*), AVG(price), MIN(price), MAX(price)
			FROM cars
			WHERE make = ? AND model = ? AND year = ?
		`, q.Make, q.Model, q.Year).
			Scan(&stats.Count, &avg, &min, &max)
		if err != nil {
			return stats, nil, fmt.Errorf("price stats: %w", err)
		}
	}
	stats.AvgPrice = avg.Float64
	stats.MinPrice = min.Int64
	stats.MaxPrice = max.Int64

	var (
		rows *sql.Rows
		err  error
	)
	if q.Mileage > 0 {
		rows, err = r.db.QueryContext(ctx, `
			SELECT `+carColumns+`
			FROM cars
			WHERE make = ? AND model = ? AND year = ?
			  AND mileage BETWEEN ? AND ?
			ORDER BY ABS(mileage - ?) ASC
			LIMIT ?
		`, q.Make, q.Model, q.Year, q.Mileage-radius, q.Mileage+radius, q.Mileage, limit)
	} else {
		rows, err = r.db.QueryContext(ctx, `
			SELECT `+carColumns+`
			FROM cars
			WHERE make = ? AND model = ? AND year = ?
			ORDER BY price ASC
			LIMIT ?
		`, q.Make, q.Model, q.Year, limit)
	}
	if err != nil {
		return stats, nil, fmt.Errorf("price stats rows: %w", err)
	}
	defer rows.Close()

	var out []model.Car
	for rows.Next() {
		c, err := scanCar(rows)
		if err != nil {
			return stats, nil, fmt.Errorf("scan car: %w", err)
		}
		out = append(out, c)
	}
	return stats, out, rows.Err()
}

// Makes returns the distinct non-empty makes with record counts.
func (r *CarRepo) Makes(ctx context.Context) ([]model.MakeCount, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT make, COUNT(*)
		FROM cars
		WHERE make IS NOT NULL AND make != ''
		GROUP BY make
		ORDER BY make
	`)
	if err != nil {
		return nil, fmt.Errorf("list makes: %w", err)
	}
	defer rows.Close()

	var out []model.MakeCount
	for rows.Next() {
		var mc model.MakeCount
		if err := rows.Scan(&mc.Make, &mc.Count); err != nil {
			return nil, fmt.Errorf("scan make: %w", err)
		}
		out = append(out, mc)
	}
	return out, rows.Err()
}

// DistinctModels returns every distinct non-empty raw model string.
func (r *CarRepo) DistinctModels(ctx context.Context) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT DISTINCT model
		FROM cars
		WHERE model IS NOT NULL AND model != ''
	`)
	if err != nil {
		return nil, fmt.Errorf("distinct models: %w", err)
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var m string
		if err := rows.Scan(&m); err != nil {
			return nil, fmt.Errorf("scan model: %w", err)
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

type UpsertOutcome int

const (
	UpsertInserted UpsertOutcome = iota
	UpsertUpdated
	UpsertUnchanged
)

// UpsertListing is the live-ingest write: insert the listing if its link
// is unseen; otherwise update only the price, and only when it changed.
// Every other field keeps its first-seen value.
func (r *CarRepo) UpsertListing(ctx context.Context, c model.Car) (UpsertOutcome, error) {
	var prevPrice sql.NullInt64
	err := r.db.QueryRowContext(ctx,
		`SELECT price FROM cars WHERE link = ?`, c.Link,
	).Scan(&prevPrice)

	exists := true
	if err == sql.ErrNoRows {
		exists = false
	} else if err != nil {
		return UpsertUnchanged, fmt.Errorf("lookup %s: %w", c.Link, err)
	}

	review := 0
	if c.ManualReview {
		review = 1
	}

	_, err = r.db.ExecContext(ctx, `
		INSERT INTO cars (
			link, title, price, currency, mileage, mileage_unit,
			transmission, fuelType, source, year, make, model, trim, manual_review
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(link) DO UPDATE SET
			price = excluded.price
		WHERE excluded.price != cars.price
	`, c.Link, c.Title, c.Price, c.Currency, c.Mileage, c.MileageUnit,
		c.Transmission, c.FuelType, c.Source, c.Year, c.Make, c.Model, c.Trim, review)
	if err != nil {
		return UpsertUnchanged, fmt.Errorf("upsert %s: %w", c.Link, err)
	}

	switch {
	case !exists:
		return UpsertInserted, nil
	case prevPrice.Int64 != c.Price:
		return UpsertUpdated, nil
	default:
		return UpsertUnchanged, nil
	}
}

// ReviewRow is a record selected for title reprocessing.
type ReviewRow struct {
	ID    int64
	Title string
	Year  string
}

// MissingMake returns rows with no make, in rowid order, starting after
// afterID so a resumed run skips already-committed batches.
func (r *CarRepo) MissingMake(ctx context.Context, afterID int64) ([]ReviewRow, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, title, year
		FROM cars
		WHERE (make IS NULL OR make = '') AND id > ?
		ORDER BY id
	`, afterID)
	if err != nil {
		return nil, fmt.Errorf("select missing makes: %w", err)
	}
	defer rows.Close()

	var out []ReviewRow
	for rows.Next() {
		var (
			row   ReviewRow
			title sql.NullString
			year  sql.NullString
		)
		if err := rows.Scan(&row.ID, &title, &year); err != nil {
			return nil, fmt.Errorf("scan review row: %w", err)
		}
		row.Title = title.String
		row.Year = year.String
		out = append(out, row)
	}
	return out, rows.Err()
}

// ApplyParsed writes parser output onto a record and clears its review
// flag. Runs inside the caller's batch transaction.
func (r *CarRepo) ApplyParsed(ctx context.Context, tx *sql.Tx, id int64, year, make, model, trim string) error {
	_, err := tx.ExecContext(ctx, `
		UPDATE cars
		SET year = ?, make = ?, model = ?, trim = ?, manual_review = 0
		WHERE id = ?
	`, year, make, model, trim, id)
	if err != nil {
		return fmt.Errorf("apply parsed to row %d: %w", id, err)
	}
	return nil
}

// FlagManualReview marks a record for human correction.
func (r *CarRepo) FlagManualReview(ctx context.Context, tx *sql.Tx, id int64) error {
	if _, err := tx.ExecContext(ctx,
		`UPDATE cars SET manual_review = 1 WHERE id = ?`, id); err != nil {
		return fmt.Errorf("flag row %d: %w", id, err)
	}
	return nil
}

// Delete removes a record.
func (r *CarRepo) Delete(ctx context.Context, tx *sql.Tx, id int64) error {
	if _, err := tx.ExecContext(ctx,
		`DELETE FROM cars WHERE id = ?`, id); err != nil {
		return fmt.Errorf("delete row %d: %w", id, err)
	}
	return nil
}

// CategoricalRow carries the raw fuel/transmission values of one record.
type CategoricalRow struct {
	ID           int64
	FuelType     sql.NullString
	Transmission sql.NullString
}

// Categoricals returns id, fuelType and transmission for every record.
func (r *CarRepo) Categoricals(ctx context.Context) ([]CategoricalRow, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, fuelType, transmission FROM cars`)
	if err != nil {
		return nil, fmt.Errorf("select categoricals: %w", err)
	}
	defer rows.Close()

	var out []CategoricalRow
	for rows.Next() {
		var row CategoricalRow
		if err := rows.Scan(&row.ID, &row.FuelType, &row.Transmission); err != nil {
			return nil, fmt.Errorf("scan categorical row: %w", err)
		}
		out = append(out, row)
	}
	return out, rows.Err()
}

// UpdateCategoricals rewrites the fuel/transmission values of a record.
func (r *CarRepo) UpdateCategoricals(ctx context.Context, tx *sql.Tx, id int64, fuel, transmission sql.NullString) error {
	_, err := tx.ExecContext(ctx, `
		UPDATE cars SET fuelType = ?, transmission = ? WHERE id = ?
	`, fuel, transmission, id)
	if err != nil {
		return fmt.Errorf("update categoricals row %d: %w", id, err)
	}
	return nil
}
