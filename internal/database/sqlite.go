package database

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3"
)

// Open opens (creating if necessary) a single-file listing store and
// applies the pragmas every writer relies on.
func Open(path string) (*sql.DB, error) {
	if dir := filepath.Dir(path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("ensure data dir: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", path, err)
	}

	if _, err := db.Exec(`PRAGMA journal_mode = WAL;`); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("pragma journal_mode: %w", err)
	}
	if _, err := db.Exec(`PRAGMA busy_timeout = 5000;`); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("pragma busy_timeout: %w", err)
	}

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite %s: %w", path, err)
	}

	return db, nil
}

// Migrate creates the canonical schema: the cars table plus the derived
// clean_models and filtered_models tables.
func Migrate(db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS cars (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			title TEXT,
			price INTEGER,
			currency TEXT,
			mileage INTEGER,
			mileage_unit TEXT,
			transmission TEXT,
			fuelType TEXT,
			source TEXT,
			link TEXT UNIQUE,
			year TEXT,
			make TEXT,
			model TEXT,
			trim TEXT,
			manual_review INTEGER DEFAULT 0
		)`,
		`CREATE TABLE IF NOT EXISTS clean_models (
			model TEXT PRIMARY KEY
		)`,
		`CREATE TABLE IF NOT EXISTS filtered_models (
			make TEXT,
			matched_model TEXT,
			year TEXT,
			mileage INTEGER,
			price INTEGER
		)`,
		`CREATE INDEX IF NOT EXISTS idx_cars_make_model_year ON cars(make, model, year)`,
	}

	for _, stmt := range stmts {
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("apply schema: %w", err)
		}
	}
	return nil
}
