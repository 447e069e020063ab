package telemetry

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"
)

// Archive persists run summaries and population series to a sqlite file so
// parameter studies can be queried across runs.
type Archive struct {
	db *sql.DB
}

// RunMeta describes one run for the archive.
type RunMeta struct {
	Seed            int64
	HorizonDays     float64
	Grid            string // e.g. "16x16x4 square"
	FinalPopulation int
	Days            int
}

// OpenArchive opens (creating if needed) the archive at path.
func OpenArchive(ctx context.Context, path string) (*Archive, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening archive: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("pinging archive: %w", err)
	}
	if err := createTables(ctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &Archive{db: db}, nil
}

func createTables(ctx context.Context, db *sql.DB) error {
	_, err := db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS runs (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			started_at TEXT NOT NULL,
			seed INTEGER NOT NULL,
			horizon_days REAL NOT NULL,
			grid TEXT NOT NULL,
			final_population INTEGER NOT NULL,
			days INTEGER NOT NULL
		);
		CREATE TABLE IF NOT EXISTS population (
			run_id INTEGER NOT NULL REFERENCES runs(id),
			day INTEGER NOT NULL,
			clade INTEGER NOT NULL,
			count INTEGER NOT NULL,
			total INTEGER NOT NULL,
			PRIMARY KEY (run_id, day, clade)
		);
	`)
	if err != nil {
		return fmt.Errorf("creating archive tables: %w", err)
	}
	return nil
}

// SaveRun inserts a run and its population series, returning the run id.
func (a *Archive) SaveRun(ctx context.Context, meta RunMeta, rows []PopulationRow) (int64, error) {
	tx, err := a.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("beginning archive tx: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `
		INSERT INTO runs (started_at, seed, horizon_days, grid, final_population, days)
		VALUES (?, ?, ?, ?, ?, ?)
	`, time.Now().UTC().Format(time.RFC3339), meta.Seed, meta.HorizonDays, meta.Grid,
		meta.FinalPopulation, meta.Days)
	if err != nil {
		return 0, fmt.Errorf("inserting run: %w", err)
	}
	runID, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("resolving run id: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO population (run_id, day, clade, count, total)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(run_id, day, clade) DO UPDATE SET
			count = excluded.count,
			total = excluded.total
	`)
	if err != nil {
		return 0, fmt.Errorf("preparing population insert: %w", err)
	}
	defer stmt.Close()

	for _, row := range rows {
		if _, err := stmt.ExecContext(ctx, runID, row.Day, row.Clade, row.Count, row.Total); err != nil {
			return 0, fmt.Errorf("inserting population row: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("committing archive tx: %w", err)
	}
	return runID, nil
}

// Close closes the archive.
func (a *Archive) Close() error {
	if a == nil || a.db == nil {
		return nil
	}
	return a.db.Close()
}
