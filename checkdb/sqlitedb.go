package checkdb

import (
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite" // Pure Go SQLite driver
)

// createDB opens the SQLite database and creates the run-history tables.
func createDB(config Config) (*sql.DB, error) {
	db, err := sql.Open("sqlite", config.DBPath)
	if err != nil {
		return nil, fmt.Errorf("error opening database: %w", err)
	}

	if _, err = db.Exec("PRAGMA foreign_keys = ON;"); err != nil {
		return nil, fmt.Errorf("error enabling foreign keys: %w", err)
	}

	if _, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS runs (
			id          INTEGER PRIMARY KEY AUTOINCREMENT,
			started_at  INTEGER NOT NULL,
			finished_at INTEGER NOT NULL,
			hostname    TEXT NOT NULL,
			platform    TEXT NOT NULL,
			status      TEXT NOT NULL
		);

		CREATE TABLE IF NOT EXISTS check_results (
			run_id          INTEGER NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
			name            TEXT NOT NULL,
			status          TEXT NOT NULL,
			version         TEXT NOT NULL DEFAULT '',
			detail          TEXT NOT NULL DEFAULT '',
			advice          TEXT NOT NULL DEFAULT '',
			output          TEXT NOT NULL DEFAULT '',
			duration_millis INTEGER NOT NULL DEFAULT 0
		);

		CREATE INDEX IF NOT EXISTS idx_check_results_run_id ON check_results(run_id);
		CREATE INDEX IF NOT EXISTS idx_check_results_name ON check_results(name);
	`); err != nil {
		return nil, fmt.Errorf("error creating tables: %w", err)
	}

	return db, nil
}
