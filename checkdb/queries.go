package checkdb

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"femcheck.openqed.org/internal/logging"
	"femcheck.openqed.org/internal/models"
)

// Queries wraps the statements the rest of the application runs against
// run history.
type Queries struct {
	db     *sql.DB
	logger *slog.Logger
}

func New(db *sql.DB, logger *slog.Logger) *Queries {
	return &Queries{db: db, logger: logger}
}

// RecordReport stores a verification report as a run with its per-check
// results and returns the new run ID.
func (q *Queries) RecordReport(ctx context.Context, report models.Report) (int64, error) {
	run, results := fromReport(report)
	return q.InsertRun(ctx, run, results)
}

// InsertRun stores one run and its results in a single transaction.
func (q *Queries) InsertRun(ctx context.Context, run Run, results []Result) (int64, error) {
	tx, err := q.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("error starting transaction: %w", err)
	}
	defer logging.SafeRollbackWithLogging(tx, q.logger, "insert_run")

	res, err := tx.ExecContext(ctx, `
		INSERT INTO runs (started_at, finished_at, hostname, platform, status)
		VALUES (?, ?, ?, ?, ?);
	`,
		run.StartedAt.UnixMilli(), run.FinishedAt.UnixMilli(),
		run.Hostname, run.Platform, run.Status,
	)
	if err != nil {
		return 0, fmt.Errorf("error inserting run: %w", err)
	}

	runID, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("error reading run id: %w", err)
	}

	for _, result := range results {
		_, err = tx.ExecContext(ctx, `
			INSERT INTO check_results (run_id, name, status, version, detail, advice, output, duration_millis)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?);
		`,
			runID, result.Name, result.Status, result.Version,
			result.Detail, result.Advice, result.Output, result.DurationMillis,
		)
		if err != nil {
			return 0, fmt.Errorf("error inserting result for %s: %w", result.Name, err)
		}
	}

	if err = tx.Commit(); err != nil {
		return 0, fmt.Errorf("error committing run: %w", err)
	}
	return runID, nil
}

const runColumns = "id, started_at, finished_at, hostname, platform, status"

func scanRun(row interface{ Scan(...any) error }) (Run, error) {
	var run Run
	var started, finished int64
	err := row.Scan(&run.ID, &started, &finished, &run.Hostname, &run.Platform, &run.Status)
	if err != nil {
		return Run{}, err
	}
	run.StartedAt = time.UnixMilli(started).UTC()
	run.FinishedAt = time.UnixMilli(finished).UTC()
	return run, nil
}

// GetRun retrieves one run summary by ID. Returns sql.ErrNoRows when the
// run does not exist.
func (q *Queries) GetRun(ctx context.Context, id int64) (Run, error) {
	row := q.db.QueryRowContext(ctx,
		`SELECT `+runColumns+` FROM runs WHERE id = ?`, id)
	return scanRun(row)
}

// LatestRun retrieves the most recent run summary.
func (q *Queries) LatestRun(ctx context.Context) (Run, error) {
	row := q.db.QueryRowContext(ctx,
		`SELECT `+runColumns+` FROM runs ORDER BY id DESC LIMIT 1`)
	return scanRun(row)
}

// ListRuns retrieves up to limit run summaries, newest first.
func (q *Queries) ListRuns(ctx context.Context, limit int) ([]Run, error) {
	rows, err := q.db.QueryContext(ctx,
		`SELECT `+runColumns+` FROM runs ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close() // nolint:errcheck

	var runs []Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

// ResultsForRun retrieves the check results belonging to a run, in insert
// order (manifest order).
func (q *Queries) ResultsForRun(ctx context.Context, runID int64) ([]Result, error) {
	rows, err := q.db.QueryContext(ctx, `
		SELECT run_id, name, status, version, detail, advice, output, duration_millis
		FROM check_results WHERE run_id = ? ORDER BY rowid`, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close() // nolint:errcheck

	var results []Result
	for rows.Next() {
		var result Result
		err := rows.Scan(&result.RunID, &result.Name, &result.Status, &result.Version,
			&result.Detail, &result.Advice, &result.Output, &result.DurationMillis)
		if err != nil {
			return nil, err
		}
		results = append(results, result)
	}
	return results, rows.Err()
}

// LatestResultForCheck retrieves the most recent recorded outcome for one
// named check. Returns sql.ErrNoRows when the check has never run.
func (q *Queries) LatestResultForCheck(ctx context.Context, name string) (Result, error) {
	row := q.db.QueryRowContext(ctx, `
		SELECT run_id, name, status, version, detail, advice, output, duration_millis
		FROM check_results WHERE name = ? ORDER BY run_id DESC LIMIT 1`, name)

	var result Result
	err := row.Scan(&result.RunID, &result.Name, &result.Status, &result.Version,
		&result.Detail, &result.Advice, &result.Output, &result.DurationMillis)
	if err != nil {
		return Result{}, err
	}
	return result, nil
}

// LatestReport rebuilds the most recent run as a report. Returns
// sql.ErrNoRows when no run has been recorded.
func (q *Queries) LatestReport(ctx context.Context) (int64, models.Report, error) {
	run, err := q.LatestRun(ctx)
	if err != nil {
		return 0, models.Report{}, err
	}
	return q.reportForRun(ctx, run)
}

// ReportForRunID rebuilds one run as a report.
func (q *Queries) ReportForRunID(ctx context.Context, id int64) (int64, models.Report, error) {
	run, err := q.GetRun(ctx, id)
	if err != nil {
		return 0, models.Report{}, err
	}
	return q.reportForRun(ctx, run)
}

func (q *Queries) reportForRun(ctx context.Context, run Run) (int64, models.Report, error) {
	results, err := q.ResultsForRun(ctx, run.ID)
	if err != nil {
		return 0, models.Report{}, err
	}
	return run.ID, toReport(run, results), nil
}
