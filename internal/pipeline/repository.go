package pipeline

import (
	"context"
	"database/sql"
)

// Repository handles database operations for run tracking.
type Repository struct {
	db *sql.DB
}

// NewRepository creates a new run-ledger repository.
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// CreateRun creates a new forecast run record.
func (r *Repository) CreateRun(ctx context.Context, run *ForecastRun) error {
	query := `
		INSERT INTO forecast_runs (
			run_id, date, status, total_keys,
			skipped_keys, total_records, started_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id
	`

	err := r.db.QueryRowContext(
		ctx, query,
		run.RunID, run.Date, run.Status, run.TotalKeys,
		run.SkippedKeys, run.TotalRecords, run.StartedAt,
	).Scan(&run.ID)

	return err
}

// UpdateRun updates an existing forecast run.
func (r *Repository) UpdateRun(ctx context.Context, run *ForecastRun) error {
	query := `
		UPDATE forecast_runs
		SET status = $1, skipped_keys = $2,
		    completed_at = $3, error_message = $4
		WHERE id = $5
	`

	_, err := r.db.ExecContext(
		ctx, query,
		run.Status, run.SkippedKeys,
		run.CompletedAt, run.ErrorMessage, run.ID,
	)

	return err
}

// GetLatestRun retrieves the most recently started run.
func (r *Repository) GetLatestRun(ctx context.Context) (*ForecastRun, error) {
	query := `
		SELECT id, run_id, date, status, total_keys,
		       skipped_keys, total_records, started_at, completed_at, error_message
		FROM forecast_runs
		ORDER BY started_at DESC
		LIMIT 1
	`

	run := &ForecastRun{}
	err := r.db.QueryRowContext(ctx, query).Scan(
		&run.ID, &run.RunID, &run.Date, &run.Status, &run.TotalKeys,
		&run.SkippedKeys, &run.TotalRecords, &run.StartedAt,
		&run.CompletedAt, &run.ErrorMessage,
	)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	return run, nil
}

// CreateKeyJob creates a per-key job record under a run.
func (r *Repository) CreateKeyJob(ctx context.Context, job *KeyJob) error {
	query := `
		INSERT INTO forecast_key_jobs (
			forecast_run_id, bar_name, brand_name, status, error_message, processed_at
		) VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id
	`

	err := r.db.QueryRowContext(
		ctx, query,
		job.ForecastRunID, job.Bar, job.Brand, job.Status, job.ErrorMessage, job.ProcessedAt,
	).Scan(&job.ID)

	return err
}

// GetKeyJobsByRunID retrieves all key jobs for a run.
func (r *Repository) GetKeyJobsByRunID(ctx context.Context, runID int64) ([]*KeyJob, error) {
	query := `
		SELECT id, forecast_run_id, bar_name, brand_name, status, error_message, processed_at
		FROM forecast_key_jobs
		WHERE forecast_run_id = $1
		ORDER BY id
	`

	rows, err := r.db.QueryContext(ctx, query, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var jobs []*KeyJob
	for rows.Next() {
		job := &KeyJob{}
		err := rows.Scan(
			&job.ID, &job.ForecastRunID, &job.Bar, &job.Brand,
			&job.Status, &job.ErrorMessage, &job.ProcessedAt,
		)
		if err != nil {
			return nil, err
		}
		jobs = append(jobs, job)
	}

	return jobs, rows.Err()
}

// GetSkippedKeyJobs retrieves the skipped keys of a run for operational
// follow-up.
func (r *Repository) GetSkippedKeyJobs(ctx context.Context, runID int64) ([]*KeyJob, error) {
	query := `
		SELECT id, forecast_run_id, bar_name, brand_name, status, error_message, processed_at
		FROM forecast_key_jobs
		WHERE forecast_run_id = $1 AND status = $2
		ORDER BY id
	`

	rows, err := r.db.QueryContext(ctx, query, runID, KeyStatusSkipped)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var jobs []*KeyJob
	for rows.Next() {
		job := &KeyJob{}
		err := rows.Scan(
			&job.ID, &job.ForecastRunID, &job.Bar, &job.Brand,
			&job.Status, &job.ErrorMessage, &job.ProcessedAt,
		)
		if err != nil {
			return nil, err
		}
		jobs = append(jobs, job)
	}

	return jobs, rows.Err()
}
