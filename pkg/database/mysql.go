package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"dev/bravebird/dashboard-verifier/pkg/models"

	_ "github.com/go-sql-driver/mysql"
)

// DB represents the database connection
type DB struct {
	conn *sql.DB
}

// New creates a new database connection
func New(dsn string) (*DB, error) {
	conn, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Configure connection pool
	conn.SetMaxOpenConns(25)
	conn.SetMaxIdleConns(5)
	conn.SetConnMaxLifetime(5 * time.Minute)

	// Test connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := conn.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &DB{conn: conn}, nil
}

// Close closes the database connection
func (db *DB) Close() error {
	return db.conn.Close()
}

// ==================== Verification Runs ====================

// CreateVerificationRun creates a new verification run record
func (db *DB) CreateVerificationRun(ctx context.Context, run *models.VerificationRun) error {
	query := `
		INSERT INTO verification_runs (id, check_name, temporal_run_id, temporal_workflow_id, status, started_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`

	_, err := db.conn.ExecContext(ctx, query,
		run.ID,
		run.CheckName,
		run.TemporalRunID,
		run.TemporalWorkflowID,
		run.Status,
		run.StartedAt,
	)

	return err
}

// GetVerificationRun retrieves a verification run by ID
func (db *DB) GetVerificationRun(ctx context.Context, id string) (*models.VerificationRun, error) {
	query := `
		SELECT id, check_name, temporal_run_id, temporal_workflow_id, status,
		       page_title, screenshot_path, started_at, completed_at, error_message
		FROM verification_runs
		WHERE id = ?
	`

	var run models.VerificationRun
	err := db.conn.QueryRowContext(ctx, query, id).Scan(
		&run.ID,
		&run.CheckName,
		&run.TemporalRunID,
		&run.TemporalWorkflowID,
		&run.Status,
		&run.PageTitle,
		&run.ScreenshotPath,
		&run.StartedAt,
		&run.CompletedAt,
		&run.ErrorMessage,
	)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get run: %w", err)
	}

	return &run, nil
}

// ListVerificationRuns retrieves runs, optionally filtered by check name
func (db *DB) ListVerificationRuns(ctx context.Context, checkName string) ([]models.VerificationRun, error) {
	query := `
		SELECT id, check_name, temporal_run_id, temporal_workflow_id, status,
		       page_title, screenshot_path, started_at, completed_at, error_message
		FROM verification_runs
	`
	args := []interface{}{}

	if checkName != "" {
		query += " WHERE check_name = ?"
		args = append(args, checkName)
	}
	query += " ORDER BY started_at DESC"

	rows, err := db.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	defer rows.Close()

	var runs []models.VerificationRun
	for rows.Next() {
		var run models.VerificationRun
		err := rows.Scan(
			&run.ID,
			&run.CheckName,
			&run.TemporalRunID,
			&run.TemporalWorkflowID,
			&run.Status,
			&run.PageTitle,
			&run.ScreenshotPath,
			&run.StartedAt,
			&run.CompletedAt,
			&run.ErrorMessage,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		runs = append(runs, run)
	}

	return runs, nil
}

// UpdateVerificationRunStatus updates the status of a verification run
func (db *DB) UpdateVerificationRunStatus(ctx context.Context, id string, status models.RunStatus, errorMsg string) error {
	query := `
		UPDATE verification_runs
		SET status = ?, error_message = ?,
		    completed_at = CASE WHEN ? IN ('success', 'failed', 'canceled') THEN NOW() ELSE completed_at END
		WHERE id = ?
	`

	_, err := db.conn.ExecContext(ctx, query, status, errorMsg, status, id)
	return err
}

// UpdateVerificationRunTemporal records the temporal identifiers of a started run
func (db *DB) UpdateVerificationRunTemporal(ctx context.Context, id, workflowID, runID string) error {
	query := `
		UPDATE verification_runs
		SET temporal_workflow_id = ?, temporal_run_id = ?
		WHERE id = ?
	`

	_, err := db.conn.ExecContext(ctx, query, workflowID, runID, id)
	return err
}

// UpdateVerificationRunResult records the title and screenshot of a completed run
func (db *DB) UpdateVerificationRunResult(ctx context.Context, id string, pageTitle, screenshotPath string) error {
	query := `
		UPDATE verification_runs
		SET page_title = ?, screenshot_path = ?
		WHERE id = ?
	`

	_, err := db.conn.ExecContext(ctx, query, pageTitle, screenshotPath, id)
	return err
}

// ==================== Step Results ====================

// CreateStepResults stores the step results for a run
func (db *DB) CreateStepResults(ctx context.Context, runID string, results []models.StepResult) error {
	query := `
		INSERT INTO step_results (id, run_id, sequence_id, step_type, status, detail, screenshot_path, error_message, executed_at, duration_ms)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, query)
	if err != nil {
		return fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer stmt.Close()

	for _, result := range results {
		_, err := stmt.ExecContext(ctx,
			result.ID,
			runID,
			result.SequenceID,
			result.StepType,
			result.Status,
			result.Detail,
			result.ScreenshotPath,
			result.ErrorMessage,
			result.ExecutedAt,
			result.Duration,
		)
		if err != nil {
			return fmt.Errorf("failed to insert step result: %w", err)
		}
	}

	return tx.Commit()
}

// GetStepResults retrieves step results for a run
func (db *DB) GetStepResults(ctx context.Context, runID string) ([]models.StepResult, error) {
	query := `
		SELECT id, run_id, sequence_id, step_type, status, detail,
		       screenshot_path, error_message, executed_at, duration_ms
		FROM step_results
		WHERE run_id = ?
		ORDER BY sequence_id
	`

	rows, err := db.conn.QueryContext(ctx, query, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to get step results: %w", err)
	}
	defer rows.Close()

	var results []models.StepResult
	for rows.Next() {
		var result models.StepResult
		err := rows.Scan(
			&result.ID,
			&result.RunID,
			&result.SequenceID,
			&result.StepType,
			&result.Status,
			&result.Detail,
			&result.ScreenshotPath,
			&result.ErrorMessage,
			&result.ExecutedAt,
			&result.Duration,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan step result: %w", err)
		}
		results = append(results, result)
	}

	return results, nil
}
