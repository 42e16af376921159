package db

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jonathan/curriculum-coverage/internal/types"
)

// -----------------------------------------------------------------------------
// Coverage Run Methods
// -----------------------------------------------------------------------------

// SaveRun stores a coverage report and returns the created run
func (db *DB) SaveRun(ctx context.Context, input RunInput) (*CoverageRun, error) {
	if input.Report == nil {
		return nil, fmt.Errorf("failed to save run: report is nil")
	}

	run := NewRun(input)
	reportJSON, err := json.Marshal(input.Report)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal report: %w", err)
	}

	err = db.pool.QueryRow(ctx,
		`INSERT INTO coverage_runs (id, label, source, threshold, total_topics, total_matched, overall_pct, report)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		 RETURNING created_at`,
		run.ID, run.Label, run.Source, run.Threshold, run.TotalTopics, run.TotalMatched, run.OverallPct, reportJSON,
	).Scan(&run.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to save run: %w", err)
	}
	return run, nil
}

// GetRun retrieves a run with its report. Returns nil, nil when not found.
func (db *DB) GetRun(ctx context.Context, runID uuid.UUID) (*CoverageRun, error) {
	var run CoverageRun
	var reportJSON []byte

	err := db.pool.QueryRow(ctx,
		`SELECT id, label, source, threshold, total_topics, total_matched, overall_pct, report, created_at
		 FROM coverage_runs WHERE id = $1`,
		runID,
	).Scan(&run.ID, &run.Label, &run.Source, &run.Threshold, &run.TotalTopics,
		&run.TotalMatched, &run.OverallPct, &reportJSON, &run.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get run: %w", err)
	}

	var report types.CoverageReport
	if err := json.Unmarshal(reportJSON, &report); err != nil {
		return nil, fmt.Errorf("failed to unmarshal stored report: %w", err)
	}
	run.Report = &report

	return &run, nil
}

// ListRuns retrieves recent runs without their reports
func (db *DB) ListRuns(ctx context.Context, filters RunFilters) ([]CoverageRun, error) {
	filters.Limit = filters.EffectiveLimit()

	query := `SELECT id, label, source, threshold, total_topics, total_matched, overall_pct, created_at
		FROM coverage_runs WHERE 1=1`
	args := []any{}
	argNum := 1

	if filters.Label != "" {
		query += fmt.Sprintf(" AND label ILIKE $%d", argNum)
		args = append(args, "%"+filters.Label+"%")
		argNum++
	}
	if filters.Source != "" {
		query += fmt.Sprintf(" AND source = $%d", argNum)
		args = append(args, filters.Source)
		argNum++
	}

	query += fmt.Sprintf(" ORDER BY created_at DESC LIMIT $%d", argNum)
	args = append(args, filters.Limit)

	rows, err := db.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	defer rows.Close()

	runs := []CoverageRun{}
	for rows.Next() {
		var run CoverageRun
		if err := rows.Scan(&run.ID, &run.Label, &run.Source, &run.Threshold, &run.TotalTopics,
			&run.TotalMatched, &run.OverallPct, &run.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate runs: %w", err)
	}
	return runs, nil
}

// DeleteRun deletes a stored run
func (db *DB) DeleteRun(ctx context.Context, runID uuid.UUID) error {
	result, err := db.pool.Exec(ctx, `DELETE FROM coverage_runs WHERE id = $1`, runID)
	if err != nil {
		return fmt.Errorf("failed to delete run: %w", err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("run not found: %s", runID)
	}
	return nil
}
