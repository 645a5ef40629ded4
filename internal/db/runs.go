package db

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/jonathan/submission-fix/internal/report"
)

// SaveRun stores a summary and its late submissions in one transaction and
// returns the run ID.
func (db *DB) SaveRun(ctx context.Context, s *report.Summary) (uuid.UUID, error) {
	id, err := uuid.Parse(s.RunID)
	if err != nil {
		return uuid.Nil, fmt.Errorf("invalid run id %q: %w", s.RunID, err)
	}
	due, err := parseOptionalTime(s.Due)
	if err != nil {
		return uuid.Nil, fmt.Errorf("invalid due date %q: %w", s.Due, err)
	}
	warnings, err := json.Marshal(s.Warnings)
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to marshal warnings: %w", err)
	}

	tx, err := db.pool.Begin(ctx)
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck // no-op after commit

	_, err = tx.Exec(ctx,
		`INSERT INTO subfix_runs (id, platform, bulk, destination, due, entries, selected, students, warnings, started_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		id, s.Platform, s.Bulk, s.Destination, due, s.Entries, s.Selected, len(s.Students), warnings, s.StartedAt,
	)
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to save run: %w", err)
	}

	for i, row := range s.Late {
		submitted, err := time.Parse(time.RFC3339, row.SubmittedAt)
		if err != nil {
			return uuid.Nil, fmt.Errorf("invalid submission time for %s: %w", row.Student, err)
		}
		_, err = tx.Exec(ctx,
			`INSERT INTO subfix_late_submissions (run_id, position, student, submitted_at, local_time)
			 VALUES ($1, $2, $3, $4, $5)`,
			id, i, row.Student, submitted, row.Local,
		)
		if err != nil {
			return uuid.Nil, fmt.Errorf("failed to save late submission for %s: %w", row.Student, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return uuid.Nil, fmt.Errorf("failed to commit run: %w", err)
	}
	return id, nil
}

// GetRun retrieves a run by ID. Returns nil if not found.
func (db *DB) GetRun(ctx context.Context, id uuid.UUID) (*Run, error) {
	var r Run
	err := db.pool.QueryRow(ctx,
		`SELECT id, platform, bulk, destination, due, entries, selected, students, started_at, created_at
		 FROM subfix_runs WHERE id = $1`,
		id,
	).Scan(&r.ID, &r.Platform, &r.Bulk, &r.Destination, &r.Due, &r.Entries, &r.Selected, &r.Students, &r.StartedAt, &r.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get run: %w", err)
	}
	return &r, nil
}

// ListLateSubmissions returns the late submissions of a run in processing order.
func (db *DB) ListLateSubmissions(ctx context.Context, runID uuid.UUID) ([]LateSubmission, error) {
	rows, err := db.pool.Query(ctx,
		`SELECT run_id, position, student, submitted_at, local_time
		 FROM subfix_late_submissions WHERE run_id = $1 ORDER BY position`,
		runID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list late submissions: %w", err)
	}
	defer rows.Close()

	var late []LateSubmission
	for rows.Next() {
		var l LateSubmission
		if err := rows.Scan(&l.RunID, &l.Position, &l.Student, &l.SubmittedAt, &l.LocalTime); err != nil {
			return nil, fmt.Errorf("failed to scan late submission: %w", err)
		}
		late = append(late, l)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating late submissions: %w", err)
	}
	return late, nil
}

func parseOptionalTime(s string) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return nil, err
	}
	return &t, nil
}
