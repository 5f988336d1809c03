package db

import (
	"context"
	"fmt"

	"github.com/google/uuid"
)

// RecordStep upserts the outcome of one pipeline stage
func (db *DB) RecordStep(ctx context.Context, runID uuid.UUID, input *RunStepInput) error {
	durationMs := int(input.Duration.Milliseconds())
	var errorMessage *string
	if input.Err != nil {
		msg := input.Err.Error()
		errorMessage = &msg
	}

	_, err := db.pool.Exec(ctx,
		`INSERT INTO run_steps (run_id, step, category, status, duration_ms, error_message)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 ON CONFLICT (run_id, step) DO UPDATE
		 SET category = $3, status = $4, duration_ms = $5, error_message = $6, created_at = NOW()`,
		runID, input.Step, input.Category, input.Status, durationMs, errorMessage,
	)
	if err != nil {
		return fmt.Errorf("failed to record run step %s: %w", input.Step, err)
	}
	return nil
}

// ListRunSteps retrieves all recorded steps for a run in the order they were recorded
func (db *DB) ListRunSteps(ctx context.Context, runID uuid.UUID) ([]RunStep, error) {
	rows, err := db.pool.Query(ctx,
		`SELECT id, run_id, step, category, status, duration_ms, error_message, created_at
		 FROM run_steps WHERE run_id = $1 ORDER BY created_at ASC`,
		runID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list run steps: %w", err)
	}
	defer rows.Close()

	var steps []RunStep
	for rows.Next() {
		var step RunStep
		if err := rows.Scan(&step.ID, &step.RunID, &step.Step, &step.Category, &step.Status,
			&step.DurationMs, &step.ErrorMessage, &step.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan run step: %w", err)
		}
		steps = append(steps, step)
	}
	return steps, rows.Err()
}
