//go:build integration
// +build integration

package db

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/doc-podcast/internal/types"
)

func setupTestDB(t *testing.T) *DB {
	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		t.Skip("Skipping integration test: DATABASE_URL not set")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	db, err := Connect(ctx, dbURL)
	if err != nil {
		t.Skipf("Skipping integration test: failed to connect to DB: %v", err)
	}
	require.NoError(t, db.EnsureSchema(ctx))
	return db
}

func TestRunLifecycle_Integration(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()
	ctx := context.Background()

	runID, err := db.CreateRun(ctx, "/data/report.pdf", "Annual Report")
	require.NoError(t, err)
	defer func() { _, _ = db.pool.Exec(ctx, `DELETE FROM pipeline_runs WHERE id = $1`, runID) }()

	run, err := db.GetRun(ctx, runID)
	require.NoError(t, err)
	require.NotNil(t, run)
	assert.Equal(t, RunStatusRunning, run.Status)
	assert.Nil(t, run.CompletedAt)

	require.NoError(t, db.CompleteRun(ctx, runID, RunStatusCompleted))
	run, err = db.GetRun(ctx, runID)
	require.NoError(t, err)
	assert.Equal(t, RunStatusCompleted, run.Status)
	assert.NotNil(t, run.CompletedAt)
}

func TestArtifacts_Integration(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()
	ctx := context.Background()

	runID, err := db.CreateRun(ctx, "/data/report.pdf", "Annual Report")
	require.NoError(t, err)
	defer func() { _, _ = db.pool.Exec(ctx, `DELETE FROM pipeline_runs WHERE id = $1`, runID) }()

	report := &types.VerificationReport{
		TotalClaims: 1, Supported: 1,
		Claims:   []types.ClaimVerification{{Claim: types.Claim{Claim: "x"}, Status: types.StatusSupported}},
		Coverage: []types.CoverageItem{},
	}
	require.NoError(t, db.SaveArtifact(ctx, runID, StepReport, "verification", report))
	require.NoError(t, db.SaveTextArtifact(ctx, runID, StepScriptMarkdown, "generation", "# Episode\n"))

	loaded, err := db.GetReportByRunID(ctx, runID)
	require.NoError(t, err)
	assert.Equal(t, 1, loaded.Supported)

	text, err := db.GetTextArtifact(ctx, runID, StepScriptMarkdown)
	require.NoError(t, err)
	assert.Equal(t, "# Episode\n", text)

	script, err := db.GetScriptByRunID(ctx, runID)
	require.NoError(t, err)
	assert.Nil(t, script)

	require.NoError(t, db.RecordStep(ctx, runID, &RunStepInput{Step: "verify_claims", Category: "verification", Status: StepStatusFailed, Duration: 1500 * time.Millisecond, Err: errors.New("quota")}))
	steps, err := db.ListRunSteps(ctx, runID)
	require.NoError(t, err)
	require.Len(t, steps, 1)
	assert.Equal(t, 1500, *steps[0].DurationMs)
	assert.Equal(t, "quota", *steps[0].ErrorMessage)

	missing, err := db.GetReportByRunID(ctx, uuid.New())
	require.NoError(t, err)
	assert.Nil(t, missing)
}
