package db

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"github.com/jonathan/doc-podcast/internal/types"
)

// GetReportByRunID loads the verification report for a run.
// Returns nil when the run produced no report.
func (db *DB) GetReportByRunID(ctx context.Context, runID uuid.UUID) (*types.VerificationReport, error) {
	content, err := db.GetArtifact(ctx, runID, StepReport)
	if err != nil {
		return nil, err
	}
	return decodeReport(content)
}

// GetScriptByRunID loads the podcast script for a run
func (db *DB) GetScriptByRunID(ctx context.Context, runID uuid.UUID) (*types.PodcastScript, error) {
	content, err := db.GetArtifact(ctx, runID, StepPodcastScript)
	if err != nil {
		return nil, err
	}
	return decodeScript(content)
}

// GetDocumentByRunID loads the extracted document for a run
func (db *DB) GetDocumentByRunID(ctx context.Context, runID uuid.UUID) (*types.ExtractedDocument, error) {
	content, err := db.GetArtifact(ctx, runID, StepDocument)
	if err != nil {
		return nil, err
	}
	if content == nil {
		return nil, nil
	}

	var doc types.ExtractedDocument
	if err := json.Unmarshal(content, &doc); err != nil {
		return nil, fmt.Errorf("failed to unmarshal extracted document: %w", err)
	}
	return &doc, nil
}

func decodeReport(content []byte) (*types.VerificationReport, error) {
	if content == nil {
		return nil, nil
	}
	var report types.VerificationReport
	if err := json.Unmarshal(content, &report); err != nil {
		return nil, fmt.Errorf("failed to unmarshal verification report: %w", err)
	}
	return &report, nil
}

func decodeScript(content []byte) (*types.PodcastScript, error) {
	if content == nil {
		return nil, nil
	}
	var script types.PodcastScript
	if err := json.Unmarshal(content, &script); err != nil {
		return nil, fmt.Errorf("failed to unmarshal podcast script: %w", err)
	}
	return &script, nil
}
