package db

import (
	"time"

	"github.com/google/uuid"
)

// Run represents a pipeline run record
type Run struct {
	ID            uuid.UUID  `json:"id"`
	DocumentPath  string     `json:"document_path"`
	DocumentTitle string     `json:"document_title"`
	Status        string     `json:"status"`
	CreatedAt     time.Time  `json:"created_at"`
	CompletedAt   *time.Time `json:"completed_at,omitempty"`
}

// Run status constants
const (
	RunStatusRunning   = "running"
	RunStatusCompleted = "completed"
	RunStatusFailed    = "failed"
)

// ArtifactStep constants for known artifact types
const (
	StepDocument       = "extracted_document"
	StepEpisodePlan    = "episode_plan"
	StepPodcastScript  = "podcast_script"
	StepClaims         = "claims"
	StepVerifications  = "claim_verifications"
	StepCoverage       = "coverage"
	StepReport         = "verification_report"
	StepScriptMarkdown = "podcast_script_md"
)

// StepCategory constants
const (
	CategoryExtraction   = "extraction"
	CategoryGeneration   = "generation"
	CategoryVerification = "verification"
	CategoryOutput       = "output"
)

// StepStatus constants
const (
	StepStatusCompleted = "completed"
	StepStatusFailed    = "failed"
)

// RunStep records how one pipeline stage went
type RunStep struct {
	ID           uuid.UUID `json:"id"`
	RunID        uuid.UUID `json:"run_id"`
	Step         string    `json:"step"`
	Category     string    `json:"category"`
	Status       string    `json:"status"`
	DurationMs   *int      `json:"duration_ms,omitempty"`
	ErrorMessage *string   `json:"error_message,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}

// RunStepInput represents input for recording a run step
type RunStepInput struct {
	Step     string
	Category string
	Status   string
	Duration time.Duration
	Err      error
}
