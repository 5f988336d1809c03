// Package pipeline provides the high-level orchestration for turning a document into a
// verified podcast script.
package pipeline

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/jonathan/doc-podcast/internal/db"
	"github.com/jonathan/doc-podcast/internal/extraction"
	"github.com/jonathan/doc-podcast/internal/generation"
	"github.com/jonathan/doc-podcast/internal/llm"
	"github.com/jonathan/doc-podcast/internal/observability"
	"github.com/jonathan/doc-podcast/internal/pipeline/steps"
	"github.com/jonathan/doc-podcast/internal/rendering"
	"github.com/jonathan/doc-podcast/internal/source"
	"github.com/jonathan/doc-podcast/internal/types"
	"github.com/jonathan/doc-podcast/internal/verification"
)

// ProgressEvent represents a progress update during pipeline execution
type ProgressEvent struct {
	Step     string `json:"step"`
	Category string `json:"category"`
	Message  string `json:"message"`
	RunID    string `json:"run_id,omitempty"`
	Content  any    `json:"content,omitempty"`
}

// ProgressCallback is called when pipeline progress occurs
type ProgressCallback func(event ProgressEvent)

// ArtifactStore persists runs and their artifacts. *db.DB implements it.
type ArtifactStore interface {
	CreateRun(ctx context.Context, documentPath, documentTitle string) (uuid.UUID, error)
	CompleteRun(ctx context.Context, runID uuid.UUID, status string) error
	SaveArtifact(ctx context.Context, runID uuid.UUID, step, category string, content any) error
	SaveTextArtifact(ctx context.Context, runID uuid.UUID, step, category, text string) error
	RecordStep(ctx context.Context, runID uuid.UUID, input *db.RunStepInput) error
}

var _ ArtifactStore = (*db.DB)(nil)

// RunOptions holds configuration for running the pipeline
type RunOptions struct {
	DocumentPath  string
	DocumentTitle string // defaults to the PDF title metadata, then the file name
	Sections      []extraction.SectionSpec
	OutputDir     string // no files are written when empty

	LLMConfig         *llm.Config
	APIKey            string
	RequestsPerSecond float64 // 0 disables client-side throttling
	Burst             int

	ExtractionConcurrency int
	Dialogue              generation.DialogueOptions
	Verify                verification.VerifyOptions

	DatabaseURL string
	Verbose     bool
	Out         io.Writer // progress lines; defaults to os.Stdout
	OnProgress  ProgressCallback

	// Injected dependencies, used instead of the ones built from the fields above
	Client llm.Client
	Source source.Provider
	Store  ArtifactStore
}

// RunResult holds every artifact of a completed run
type RunResult struct {
	RunID    uuid.UUID
	Document *types.ExtractedDocument
	Plan     *types.EpisodePlan
	Script   *types.PodcastScript
	Claims   []types.Claim
	Report   *types.VerificationReport
	Outputs  *rendering.OutputPaths
}

// run carries per-run state shared by the steps
type run struct {
	opts      *RunOptions
	printer   *observability.Printer
	store     ArtifactStore
	runID     uuid.UUID
	completed map[string]bool

	mu  sync.Mutex
	out io.Writer
}

// printf writes a progress line; batch callbacks may call it concurrently
func (r *run) printf(format string, args ...any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, _ = fmt.Fprintf(r.out, format, args...)
}

// begin announces a step after checking its dependencies
func (r *run) begin(step, message string) (time.Time, error) {
	if err := steps.ValidateDependencies(r.completed, step); err != nil {
		return time.Time{}, err
	}
	r.printf("%s: %s\n", steps.Label(step), message)
	return time.Now(), nil
}

// finish records the step outcome in the store
func (r *run) finish(ctx context.Context, step string, started time.Time, err error) {
	status := db.StepStatusCompleted
	if err != nil {
		status = db.StepStatusFailed
	} else {
		r.completed[step] = true
	}
	if r.store == nil || r.runID == uuid.Nil {
		return
	}
	recordErr := r.store.RecordStep(ctx, r.runID, &db.RunStepInput{
		Step:     step,
		Category: steps.StepRegistry[step].Category,
		Status:   status,
		Duration: time.Since(started),
		Err:      err,
	})
	if recordErr != nil {
		r.printf("Warning: Failed to record step %s: %v\n", step, recordErr)
	}
}

// save stores an artifact; persistence failures never abort the run
func (r *run) save(ctx context.Context, step, artifact string, content any) {
	if r.store == nil || r.runID == uuid.Nil {
		return
	}
	category := steps.StepRegistry[step].Category
	var err error
	if text, ok := content.(string); ok {
		err = r.store.SaveTextArtifact(ctx, r.runID, artifact, category, text)
	} else {
		err = r.store.SaveArtifact(ctx, r.runID, artifact, category, content)
	}
	if err != nil {
		r.printf("Warning: Failed to save %s: %v\n", artifact, err)
	}
}

// emitProgress calls the progress callback if configured
func (r *run) emitProgress(step, message string, content any) {
	if r.opts.OnProgress == nil {
		return
	}
	event := ProgressEvent{
		Step:     step,
		Category: steps.StepRegistry[step].Category,
		Message:  message,
		Content:  content,
	}
	if r.runID != uuid.Nil {
		event.RunID = r.runID.String()
	}
	r.opts.OnProgress(event)
}

// fail marks the run failed in the store and wraps err with the step name
func (r *run) fail(ctx context.Context, step string, started time.Time, err error) error {
	r.finish(ctx, step, started, err)
	if r.store != nil && r.runID != uuid.Nil {
		if completeErr := r.store.CompleteRun(ctx, r.runID, db.RunStatusFailed); completeErr != nil {
			r.printf("Warning: Failed to mark run failed: %v\n", completeErr)
		}
	}
	return fmt.Errorf("%s failed: %w", strings.ReplaceAll(step, "_", " "), err)
}

// RunPipeline runs every step in order: extract sections, plan the episode, write the
// dialogue, then extract, verify and score claims and coverage, assemble the report and
// write the outputs. Fatal failures abort without a partial report; recoverable
// problems are carried into the report as data quality warnings.
func RunPipeline(ctx context.Context, opts RunOptions) (*RunResult, error) {
	out := opts.Out
	if out == nil {
		out = os.Stdout
	}
	r := &run{
		opts:      &opts,
		printer:   observability.NewPrinter(out),
		completed: make(map[string]bool),
		out:       out,
	}

	if len(opts.Sections) == 0 {
		return nil, fmt.Errorf("no sections configured")
	}

	// Model client
	client := opts.Client
	if client == nil {
		var err error
		client, err = llm.NewClient(ctx, opts.LLMConfig, opts.APIKey)
		if err != nil {
			return nil, fmt.Errorf("failed to create LLM client: %w", err)
		}
		defer func() { _ = client.Close() }()
	}
	client = llm.NewRateLimitedClient(client, opts.RequestsPerSecond, opts.Burst)
	caller := llm.NewAdapter(client)

	// Document source
	provider := opts.Source
	if provider == nil {
		pdfProvider, err := source.OpenPDF(opts.DocumentPath)
		if err != nil {
			return nil, err
		}
		defer func() { _ = pdfProvider.Close() }()
		provider = pdfProvider
	}
	title := documentTitle(opts)

	// Artifact store
	r.store = opts.Store
	if r.store == nil && opts.DatabaseURL != "" {
		database, err := connectStore(ctx, opts.DatabaseURL)
		if err != nil {
			r.printf("Warning: Failed to connect to database: %v\n", err)
			r.printf("Continuing without database persistence...\n")
		} else {
			defer database.Close()
			r.store = database
			if opts.Verbose {
				r.printf("[VERBOSE] Connected to database\n")
			}
		}
	}
	if r.store != nil {
		runID, err := r.store.CreateRun(ctx, opts.DocumentPath, title)
		if err != nil {
			r.printf("Warning: Failed to create database run: %v\n", err)
		} else {
			r.runID = runID
			if opts.Verbose {
				r.printf("[VERBOSE] Created database run: %s\n", runID)
			}
		}
	}

	result := &RunResult{RunID: r.runID}
	var warnings []types.DataQualityWarning

	// Step 1: sections
	started, err := r.begin(steps.ExtractSections, fmt.Sprintf("Extracting key points from %d sections...", len(opts.Sections)))
	if err != nil {
		return nil, err
	}
	doc, sectionWarnings, err := extraction.ExtractDocument(ctx, caller, provider, title, opts.Sections, opts.ExtractionConcurrency)
	if err != nil {
		return nil, r.fail(ctx, steps.ExtractSections, started, err)
	}
	r.finish(ctx, steps.ExtractSections, started, nil)
	warnings = append(warnings, sectionWarnings...)
	result.Document = doc
	if opts.Verbose {
		r.printer.PrintDocument(doc)
	}
	r.save(ctx, steps.ExtractSections, db.StepDocument, doc)
	r.emitProgress(steps.ExtractSections,
		fmt.Sprintf("Extracted %d key points from %d sections", doc.TotalKeyPoints(), len(doc.Sections)), doc)

	// Step 2: plan
	started, err = r.begin(steps.PlanEpisode, "Planning episode...")
	if err != nil {
		return nil, err
	}
	plan, err := generation.PlanEpisode(ctx, caller, doc.Title, doc.IndexedKeyPoints())
	if err != nil {
		return nil, r.fail(ctx, steps.PlanEpisode, started, err)
	}
	r.finish(ctx, steps.PlanEpisode, started, nil)
	warnings = append(warnings, plan.Warnings...)
	result.Plan = &plan.Plan
	if opts.Verbose {
		r.printer.PrintEpisodePlan(&plan.Plan)
	}
	r.save(ctx, steps.PlanEpisode, db.StepEpisodePlan, plan.Plan)
	r.emitProgress(steps.PlanEpisode, fmt.Sprintf("Planned %d segments", len(plan.Plan.Segments)), plan.Plan)

	// Step 3: dialogue
	started, err = r.begin(steps.GenerateDialogue, "Writing dialogue...")
	if err != nil {
		return nil, err
	}
	dialogueOpts := opts.Dialogue
	dialogueOpts.OnExpand = func(attempt, words int) {
		r.printf("  Script has %d words (target %d), expanding (attempt %d/%d)...\n",
			words, dialogueOpts.MinWords, attempt, dialogueOpts.MaxExpansions)
	}
	dialogue, err := generation.GenerateDialogue(ctx, caller, &plan.Plan, doc, dialogueOpts)
	if err != nil {
		return nil, r.fail(ctx, steps.GenerateDialogue, started, err)
	}
	r.finish(ctx, steps.GenerateDialogue, started, nil)
	warnings = append(warnings, dialogue.Warnings...)
	script := &dialogue.Script
	result.Script = script
	if opts.Verbose {
		r.printer.PrintScript(script)
	}
	r.save(ctx, steps.GenerateDialogue, db.StepPodcastScript, script)
	r.emitProgress(steps.GenerateDialogue,
		fmt.Sprintf("Wrote %d lines (~%d words)", len(script.Dialogue), script.WordCount), script)

	// Step 4: claims
	started, err = r.begin(steps.ExtractClaims, "Extracting factual claims...")
	if err != nil {
		return nil, err
	}
	claims, err := verification.ExtractClaims(ctx, caller, script)
	if err != nil {
		return nil, r.fail(ctx, steps.ExtractClaims, started, err)
	}
	r.finish(ctx, steps.ExtractClaims, started, nil)
	warnings = append(warnings, claims.Warnings...)
	result.Claims = claims.Claims
	r.save(ctx, steps.ExtractClaims, db.StepClaims, claims.Claims)
	r.emitProgress(steps.ExtractClaims, fmt.Sprintf("Extracted %d claims", len(claims.Claims)), claims.Claims)

	// Step 5: verification
	started, err = r.begin(steps.VerifyClaims, fmt.Sprintf("Verifying %d claims against the source...", len(claims.Claims)))
	if err != nil {
		return nil, err
	}
	verifyOpts := opts.Verify
	verifyOpts.OnBatch = func(batch, total int, mismatch *verification.ReconciliationMismatch) {
		if mismatch != nil {
			r.printf("  ⚠ Batch %d/%d degraded: %d unresolved claims\n", batch, total, len(mismatch.Unresolved))
			return
		}
		if opts.Verbose {
			r.printf("  [VERBOSE] Batch %d/%d verified\n", batch, total)
		}
	}
	verified, err := verification.VerifyClaims(ctx, caller, claims.Claims, doc, verifyOpts)
	if err != nil {
		return nil, r.fail(ctx, steps.VerifyClaims, started, err)
	}
	r.finish(ctx, steps.VerifyClaims, started, nil)
	degraded := make([]types.DegradedBatch, 0, len(verified.Mismatches))
	for _, m := range verified.Mismatches {
		degraded = append(degraded, m.DegradedBatch())
	}
	r.save(ctx, steps.VerifyClaims, db.StepVerifications, verified.Verifications)
	r.emitProgress(steps.VerifyClaims,
		fmt.Sprintf("Verified %d claims (%d degraded batches)", len(verified.Verifications), len(degraded)), verified.Verifications)

	// Step 6: coverage
	started, err = r.begin(steps.AnalyzeCoverage, "Analyzing section coverage...")
	if err != nil {
		return nil, err
	}
	coverage, err := verification.AnalyzeCoverage(ctx, caller, script, doc)
	if err != nil {
		return nil, r.fail(ctx, steps.AnalyzeCoverage, started, err)
	}
	r.finish(ctx, steps.AnalyzeCoverage, started, nil)
	warnings = append(warnings, coverage.Warnings...)
	r.save(ctx, steps.AnalyzeCoverage, db.StepCoverage, coverage.Items)
	r.emitProgress(steps.AnalyzeCoverage,
		fmt.Sprintf("Coverage %.2f%%", verification.CoveragePercentage(coverage.Items)), coverage.Items)

	// Step 7: report
	started, err = r.begin(steps.AssembleReport, "Assembling verification report...")
	if err != nil {
		return nil, err
	}
	report, err := verification.AssembleReport(verification.ReportInput{
		DocumentTitle:   doc.Title,
		Script:          script,
		SectionCount:    len(doc.Sections),
		Claims:          verified.Verifications,
		Coverage:        coverage.Items,
		DegradedBatches: degraded,
		DataQuality:     warnings,
	})
	if err != nil {
		return nil, r.fail(ctx, steps.AssembleReport, started, err)
	}
	r.finish(ctx, steps.AssembleReport, started, nil)
	result.Report = report
	if opts.Verbose {
		r.printer.PrintReport(report)
		r.printer.PrintWarnings(report.DataQuality)
	}
	r.save(ctx, steps.AssembleReport, db.StepReport, report)
	r.emitProgress(steps.AssembleReport,
		fmt.Sprintf("%d claims, %d hallucinations, %.2f%% coverage", report.TotalClaims, report.Hallucinations, report.CoveragePercentage), report)

	// Step 8: outputs
	started, err = r.begin(steps.WriteOutputs, "Writing outputs...")
	if err != nil {
		return nil, err
	}
	if opts.OutputDir != "" {
		paths, err := rendering.WriteOutputs(opts.OutputDir, script, report)
		if err != nil {
			return nil, r.fail(ctx, steps.WriteOutputs, started, err)
		}
		result.Outputs = paths
		r.printf("  Script: %s\n  Report: %s\n", paths.ScriptMarkdown, paths.Report)
	} else {
		r.printf("  No output directory configured, skipping files\n")
	}
	r.finish(ctx, steps.WriteOutputs, started, nil)
	if markdown, err := rendering.RenderScript(script); err == nil {
		r.save(ctx, steps.WriteOutputs, db.StepScriptMarkdown, markdown)
	}
	r.emitProgress(steps.WriteOutputs, "Pipeline complete", result.Outputs)

	if r.store != nil && r.runID != uuid.Nil {
		if err := r.store.CompleteRun(ctx, r.runID, db.RunStatusCompleted); err != nil {
			r.printf("Warning: Failed to complete database run: %v\n", err)
		}
	}

	r.printf("✅ Done: %d claims, %d hallucinations, %.2f%% coverage\n",
		report.TotalClaims, report.Hallucinations, report.CoveragePercentage)
	return result, nil
}

// connectStore opens the database and makes sure its tables exist
func connectStore(ctx context.Context, databaseURL string) (*db.DB, error) {
	database, err := db.Connect(ctx, databaseURL)
	if err != nil {
		return nil, err
	}
	if err := database.EnsureSchema(ctx); err != nil {
		database.Close()
		return nil, err
	}
	return database, nil
}

// documentTitle picks the configured title, then the PDF's own title, then the file name
func documentTitle(opts RunOptions) string {
	if title := strings.TrimSpace(opts.DocumentTitle); title != "" {
		return title
	}
	if opts.Source == nil && opts.DocumentPath != "" {
		if info, err := source.GetInfo(opts.DocumentPath); err == nil && strings.TrimSpace(info.Title) != "" {
			return strings.TrimSpace(info.Title)
		}
	}
	base := filepath.Base(opts.DocumentPath)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
