package rendering

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/jonathan/doc-podcast/internal/schemas"
	"github.com/jonathan/doc-podcast/internal/types"
)

// Output file names written by WriteOutputs
const (
	ScriptMarkdownFile = "podcast_script.md"
	ScriptJSONFile     = "podcast_script.json"
	ReportFile         = "verification_report.json"
)

// OutputPaths lists the files written by WriteOutputs
type OutputPaths struct {
	ScriptMarkdown string
	ScriptJSON     string
	Report         string
}

// MarshalReport encodes the report as indented JSON and checks it against the
// verification_report schema before returning it
func MarshalReport(report *types.VerificationReport) ([]byte, error) {
	if report == nil {
		return nil, &RenderError{Message: "report is nil"}
	}
	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return nil, &RenderError{Message: "failed to encode report", Cause: err}
	}
	if err := schemas.ValidateResponse(schemas.VerificationReport, string(data)); err != nil {
		return nil, &RenderError{Message: "report does not match schema", Cause: err}
	}
	return append(data, '\n'), nil
}

// MarshalScript encodes the script as indented JSON
func MarshalScript(script *types.PodcastScript) ([]byte, error) {
	if script == nil {
		return nil, &RenderError{Message: "script is nil"}
	}
	data, err := json.MarshalIndent(script, "", "  ")
	if err != nil {
		return nil, &RenderError{Message: "failed to encode script", Cause: err}
	}
	return append(data, '\n'), nil
}

// WriteOutputs writes the Markdown script, the script JSON and the report JSON to dir.
// Everything is encoded before the first file is written.
func WriteOutputs(dir string, script *types.PodcastScript, report *types.VerificationReport) (*OutputPaths, error) {
	markdown, err := RenderScript(script)
	if err != nil {
		return nil, err
	}
	scriptJSON, err := MarshalScript(script)
	if err != nil {
		return nil, err
	}
	reportJSON, err := MarshalReport(report)
	if err != nil {
		return nil, err
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, &RenderError{Message: fmt.Sprintf("failed to create output directory %s", dir), Cause: err}
	}

	paths := &OutputPaths{
		ScriptMarkdown: filepath.Join(dir, ScriptMarkdownFile),
		ScriptJSON:     filepath.Join(dir, ScriptJSONFile),
		Report:         filepath.Join(dir, ReportFile),
	}
	files := []struct {
		path string
		data []byte
	}{
		{paths.ScriptMarkdown, []byte(markdown)},
		{paths.ScriptJSON, scriptJSON},
		{paths.Report, reportJSON},
	}
	for _, f := range files {
		if err := os.WriteFile(f.path, f.data, 0644); err != nil {
			return nil, &RenderError{Message: fmt.Sprintf("failed to write %s", f.path), Cause: err}
		}
	}
	return paths, nil
}

// ReadScript loads a script JSON file written by WriteOutputs
func ReadScript(path string) (*types.PodcastScript, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read script file: %w", err)
	}
	if err := schemas.ValidateResponse(schemas.PodcastScript, string(data)); err != nil {
		return nil, fmt.Errorf("script file %s is invalid: %w", path, err)
	}
	var script types.PodcastScript
	if err := json.Unmarshal(data, &script); err != nil {
		return nil, fmt.Errorf("failed to parse script file: %w", err)
	}
	script.RecountWords()
	return &script, nil
}

// ReadReport loads and schema-checks a report JSON file
func ReadReport(path string) (*types.VerificationReport, error) {
	if err := schemas.ValidateFile(schemas.VerificationReport, path); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read report file: %w", err)
	}
	var report types.VerificationReport
	if err := json.Unmarshal(data, &report); err != nil {
		return nil, fmt.Errorf("failed to parse report file: %w", err)
	}
	return &report, nil
}
