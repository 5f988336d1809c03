package main

import (
	"os"
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/doc-podcast/internal/rendering"
	"github.com/jonathan/doc-podcast/internal/types"
)

func sampleScriptJSON(t *testing.T) []byte {
	t.Helper()
	script := &types.PodcastScript{
		Title: "Growth, With a Catch",
		Dialogue: []types.DialogueLine{
			{Speaker: types.SpeakerAlex, Text: "Revenue grew twelve percent."},
			{Speaker: types.SpeakerJordan, Text: "Impressive.", EmotionCue: "laughs"},
		},
		Takeaway: "Growth is not free",
	}
	script.RecountWords()
	data, err := rendering.MarshalScript(script)
	require.NoError(t, err)
	return data
}

func TestRenderCommand_Stdout(t *testing.T) {
	path := writeFile(t, t.TempDir(), "script.json", sampleScriptJSON(t))

	output, err := executeCommand(t, "render", "--script", path)
	require.NoError(t, err)
	assert.Contains(t, output, "# Growth, With a Catch")
	assert.Contains(t, output, "**Jordan:** [laughs] Impressive.")
	assert.Contains(t, output, "**Takeaway:** Growth is not free")
}

func TestRenderCommand_File(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "script.json", sampleScriptJSON(t))
	out := filepath.Join(dir, "nested", "script.md")

	output, err := executeCommand(t, "render", "--script", path, "--out", out)
	require.NoError(t, err)
	assert.Contains(t, output, "Rendered 2 lines (~5 words)")

	content, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Contains(t, string(content), "**Alex:** Revenue grew twelve percent.")
}

func TestRenderCommand_MissingScriptFlag(t *testing.T) {
	_, err := executeCommand(t, "render")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `required flag(s) "script" not set`)
}

func TestRenderCommand_InvalidScript(t *testing.T) {
	path := writeFile(t, t.TempDir(), "script.json", []byte(`{"title": "T", "dialogue": [{"speaker": "Sam", "text": "hi"}]}`))

	_, err := executeCommand(t, "render", "--script", path)
	assert.Error(t, err)
}

func TestValidateReportCommand(t *testing.T) {
	dir := t.TempDir()
	report := &types.VerificationReport{
		TotalClaims:        1,
		Supported:          1,
		SupportRate:        100,
		CoveragePercentage: 50,
		Claims: []types.ClaimVerification{
			{Claim: types.Claim{Index: 0, Claim: "Revenue grew"}, Status: types.StatusSupported, Batch: 1},
		},
		Coverage: []types.CoverageItem{
			{Section: "Overview", Status: types.CoveragePartial, Covered: []string{"a"}, Omitted: []string{"b"}},
		},
	}
	data, err := rendering.MarshalReport(report)
	require.NoError(t, err)
	valid := writeFile(t, dir, "report.json", data)

	output, err := executeCommand(t, "validate-report", valid)
	require.NoError(t, err)
	assert.Contains(t, output, "Validation passed: 1 claims, 0 hallucinations, 50.00% coverage")

	invalid := writeFile(t, dir, "bad.json", []byte(`{"total_claims": 1, "claims": [], "coverage": []}`))
	output, err = executeCommand(t, "validate-report", invalid)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "schema violation")
	assert.Contains(t, output, "validation failed")

	_, err = executeCommand(t, "validate-report", filepath.Join(dir, "missing.json"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "report file not found")
}

func TestInfoCommand_MissingFile(t *testing.T) {
	_, err := executeCommand(t, "info", filepath.Join(t.TempDir(), "missing.pdf"))
	assert.Error(t, err)
}

func TestInfoCommand_RequiresArgument(t *testing.T) {
	_, err := executeCommand(t, "info")
	assert.Error(t, err)
}

func TestRunCommand_InvalidConfig(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "doc.pdf", []byte("%PDF-1.4"))
	cfgPath := writeFile(t, dir, "config.yaml", []byte("document:\n  path: doc.pdf\n"))

	_, err := executeCommand(t, "run", "--config", cfgPath)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "sections")
}

func TestRunCommand_MissingAPIKey(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "")
	t.Setenv("DATABASE_URL", "")

	dir := t.TempDir()
	writeFile(t, dir, "doc.pdf", []byte("%PDF-1.4"))
	cfgPath := writeFile(t, dir, "config.yaml", []byte(`document:
  path: doc.pdf
sections:
  - name: Overview
    pages: [1, 2]
`))

	_, err := executeCommand(t, "run", "--config", cfgPath)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "GEMINI_API_KEY environment variable or --api-key flag is required")
}

func TestRunCommand_ProviderFlagOverridesConfig(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "")

	dir := t.TempDir()
	writeFile(t, dir, "doc.pdf", []byte("%PDF-1.4"))
	cfgPath := writeFile(t, dir, "config.json", []byte(`{
		"document": {"path": "doc.pdf"},
		"sections": [{"name": "Overview", "pages": [1]}],
		"llm": {"provider": "gemini"}
	}`))

	_, err := executeCommand(t, "run", "--config", cfgPath, "--provider", "openai")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "OPENAI_API_KEY")
}

func TestShowReportCommand_InvalidRunID(t *testing.T) {
	_, err := executeCommand(t, "show-report", "--run-id", "not-a-uuid")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid run id format")
}

func TestShowReportCommand_MissingDatabaseURL(t *testing.T) {
	t.Setenv("DATABASE_URL", "")

	_, err := executeCommand(t, "show-report", "--run-id", "8f14e45f-ceea-467f-a0e6-1c3a5b2a9d10")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "DATABASE_URL environment variable or --db-url flag is required")
}

func TestRunCommand_Binary_MissingConfigFlag(t *testing.T) {
	binaryPath := getBinaryPath(t)

	cmd := exec.Command(binaryPath, "run")
	output, err := cmd.CombinedOutput()

	assert.Error(t, err)
	assert.Contains(t, string(output), `required flag(s) "config" not set`)
}
