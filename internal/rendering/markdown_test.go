package rendering

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/doc-podcast/internal/types"
)

func sampleScript() *types.PodcastScript {
	return &types.PodcastScript{
		Title: "Growth, With a Catch",
		Dialogue: []types.DialogueLine{
			{Speaker: types.SpeakerAlex, Text: "Revenue grew twelve percent."},
			{Speaker: types.SpeakerJordan, Text: " Twelve? Really? ", EmotionCue: "skeptical"},
		},
		FrictionMoment: "Jordan questions whether growth is sustainable.",
		Takeaway:       "Growth came with thinner margins.",
		WordCount:      999,
	}
}

func TestRenderScript(t *testing.T) {
	markdown, err := RenderScript(sampleScript())
	require.NoError(t, err)

	want := `# Growth, With a Catch

*~6 words*

**Alex:** Revenue grew twelve percent.

**Jordan:** [skeptical] Twelve? Really?

---

**Friction moment:** Jordan questions whether growth is sustainable.

**Takeaway:** Growth came with thinner margins.
`
	assert.Equal(t, want, markdown)
}

func TestRenderScript_NoFooterOrTitle(t *testing.T) {
	script := &types.PodcastScript{
		Dialogue: []types.DialogueLine{{Speaker: types.SpeakerAlex, Text: "Hello."}},
	}

	markdown, err := RenderScript(script)
	require.NoError(t, err)
	assert.Equal(t, "# Untitled Episode\n\n*~1 words*\n\n**Alex:** Hello.\n", markdown)
	assert.NotContains(t, markdown, "---")
}

func TestRenderScript_Nil(t *testing.T) {
	_, err := RenderScript(nil)
	var renderErr *RenderError
	assert.ErrorAs(t, err, &renderErr)
}

func TestRenderScriptWithTemplate(t *testing.T) {
	path := filepath.Join(t.TempDir(), "plain.tmpl")
	require.NoError(t, os.WriteFile(path, []byte("{{.Title}}\n{{range .Lines}}{{.Speaker}}> {{.Text}}\n{{end}}"), 0644))

	out, err := RenderScriptWithTemplate(sampleScript(), path)
	require.NoError(t, err)
	assert.Equal(t, "Growth, With a Catch\nAlex> Revenue grew twelve percent.\nJordan> Twelve? Really?\n", out)
}

func TestParseTemplate_InvalidPath(t *testing.T) {
	_, err := parseTemplate("/nonexistent/template.tmpl")
	var templateErr *TemplateError
	require.ErrorAs(t, err, &templateErr)
	assert.Contains(t, err.Error(), "template file not found")
}

func TestParseTemplate_InvalidTemplate(t *testing.T) {
	path := filepath.Join(t.TempDir(), "invalid.tmpl")
	require.NoError(t, os.WriteFile(path, []byte("{{.InvalidSyntax{{}}"), 0644))

	_, err := parseTemplate(path)
	var templateErr *TemplateError
	require.ErrorAs(t, err, &templateErr)
	assert.Contains(t, err.Error(), "failed to parse template")
}

func TestRenderScriptWithTemplate_ExecuteError(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.tmpl")
	require.NoError(t, os.WriteFile(path, []byte("{{.Missing}}"), 0644))

	_, err := RenderScriptWithTemplate(sampleScript(), path)
	var templateErr *TemplateError
	require.ErrorAs(t, err, &templateErr)
	assert.Contains(t, err.Error(), "failed to execute template")
}
