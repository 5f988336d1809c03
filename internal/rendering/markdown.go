package rendering

import (
	_ "embed"
	"fmt"
	"os"
	"strings"
	"text/template"

	"github.com/jonathan/doc-podcast/internal/types"
)

//go:embed templates/script.md.tmpl
var defaultScriptTemplate string

// ScriptData is the data passed to the script template
type ScriptData struct {
	Title          string
	WordCount      int
	Lines          []types.DialogueLine
	FrictionMoment string
	Takeaway       string
}

// RenderScript renders the script as a Markdown transcript using the built-in template
func RenderScript(script *types.PodcastScript) (string, error) {
	tmpl, err := template.New("script").Parse(defaultScriptTemplate)
	if err != nil {
		return "", &TemplateError{Message: "failed to parse built-in template", Cause: err}
	}
	return execute(tmpl, script)
}

// RenderScriptWithTemplate renders the script with a template file from disk
func RenderScriptWithTemplate(script *types.PodcastScript, templatePath string) (string, error) {
	tmpl, err := parseTemplate(templatePath)
	if err != nil {
		return "", err
	}
	return execute(tmpl, script)
}

func execute(tmpl *template.Template, script *types.PodcastScript) (string, error) {
	if script == nil {
		return "", &RenderError{Message: "script is nil"}
	}

	var result strings.Builder
	if err := tmpl.Execute(&result, buildScriptData(script)); err != nil {
		return "", &TemplateError{
			Message: "failed to execute template",
			Cause:   err,
		}
	}
	return strings.TrimRight(result.String(), "\n") + "\n", nil
}

// parseTemplate reads and parses a template file
func parseTemplate(templatePath string) (*template.Template, error) {
	content, err := os.ReadFile(templatePath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, &TemplateError{
				Message: fmt.Sprintf("template file not found: %s", templatePath),
				Cause:   err,
			}
		}
		return nil, &TemplateError{
			Message: fmt.Sprintf("failed to read template file: %s", templatePath),
			Cause:   err,
		}
	}

	tmpl, err := template.New("script").Parse(string(content))
	if err != nil {
		return nil, &TemplateError{
			Message: "failed to parse template",
			Cause:   err,
		}
	}
	return tmpl, nil
}

func buildScriptData(script *types.PodcastScript) ScriptData {
	title := strings.TrimSpace(script.Title)
	if title == "" {
		title = "Untitled Episode"
	}

	lines := make([]types.DialogueLine, 0, len(script.Dialogue))
	for _, line := range script.Dialogue {
		lines = append(lines, types.DialogueLine{
			Speaker:    line.Speaker,
			Text:       strings.TrimSpace(line.Text),
			EmotionCue: strings.TrimSpace(line.EmotionCue),
		})
	}

	return ScriptData{
		Title:          title,
		WordCount:      types.CountWords(script.Dialogue),
		Lines:          lines,
		FrictionMoment: strings.TrimSpace(script.FrictionMoment),
		Takeaway:       strings.TrimSpace(script.Takeaway),
	}
}
