// Package prompt renders the instructions sent to the generation capability.
package prompt

import (
	"fmt"
	"strings"
	"text/template"

	"github.com/kalambet/vitae/internal/contract"
)

// LogoToolName is the name under which the logo lookup is offered to the model.
const LogoToolName = "getCompanyLogo"

// Template is a named instruction template paired with the contract the
// model's answer must satisfy.
type Template struct {
	Name   string
	Output contract.Contract
	tmpl   *template.Template
}

func mustTemplate(name string, output contract.Contract, text string) *Template {
	t := template.Must(template.New(name).Option("missingkey=error").Parse(text))
	return &Template{Name: name, Output: output, tmpl: t}
}

// Render fills the template with data. Values are substituted verbatim.
func (t *Template) Render(data any) (string, error) {
	var sb strings.Builder
	if err := t.tmpl.Execute(&sb, data); err != nil {
		return "", fmt.Errorf("rendering %s: %w", t.Name, err)
	}
	return sb.String(), nil
}

// EstimateTokens provides a rough token count using 4 chars per token heuristic.
func EstimateTokens(text string) int {
	return (len(text) + 3) / 4
}

type generationData struct {
	contract.GenerationRequest
	LogoTool string
}

// RenderGeneration renders the generation instruction for req.
func RenderGeneration(req contract.GenerationRequest) (string, error) {
	return Generation.Render(generationData{GenerationRequest: req, LogoTool: LogoToolName})
}
