// Package render produces a standalone printable page from a design.
package render

import (
	"html/template"
	"strings"

	"github.com/kalambet/vitae/internal/contract"
)

var page = template.Must(template.New("document").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>{{.Title}}</title>
<style>
@page { size: A4; margin: 0; }
html, body { margin: 0; padding: 0; background: #e5e7eb; }
.vitae-page { width: 210mm; min-height: 297mm; margin: 12mm auto; background: #fff; box-shadow: 0 2px 12px rgba(0,0,0,.15); overflow: hidden; }
@media print {
  html, body { background: #fff; }
  .vitae-page { margin: 0; box-shadow: none; }
}
</style>
<style>
{{.Style}}
</style>
</head>
<body>
<div class="vitae-page">
{{.Markup}}
</div>
</body>
</html>
`))

// Document renders a as a complete HTML page sized to an A4 sheet. The
// design's markup and style are embedded as given; title is escaped.
func Document(a contract.Artifact, title string) (string, error) {
	if strings.TrimSpace(title) == "" {
		title = "Resume"
	}
	var sb strings.Builder
	err := page.Execute(&sb, struct {
		Title  string
		Style  template.CSS
		Markup template.HTML
	}{title, template.CSS(a.Style), template.HTML(a.Markup)})
	if err != nil {
		return "", err
	}
	return sb.String(), nil
}
