package report

import (
	"embed"
	"html/template"
	"io"
	texttemplate "text/template"
)

//go:embed templates/*.tmpl
var templateFS embed.FS

var (
	htmlTemplates = template.Must(template.ParseFS(templateFS, "templates/results.html.tmpl"))
	textTemplates = texttemplate.Must(texttemplate.ParseFS(templateFS, "templates/results.txt.tmpl"))
)

// RenderHTML writes the result fragment (summary + cards) as escaped HTML.
func RenderHTML(w io.Writer, v View) error {
	return htmlTemplates.ExecuteTemplate(w, "results", v)
}

// RenderText writes the results for a terminal.
func RenderText(w io.Writer, v View) error {
	return textTemplates.ExecuteTemplate(w, "results", v)
}
