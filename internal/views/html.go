package views

import (
	"embed"
	"html/template"
)

// PageTemplate is the name the HTML page is registered under.
const PageTemplate = "page.html"

//go:embed templates/*.html
var templateFS embed.FS

// HTMLTemplate parses the embedded page templates.
func HTMLTemplate() *template.Template {
	return template.Must(template.New("").ParseFS(templateFS, "templates/*.html"))
}
