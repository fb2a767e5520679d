package components

import (
	"embed"
	"html/template"
)

//go:embed templates/*.html
var templateFS embed.FS

var templates = loadTemplates()

// loadTemplates loads and parses all templates
func loadTemplates() map[string]*template.Template {
	templates := make(map[string]*template.Template)
	templates["index"] = template.Must(template.ParseFS(templateFS,
		"templates/layout.html",
		"templates/index.html",
	))
	templates["page"] = template.Must(template.ParseFS(templateFS,
		"templates/layout.html",
		"templates/page.html",
	))
	return templates
}
