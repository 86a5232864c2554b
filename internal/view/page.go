package view

import (
	"embed"
	"html/template"
	"io"

	"osrs-flipper/internal/engine"
)

//go:embed templates/*.html
var templateFS embed.FS

var templates = template.Must(template.New("").ParseFS(templateFS, "templates/*.html"))

// Page is everything the dashboard template needs.
type Page struct {
	Version  string
	Criteria engine.Criteria
	State    engine.LoadState
	List     List
	Items    int
}

// Value returns the form value for a filter field, empty for defaults.
func (p Page) Value(name string) string {
	return p.Criteria.Query().Get(name)
}

// WritePage renders the full dashboard.
func WritePage(w io.Writer, p Page) error {
	return templates.ExecuteTemplate(w, "dashboard.html", p)
}

// WriteList renders only the item list, for in-place refreshes.
func WriteList(w io.Writer, p Page) error {
	return templates.ExecuteTemplate(w, "list", p)
}
