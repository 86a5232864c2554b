package view

import (
	"fmt"
	"strings"

	"osrs-flipper/internal/engine"
)

// MaxListRows caps how many items the list shows.
const MaxListRows = 50

// Row is one entry in the item list.
type Row struct {
	ID      int    `json:"id"`
	Name    string `json:"name"`
	IconURL string `json:"icon_url"`
	Profit  string `json:"profit"`
	ROI     string `json:"roi"`
	Volume  string `json:"volume"`
}

// List is the rendered item list.
type List struct {
	Rows    []Row `json:"rows"`
	Empty   bool  `json:"empty"`
	Matched int   `json:"matched"` // matches before truncation
}

// Renderer projects engine items into display models.
type Renderer struct {
	IconBaseURL string
}

// IconURL returns the icon address for an item.
func (r Renderer) IconURL(id int) string {
	return fmt.Sprintf("%s/%d.png", strings.TrimRight(r.IconBaseURL, "/"), id)
}

// List renders the first MaxListRows of an already filtered and sorted slice.
func (r Renderer) List(items []engine.Item) List {
	l := List{Matched: len(items)}
	if len(items) > MaxListRows {
		items = items[:MaxListRows]
	}
	l.Rows = make([]Row, 0, len(items))
	for _, it := range items {
		l.Rows = append(l.Rows, Row{
			ID:      it.ID,
			Name:    it.Name,
			IconURL: r.IconURL(it.ID),
			Profit:  "+" + engine.Simplify(it.Profit),
			ROI:     fmt.Sprintf("%.1f%%", it.ROI),
			Volume:  engine.Simplify(it.Volume),
		})
	}
	l.Empty = len(l.Rows) == 0
	return l
}
