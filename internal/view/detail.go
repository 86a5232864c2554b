package view

import (
	"fmt"

	"github.com/dustin/go-humanize"

	"osrs-flipper/internal/engine"
)

// Stat is one card in the detail panel.
type Stat struct {
	Label  string `json:"label"`
	Value  string `json:"value"`
	Accent string `json:"accent"`
}

// Detail is the stat panel for one item.
type Detail struct {
	ID       int     `json:"id"`
	Name     string  `json:"name"`
	IconURL  string  `json:"icon_url"`
	Subtitle string  `json:"subtitle"`
	Stats    [6]Stat `json:"stats"`
	// ChartToken identifies the history fetch started for this view.
	ChartToken uint64 `json:"chart_token"`
}

// Detail renders the six-card summary for an item.
func (r Renderer) Detail(it engine.Item) Detail {
	limit := "Unknown"
	potential := "?"
	if it.HasLimit() {
		limit = humanize.Comma(*it.Limit)
		potential = engine.Simplify(it.Potential)
	}
	return Detail{
		ID:       it.ID,
		Name:     it.Name,
		IconURL:  r.IconURL(it.ID),
		Subtitle: "GE Limit: " + limit,
		Stats: [6]Stat{
			{Label: "NET PROFIT (Per Item)", Value: engine.FormatGP(it.Profit), Accent: "green"},
			{Label: "ROI %", Value: fmt.Sprintf("%.2f%%", it.ROI), Accent: "blue"},
			{Label: "TAX PAID (1%)", Value: "-" + engine.FormatGP(it.Tax), Accent: "red"},
			{Label: "BUY PRICE (Low)", Value: engine.FormatGP(it.PriceLow), Accent: "orange"},
			{Label: "SELL PRICE (High)", Value: engine.FormatGP(it.PriceHigh), Accent: "orange"},
			{Label: "POTENTIAL 4H PROFIT", Value: potential, Accent: "purple"},
		},
	}
}
