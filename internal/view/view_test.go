package view

import (
	"bytes"
	"fmt"
	"strings"
	"testing"

	"osrs-flipper/internal/engine"
)

var r = Renderer{IconBaseURL: "https://icons.test/item/"}

func items(n int) []engine.Item {
	out := make([]engine.Item, n)
	for i := range out {
		out[i] = engine.Item{ID: i + 1, Name: fmt.Sprintf("Item %d", i+1), Profit: int64(10_000 - i), Volume: 2_300_000, ROI: 12.345}
	}
	return out
}

func TestList_TruncatesTo50(t *testing.T) {
	l := r.List(items(75))
	if len(l.Rows) != MaxListRows {
		t.Fatalf("rows = %d, want %d", len(l.Rows), MaxListRows)
	}
	if l.Matched != 75 || l.Empty {
		t.Errorf("Matched=%d Empty=%v", l.Matched, l.Empty)
	}
	for i, row := range l.Rows {
		if row.ID != i+1 {
			t.Fatalf("row %d has id %d; order changed", i, row.ID)
		}
	}
}

func TestList_RowFormatting(t *testing.T) {
	l := r.List(items(1))
	row := l.Rows[0]
	if row.Profit != "+10.0k" {
		t.Errorf("Profit = %q", row.Profit)
	}
	if row.ROI != "12.3%" {
		t.Errorf("ROI = %q", row.ROI)
	}
	if row.Volume != "2.3m" {
		t.Errorf("Volume = %q", row.Volume)
	}
	if row.IconURL != "https://icons.test/item/1.png" {
		t.Errorf("IconURL = %q", row.IconURL)
	}
}

func TestList_Empty(t *testing.T) {
	l := r.List(nil)
	if !l.Empty || len(l.Rows) != 0 {
		t.Errorf("List(nil) = %+v", l)
	}
}

func TestDetail_WithLimit(t *testing.T) {
	limit := int64(100)
	it := engine.Item{ID: 1, Name: "Rune axe", PriceHigh: 1000, PriceLow: 900, Limit: &limit, Tax: 10, Profit: 90, ROI: 10, Potential: 9000}
	d := r.Detail(it)
	want := []string{"90 gp", "10.00%", "-10 gp", "900 gp", "1,000 gp", "9.0k"}
	for i, w := range want {
		if d.Stats[i].Value != w {
			t.Errorf("stat %d (%s) = %q, want %q", i, d.Stats[i].Label, d.Stats[i].Value, w)
		}
	}
	if d.Subtitle != "GE Limit: 100" {
		t.Errorf("Subtitle = %q", d.Subtitle)
	}
}

func TestDetail_UnknownLimit(t *testing.T) {
	d := r.Detail(engine.Item{ID: 2, Name: "Oddity", Profit: 5_000, PriceHigh: 60_000})
	if d.Stats[5].Value != "?" {
		t.Errorf("potential = %q, want ?", d.Stats[5].Value)
	}
	if d.Subtitle != "GE Limit: Unknown" {
		t.Errorf("Subtitle = %q", d.Subtitle)
	}
	if d.Stats[0].Value != "5,000 gp" {
		t.Errorf("profit = %q", d.Stats[0].Value)
	}
}

func TestWritePage_States(t *testing.T) {
	tests := []struct {
		name string
		page Page
		want string
	}{
		{"loading", Page{State: engine.StateLoading}, "Fetching latest market data"},
		{"error", Page{State: engine.StateError}, "Error loading API"},
		{"empty", Page{State: engine.StateReady, Items: 3, List: r.List(nil)}, "No items found matching filters."},
		{"rows", Page{State: engine.StateReady, Items: 1, List: r.List(items(1))}, `data-id="1"`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			if err := WritePage(&buf, tt.page); err != nil {
				t.Fatalf("WritePage: %v", err)
			}
			if !strings.Contains(buf.String(), tt.want) {
				t.Errorf("page missing %q", tt.want)
			}
		})
	}
}

func TestWriteList_KeepsFilterValues(t *testing.T) {
	var buf bytes.Buffer
	p := Page{State: engine.StateReady, Criteria: engine.Criteria{MinProfit: 250, MaxPrice: engine.DefaultMaxPrice, Search: "axe"}}
	if err := WritePage(&buf, p); err != nil {
		t.Fatalf("WritePage: %v", err)
	}
	out := buf.String()
	if !strings.Contains(out, `name="min_profit" type="number" value="250"`) {
		t.Error("min_profit value not rendered")
	}
	if !strings.Contains(out, `value="axe"`) {
		t.Error("search value not rendered")
	}

	buf.Reset()
	if err := WriteList(&buf, Page{State: engine.StateReady, Items: 1, List: r.List(items(2))}); err != nil {
		t.Fatalf("WriteList: %v", err)
	}
	if strings.Contains(buf.String(), "<html") {
		t.Error("WriteList rendered the whole page")
	}
	if strings.Count(buf.String(), "item-card") != 2 {
		t.Errorf("WriteList rows = %d, want 2", strings.Count(buf.String(), "item-card"))
	}
}
