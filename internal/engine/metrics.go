package engine

import (
	"math"

	"osrs-flipper/internal/wiki"
)

const (
	// TaxRate is the GE sales tax applied to the sell side.
	TaxRate = 0.01
	// MaxTax caps the tax paid on a single item.
	MaxTax = 5_000_000
)

// Tax returns the GE tax for selling one unit at price.
func Tax(price int64) int64 {
	t := int64(math.Floor(float64(price) * TaxRate))
	if t > MaxTax {
		return MaxTax
	}
	return t
}

// Calculate joins one mapping entry with its latest price and 24h volume
// records. It returns false when the price or volume record is missing or
// either price is not positive.
func Calculate(m wiki.MappingEntry, p *wiki.LatestPrice, v *wiki.Volume) (Item, bool) {
	if p == nil || v == nil {
		return Item{}, false
	}
	high, low := deref(p.High), deref(p.Low)
	if high <= 0 || low <= 0 {
		return Item{}, false
	}

	tax := Tax(high)
	profit := (high - low) - tax

	var limit *int64
	var potential int64
	if m.Limit != nil && *m.Limit > 0 {
		l := *m.Limit
		limit = &l
		potential = profit * l
	}

	return Item{
		ID:        m.ID,
		Name:      m.Name,
		PriceHigh: high,
		PriceLow:  low,
		Volume:    deref(v.HighPriceVolume) + deref(v.LowPriceVolume),
		HighTime:  deref(p.HighTime),
		Limit:     limit,
		Tax:       tax,
		Profit:    profit,
		ROI:       sanitizeFloat(float64(profit) / float64(low) * 100),
		Potential: potential,
	}, true
}

// Join runs Calculate over every mapping entry and keeps the valid items,
// in mapping order.
func Join(mapping []wiki.MappingEntry, latest map[int]wiki.LatestPrice, volumes map[int]wiki.Volume) []Item {
	items := make([]Item, 0, len(mapping))
	for _, m := range mapping {
		var p *wiki.LatestPrice
		if lp, ok := latest[m.ID]; ok {
			p = &lp
		}
		var v *wiki.Volume
		if vol, ok := volumes[m.ID]; ok {
			v = &vol
		}
		if it, ok := Calculate(m, p, v); ok {
			items = append(items, it)
		}
	}
	return items
}

func deref(p *int64) int64 {
	if p == nil {
		return 0
	}
	return *p
}

func sanitizeFloat(f float64) float64 {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	return f
}
