package engine

// Item is one tradeable item with its derived flip metrics.
// Items are built once per load by Calculate and never mutated.
type Item struct {
	ID        int     `json:"id"`
	Name      string  `json:"name"`
	PriceHigh int64   `json:"price_high"` // instant-buy, what we sell at
	PriceLow  int64   `json:"price_low"`  // instant-sell, what we buy at
	Volume    int64   `json:"volume"`     // trades over the last 24h
	HighTime  int64   `json:"high_time"`  // unix seconds of the last instant-buy
	Limit     *int64  `json:"limit"`      // GE buy limit, nil when unknown
	Tax       int64   `json:"tax"`
	Profit    int64   `json:"profit"`
	ROI       float64 `json:"roi"`
	Potential int64   `json:"potential"` // profit per buy-limit window, 0 without a limit
}

// HasLimit reports whether the GE buy limit is known.
func (it Item) HasLimit() bool {
	return it.Limit != nil
}
