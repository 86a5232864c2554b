package wiki

// Prices in the wiki API are counterintuitive:
//
//	high = instant-buy price  (what we sell at)
//	low  = instant-sell price (what we buy at)
//
// Any field may be null when the item has not traded recently.

// LatestPrice is one item's entry in /latest.
type LatestPrice struct {
	High     *int64 `json:"high"`
	HighTime *int64 `json:"highTime"`
	Low      *int64 `json:"low"`
	LowTime  *int64 `json:"lowTime"`
}

// LatestResponse is the /latest body.
type LatestResponse struct {
	Data map[int]LatestPrice `json:"data"`
}

// Volume is one item's entry in /24h.
type Volume struct {
	AvgHighPrice    *int64 `json:"avgHighPrice"`
	HighPriceVolume *int64 `json:"highPriceVolume"`
	AvgLowPrice     *int64 `json:"avgLowPrice"`
	LowPriceVolume  *int64 `json:"lowPriceVolume"`
}

// VolumeResponse is the /24h body.
type VolumeResponse struct {
	Timestamp int64          `json:"timestamp"`
	Data      map[int]Volume `json:"data"`
}

// MappingEntry is one item in /mapping.
type MappingEntry struct {
	ID       int    `json:"id"`
	Name     string `json:"name"`
	Examine  string `json:"examine"`
	Members  bool   `json:"members"`
	Limit    *int64 `json:"limit"` // GE buy limit per 4h, absent for some items
	Value    int64  `json:"value"`
	HighAlch *int64 `json:"highalch"`
	LowAlch  *int64 `json:"lowalch"`
	Icon     string `json:"icon"`
}

// TimeseriesPoint is one bucket in /timeseries.
type TimeseriesPoint struct {
	Timestamp       int64  `json:"timestamp"`
	AvgHighPrice    *int64 `json:"avgHighPrice"`
	AvgLowPrice     *int64 `json:"avgLowPrice"`
	HighPriceVolume int64  `json:"highPriceVolume"`
	LowPriceVolume  int64  `json:"lowPriceVolume"`
}

// TimeseriesResponse is the /timeseries body.
type TimeseriesResponse struct {
	ItemID int               `json:"itemId"`
	Data   []TimeseriesPoint `json:"data"`
}

// Int64 returns a pointer to v. Handy for building fixtures.
func Int64(v int64) *int64 { return &v }
