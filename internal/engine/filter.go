package engine

import (
	"net/url"
	"regexp"
	"slices"
	"strconv"
	"strings"
	"time"
)

// StaleAfter drops items whose last instant-buy is older than this.
const StaleAfter = 7200 * time.Second

// DefaultMaxPrice is the max-price filter when none is given.
const DefaultMaxPrice = 2_147_000_000

// Criteria are the user's list filters.
type Criteria struct {
	MinProfit int64   `json:"min_profit"`
	MinROI    float64 `json:"min_roi"`
	MaxPrice  int64   `json:"max_price"`
	MinVolume int64   `json:"min_volume"`
	Search    string  `json:"search"`
}

// DefaultCriteria returns criteria that only apply the staleness rule.
func DefaultCriteria() Criteria {
	return Criteria{MaxPrice: DefaultMaxPrice}
}

// ParseCriteria reads filters from query values. Bad or zero numbers fall
// back to the defaults instead of failing.
func ParseCriteria(q url.Values) Criteria {
	c := DefaultCriteria()
	if v := parseIntPrefix(q.Get("min_profit")); v != 0 {
		c.MinProfit = v
	}
	if v := parseFloatPrefix(q.Get("min_roi")); v != 0 {
		c.MinROI = v
	}
	if v := parseIntPrefix(q.Get("max_price")); v != 0 {
		c.MaxPrice = v
	}
	if v := parseIntPrefix(q.Get("min_volume")); v != 0 {
		c.MinVolume = v
	}
	c.Search = q.Get("search")
	return c
}

// Query encodes c back into query values, omitting defaults.
func (c Criteria) Query() url.Values {
	q := url.Values{}
	if c.MinProfit != 0 {
		q.Set("min_profit", strconv.FormatInt(c.MinProfit, 10))
	}
	if c.MinROI != 0 {
		q.Set("min_roi", strconv.FormatFloat(c.MinROI, 'f', -1, 64))
	}
	if c.MaxPrice != DefaultMaxPrice && c.MaxPrice != 0 {
		q.Set("max_price", strconv.FormatInt(c.MaxPrice, 10))
	}
	if c.MinVolume != 0 {
		q.Set("min_volume", strconv.FormatInt(c.MinVolume, 10))
	}
	if c.Search != "" {
		q.Set("search", c.Search)
	}
	return q
}

// Filter returns the items matching c and fresh at now, sorted by profit
// descending. Equal profits keep their input order. items is not modified.
func Filter(items []Item, c Criteria, now time.Time) []Item {
	search := strings.ToLower(c.Search)
	cutoff := now.Unix() - int64(StaleAfter/time.Second)

	out := make([]Item, 0, len(items))
	for _, it := range items {
		if search != "" && !strings.Contains(strings.ToLower(it.Name), search) {
			continue
		}
		if it.Profit < c.MinProfit {
			continue
		}
		if it.ROI < c.MinROI {
			continue
		}
		if it.PriceHigh > c.MaxPrice {
			continue
		}
		if it.Volume < c.MinVolume {
			continue
		}
		if it.HighTime < cutoff {
			continue
		}
		out = append(out, it)
	}

	slices.SortStableFunc(out, func(a, b Item) int {
		switch {
		case a.Profit > b.Profit:
			return -1
		case a.Profit < b.Profit:
			return 1
		}
		return 0
	})
	return out
}

var (
	intPrefix   = regexp.MustCompile(`^[+-]?\d+`)
	floatPrefix = regexp.MustCompile(`^[+-]?(\d+\.?\d*|\.\d+)`)
)

// parseIntPrefix reads the leading integer of s ("12abc" -> 12, "3.9" -> 3).
// Anything without one yields 0.
func parseIntPrefix(s string) int64 {
	m := intPrefix.FindString(strings.TrimSpace(s))
	if m == "" {
		return 0
	}
	v, err := strconv.ParseInt(m, 10, 64)
	if err != nil {
		return 0
	}
	return v
}

func parseFloatPrefix(s string) float64 {
	m := floatPrefix.FindString(strings.TrimSpace(s))
	if m == "" {
		return 0
	}
	v, err := strconv.ParseFloat(m, 64)
	if err != nil {
		return 0
	}
	return v
}
