package engine

import (
	"fmt"

	"github.com/dustin/go-humanize"
)

// Simplify abbreviates large numbers: 1.5b, 2.3m, 4.5k. Below a thousand
// (including all negatives) it returns the comma-grouped integer.
// Halves round up, so 1250 is "1.3k".
func Simplify(n int64) string {
	switch {
	case n >= 1_000_000_000:
		return tenths(n, 1_000_000_000, "b")
	case n >= 1_000_000:
		return tenths(n, 1_000_000, "m")
	case n >= 1_000:
		return tenths(n, 1_000, "k")
	}
	return humanize.Comma(n)
}

// tenths formats n/unit to one decimal, rounding half up. n must be positive.
func tenths(n, unit int64, suffix string) string {
	step := unit / 10
	q, r := n/step, n%step
	if 2*r >= step {
		q++
	}
	return fmt.Sprintf("%d.%d%s", q/10, q%10, suffix)
}

// FormatGP renders an exact coin amount, e.g. "1,234 gp".
func FormatGP(n int64) string {
	return humanize.Comma(n) + " gp"
}
