package chart

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"golang.org/x/sync/singleflight"

	"osrs-flipper/internal/logger"
	"osrs-flipper/internal/wiki"
)

const (
	// Timestep is the bucket size requested from /timeseries.
	Timestep = "24h"
	// MaxPoints is how many of the most recent buckets are charted.
	MaxPoints = 30
)

// Point is one charted bucket. Value is the average instant-buy price,
// nil when nothing traded that day.
type Point struct {
	Timestamp int64  `json:"timestamp"`
	Label     string `json:"label"`
	Value     *int64 `json:"value"`
}

// Series is an ordered run of points, oldest first.
type Series []Point

// HistorySource fetches raw price history.
type HistorySource interface {
	FetchTimeseries(ctx context.Context, itemID int, timestep string) ([]wiki.TimeseriesPoint, error)
}

// HistoryCache is a persistent cache for price history.
type HistoryCache interface {
	GetTimeseries(itemID int, timestep string, maxAge time.Duration) ([]wiki.TimeseriesPoint, bool)
	SetTimeseries(itemID int, timestep string, points []wiki.TimeseriesPoint)
}

// DefaultFetchTimeout bounds a shared history fetch.
const DefaultFetchTimeout = 30 * time.Second

// Adapter turns wiki timeseries into chart series. Concurrent requests for
// the same item share one fetch.
type Adapter struct {
	src   HistorySource
	cache HistoryCache // optional
	ttl   time.Duration
	group singleflight.Group

	// Timeout bounds each shared fetch. A caller giving up early does not
	// cancel it for the others.
	Timeout time.Duration
}

// NewAdapter creates an Adapter. cache may be nil.
func NewAdapter(src HistorySource, cache HistoryCache, ttl time.Duration) *Adapter {
	return &Adapter{src: src, cache: cache, ttl: ttl, Timeout: DefaultFetchTimeout}
}

// FetchHistory returns the last MaxPoints daily buckets for an item.
func (a *Adapter) FetchHistory(ctx context.Context, itemID int) (Series, error) {
	if a.cache != nil {
		if pts, ok := a.cache.GetTimeseries(itemID, Timestep, a.ttl); ok {
			return BuildSeries(pts), nil
		}
	}

	ch := a.group.DoChan(strconv.Itoa(itemID), func() (interface{}, error) {
		fctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), a.Timeout)
		defer cancel()
		pts, err := a.src.FetchTimeseries(fctx, itemID, Timestep)
		if err != nil {
			return nil, err
		}
		if a.cache != nil && len(pts) > 0 {
			a.cache.SetTimeseries(itemID, Timestep, pts)
		}
		return pts, nil
	})

	var v interface{}
	var err error
	select {
	case res := <-ch:
		v, err = res.Val, res.Err
	case <-ctx.Done():
		err = ctx.Err()
	}
	if err != nil {
		logger.Warn("Chart", fmt.Sprintf("History fetch for item %d failed: %v", itemID, err))
		return nil, fmt.Errorf("history %d: %w", itemID, err)
	}
	return BuildSeries(v.([]wiki.TimeseriesPoint)), nil
}

// BuildSeries keeps the most recent MaxPoints points and labels each with
// its UTC date.
func BuildSeries(points []wiki.TimeseriesPoint) Series {
	if len(points) > MaxPoints {
		points = points[len(points)-MaxPoints:]
	}
	s := make(Series, 0, len(points))
	for _, p := range points {
		var v *int64
		if p.AvgHighPrice != nil {
			x := *p.AvgHighPrice
			v = &x
		}
		s = append(s, Point{
			Timestamp: p.Timestamp,
			Label:     time.Unix(p.Timestamp, 0).UTC().Format("Jan 2"),
			Value:     v,
		})
	}
	return s
}
