package wiki

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"golang.org/x/time/rate"
)

// Options configures a Client.
type Options struct {
	BaseURL    string
	UserAgent  string
	Timeout    time.Duration
	Retries    int
	RatePerSec float64 // <= 0 disables client-side rate limiting
}

// Client is a rate-limited client for the OSRS Wiki real-time prices API.
// Every request carries the configured User-Agent, which the wiki requires.
type Client struct {
	http    *resty.Client
	limiter *rate.Limiter
}

// StatusError is returned for non-2xx responses.
type StatusError struct {
	Path string
	Code int
	Body string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("wiki %s: HTTP %d: %s", e.Path, e.Code, e.Body)
}

// NewClient creates a wiki client. Transport errors and 5xx responses are
// retried opts.Retries times with backoff.
func NewClient(opts Options) *Client {
	r := resty.New().
		SetBaseURL(strings.TrimRight(opts.BaseURL, "/")).
		SetTimeout(opts.Timeout).
		SetHeader("User-Agent", opts.UserAgent).
		SetHeader("Accept", "application/json").
		SetRetryCount(opts.Retries).
		SetRetryWaitTime(500 * time.Millisecond).
		SetRetryMaxWaitTime(3 * time.Second).
		AddRetryCondition(func(resp *resty.Response, err error) bool {
			if err != nil {
				return true
			}
			return resp != nil && resp.StatusCode() >= 500
		})

	limit := rate.Inf
	if opts.RatePerSec > 0 {
		limit = rate.Limit(opts.RatePerSec)
	}
	return &Client{
		http:    r,
		limiter: rate.NewLimiter(limit, 3),
	}
}

// getJSON fetches path and decodes the body into dst.
// A body that is not valid JSON is an error even on 200.
func (c *Client) getJSON(ctx context.Context, path string, query map[string]string, dst interface{}) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("wiki %s: %w", path, err)
	}

	resp, err := c.http.R().
		SetContext(ctx).
		SetQueryParams(query).
		Get(path)
	if err != nil {
		return fmt.Errorf("wiki %s: %w", path, err)
	}
	if !resp.IsSuccess() {
		body := string(resp.Body())
		if len(body) > 200 {
			body = body[:200]
		}
		return &StatusError{Path: path, Code: resp.StatusCode(), Body: body}
	}
	if err := json.Unmarshal(resp.Body(), dst); err != nil {
		return fmt.Errorf("wiki %s: decode: %w", path, err)
	}
	return nil
}

// FetchLatest returns the most recent instant-buy/instant-sell prices keyed by item ID.
func (c *Client) FetchLatest(ctx context.Context) (map[int]LatestPrice, error) {
	var out LatestResponse
	if err := c.getJSON(ctx, "/latest", nil, &out); err != nil {
		return nil, err
	}
	if out.Data == nil {
		return nil, fmt.Errorf("wiki /latest: missing data")
	}
	return out.Data, nil
}

// FetchVolumes returns trailing 24h trade counts keyed by item ID.
func (c *Client) FetchVolumes(ctx context.Context) (map[int]Volume, error) {
	var out VolumeResponse
	if err := c.getJSON(ctx, "/24h", nil, &out); err != nil {
		return nil, err
	}
	if out.Data == nil {
		return nil, fmt.Errorf("wiki /24h: missing data")
	}
	return out.Data, nil
}

// FetchMapping returns static metadata for every tradeable item.
func (c *Client) FetchMapping(ctx context.Context) ([]MappingEntry, error) {
	var out []MappingEntry
	if err := c.getJSON(ctx, "/mapping", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// FetchTimeseries returns the price history of one item at the given
// timestep ("5m", "1h", "6h" or "24h"), oldest first.
func (c *Client) FetchTimeseries(ctx context.Context, itemID int, timestep string) ([]TimeseriesPoint, error) {
	var out TimeseriesResponse
	query := map[string]string{
		"timestep": timestep,
		"id":       strconv.Itoa(itemID),
	}
	if err := c.getJSON(ctx, "/timeseries", query, &out); err != nil {
		return nil, err
	}
	return out.Data, nil
}
