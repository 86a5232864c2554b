package chart

import (
	"context"
	"errors"
	"sync"
	"time"
)

var (
	// ErrSuperseded means a newer selection replaced the one waited on.
	ErrSuperseded = errors.New("selection superseded")
	// ErrNoChart means the selection settled without chart data.
	ErrNoChart = errors.New("no chart data")
	// ErrUnknownSelection means the token was never issued.
	ErrUnknownSelection = errors.New("unknown selection")
)

// Fetcher loads a series for one item. *Adapter implements it.
type Fetcher interface {
	FetchHistory(ctx context.Context, itemID int) (Series, error)
}

// Chart is a rendered-ready series for one item.
type Chart struct {
	Token  uint64 `json:"token"`
	ItemID int    `json:"item_id"`
	Name   string `json:"name"`
	Series Series `json:"series"`
}

type selection struct {
	token  uint64
	itemID int
	name   string
	done   chan struct{}
	err    error
}

// Selector tracks one viewer's chart. Only the latest selection may
// replace the current chart; results of older selections are dropped.
type Selector struct {
	fetch   Fetcher
	timeout time.Duration

	mu      sync.Mutex
	next    uint64
	latest  *selection
	current *Chart
}

// NewSelector creates a Selector. timeout bounds each history fetch.
func NewSelector(f Fetcher, timeout time.Duration) *Selector {
	return &Selector{fetch: f, timeout: timeout}
}

// Select starts loading the chart for an item and returns its token.
// It does not wait for the fetch.
func (s *Selector) Select(itemID int, name string) uint64 {
	s.mu.Lock()
	s.next++
	sel := &selection{token: s.next, itemID: itemID, name: name, done: make(chan struct{})}
	s.latest = sel
	s.mu.Unlock()

	go s.run(sel)
	return sel.token
}

func (s *Selector) run(sel *selection) {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	series, err := s.fetch.FetchHistory(ctx, sel.itemID)
	if err == nil && len(series) == 0 {
		err = ErrNoChart
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	sel.err = err
	if s.latest == sel && err == nil {
		s.current = &Chart{Token: sel.token, ItemID: sel.itemID, Name: sel.name, Series: series}
	}
	close(sel.done)
}

// Current returns the chart on display, or nil.
func (s *Selector) Current() *Chart {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current
}

// Token returns the latest issued token, 0 before any selection.
func (s *Selector) Token() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.next
}

// Wait blocks until the selection with token settles and returns its chart.
func (s *Selector) Wait(ctx context.Context, token uint64) (*Chart, error) {
	s.mu.Lock()
	sel := s.latest
	if sel == nil || token > sel.token || token == 0 {
		s.mu.Unlock()
		return nil, ErrUnknownSelection
	}
	if token < sel.token {
		s.mu.Unlock()
		return nil, ErrSuperseded
	}
	s.mu.Unlock()

	select {
	case <-sel.done:
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.latest != sel {
		return nil, ErrSuperseded
	}
	if sel.err != nil {
		if errors.Is(sel.err, ErrNoChart) {
			return nil, sel.err
		}
		return nil, errors.Join(ErrNoChart, sel.err)
	}
	return s.current, nil
}
