package chart

import (
	"bytes"
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"osrs-flipper/internal/wiki"
)

func days(n int) []wiki.TimeseriesPoint {
	pts := make([]wiki.TimeseriesPoint, n)
	for i := range pts {
		pts[i] = wiki.TimeseriesPoint{
			Timestamp:    1_700_000_000 + int64(i)*86400,
			AvgHighPrice: wiki.Int64(int64(1000 + i)),
		}
	}
	return pts
}

func TestBuildSeries_KeepsLast30(t *testing.T) {
	s := BuildSeries(days(45))
	if len(s) != MaxPoints {
		t.Fatalf("len = %d, want %d", len(s), MaxPoints)
	}
	if *s[0].Value != 1015 || *s[len(s)-1].Value != 1044 {
		t.Errorf("first/last = %d/%d, want 1015/1044", *s[0].Value, *s[len(s)-1].Value)
	}
}

func TestBuildSeries_ShortAndLabels(t *testing.T) {
	pts := []wiki.TimeseriesPoint{
		{Timestamp: 1_700_000_000, AvgHighPrice: wiki.Int64(5)},
		{Timestamp: 1_700_086_400},
	}
	s := BuildSeries(pts)
	if len(s) != 2 {
		t.Fatalf("len = %d, want 2", len(s))
	}
	if s[0].Label != "Nov 14" || s[1].Label != "Nov 15" {
		t.Errorf("labels = %q, %q", s[0].Label, s[1].Label)
	}
	if s[1].Value != nil {
		t.Errorf("missing price should stay nil, got %d", *s[1].Value)
	}
	if len(BuildSeries(nil)) != 0 {
		t.Error("BuildSeries(nil) should be empty")
	}
}

type fakeHistory struct {
	calls int32
	err   error
	pts   []wiki.TimeseriesPoint
	gate  chan struct{}
}

func (f *fakeHistory) FetchTimeseries(ctx context.Context, itemID int, timestep string) ([]wiki.TimeseriesPoint, error) {
	atomic.AddInt32(&f.calls, 1)
	if f.gate != nil {
		select {
		case <-f.gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if timestep != Timestep {
		return nil, errors.New("unexpected timestep " + timestep)
	}
	return f.pts, f.err
}

type memCache struct {
	mu   sync.Mutex
	data map[int][]wiki.TimeseriesPoint
}

func (m *memCache) GetTimeseries(itemID int, timestep string, maxAge time.Duration) ([]wiki.TimeseriesPoint, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.data[itemID]
	return p, ok
}

func (m *memCache) SetTimeseries(itemID int, timestep string, points []wiki.TimeseriesPoint) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.data == nil {
		m.data = map[int][]wiki.TimeseriesPoint{}
	}
	m.data[itemID] = points
}

func TestAdapter_UsesCache(t *testing.T) {
	src := &fakeHistory{pts: days(3)}
	cache := &memCache{}
	a := NewAdapter(src, cache, time.Hour)

	for i := 0; i < 3; i++ {
		s, err := a.FetchHistory(context.Background(), 4151)
		if err != nil {
			t.Fatalf("FetchHistory: %v", err)
		}
		if len(s) != 3 {
			t.Fatalf("len = %d, want 3", len(s))
		}
	}
	if n := atomic.LoadInt32(&src.calls); n != 1 {
		t.Errorf("source calls = %d, want 1", n)
	}
}

func TestAdapter_CoalescesConcurrentFetches(t *testing.T) {
	src := &fakeHistory{pts: days(2), gate: make(chan struct{})}
	a := NewAdapter(src, nil, time.Hour)

	var wg sync.WaitGroup
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			a.FetchHistory(context.Background(), 2)
		}()
	}
	time.Sleep(50 * time.Millisecond)
	close(src.gate)
	wg.Wait()
	if n := atomic.LoadInt32(&src.calls); n > 2 {
		t.Errorf("source calls = %d, want coalesced", n)
	}
}

func TestAdapter_SharedFetchOutlivesFirstCaller(t *testing.T) {
	src := &fakeHistory{pts: days(3), gate: make(chan struct{})}
	a := NewAdapter(src, nil, time.Hour)

	first, cancel := context.WithCancel(context.Background())
	firstErr := make(chan error, 1)
	go func() {
		_, err := a.FetchHistory(first, 7)
		firstErr <- err
	}()
	for atomic.LoadInt32(&src.calls) == 0 {
		time.Sleep(time.Millisecond)
	}

	second := make(chan error, 1)
	var got Series
	go func() {
		s, err := a.FetchHistory(context.Background(), 7)
		got = s
		second <- err
	}()
	time.Sleep(20 * time.Millisecond)

	cancel()
	if err := <-firstErr; !errors.Is(err, context.Canceled) {
		t.Fatalf("first caller err = %v, want context.Canceled", err)
	}

	close(src.gate)
	if err := <-second; err != nil {
		t.Fatalf("second caller err = %v", err)
	}
	if len(got) != 3 {
		t.Errorf("len = %d, want 3", len(got))
	}
	if n := atomic.LoadInt32(&src.calls); n != 1 {
		t.Errorf("source calls = %d, want 1", n)
	}
}

func TestAdapter_Failure(t *testing.T) {
	boom := errors.New("HTTP 500")
	cache := &memCache{}
	a := NewAdapter(&fakeHistory{err: boom}, cache, time.Hour)
	if _, err := a.FetchHistory(context.Background(), 1); !errors.Is(err, boom) {
		t.Fatalf("err = %v, want %v", err, boom)
	}
	if len(cache.data) != 0 {
		t.Error("failed fetch should not be cached")
	}
}

// gatedFetcher lets a test release each item's fetch independently.
type gatedFetcher struct {
	mu    sync.Mutex
	gates map[int]chan struct{}
	fail  map[int]bool
}

func newGatedFetcher(ids ...int) *gatedFetcher {
	g := &gatedFetcher{gates: map[int]chan struct{}{}, fail: map[int]bool{}}
	for _, id := range ids {
		g.gates[id] = make(chan struct{})
	}
	return g
}

func (g *gatedFetcher) release(id int) { close(g.gates[id]) }

func (g *gatedFetcher) FetchHistory(ctx context.Context, itemID int) (Series, error) {
	g.mu.Lock()
	gate := g.gates[itemID]
	fail := g.fail[itemID]
	g.mu.Unlock()
	if gate != nil {
		<-gate
	}
	if fail {
		return nil, errors.New("boom")
	}
	return Series{{Timestamp: 1, Label: "Jan 1", Value: wiki.Int64(int64(itemID))}}, nil
}

func TestSelector_LastSelectionWins(t *testing.T) {
	f := newGatedFetcher(1, 2)
	s := NewSelector(f, time.Second)

	tokA := s.Select(1, "A")
	tokB := s.Select(2, "B")

	// B resolves first, then the stale A response arrives.
	f.release(2)
	c, err := s.Wait(context.Background(), tokB)
	if err != nil {
		t.Fatalf("Wait(B): %v", err)
	}
	if c.ItemID != 2 {
		t.Fatalf("chart item = %d, want 2", c.ItemID)
	}

	f.release(1)
	if _, err := s.Wait(context.Background(), tokA); !errors.Is(err, ErrSuperseded) {
		t.Errorf("Wait(A) = %v, want ErrSuperseded", err)
	}
	time.Sleep(20 * time.Millisecond)
	if cur := s.Current(); cur == nil || cur.ItemID != 2 || cur.Token != tokB {
		t.Errorf("Current = %+v, want item 2", cur)
	}
}

func TestSelector_StaleResolvesAfterNewest(t *testing.T) {
	f := newGatedFetcher(1, 2)
	s := NewSelector(f, time.Second)

	tokA := s.Select(1, "A")
	s.Select(2, "B")

	// A resolves while B is still pending: A must not be shown.
	f.release(1)
	if _, err := s.Wait(context.Background(), tokA); !errors.Is(err, ErrSuperseded) {
		t.Fatalf("Wait(A) = %v, want ErrSuperseded", err)
	}
	time.Sleep(20 * time.Millisecond)
	if cur := s.Current(); cur != nil {
		t.Fatalf("Current = %+v, want nil while B is pending", cur)
	}
	f.release(2)
	c, err := s.Wait(context.Background(), s.Token())
	if err != nil || c.ItemID != 2 {
		t.Errorf("Wait(B) = %+v, %v", c, err)
	}
}

func TestSelector_FailureKeepsPreviousChart(t *testing.T) {
	f := newGatedFetcher()
	f.fail[2] = true
	s := NewSelector(f, time.Second)

	tok1 := s.Select(1, "A")
	if _, err := s.Wait(context.Background(), tok1); err != nil {
		t.Fatalf("Wait(1): %v", err)
	}
	tok2 := s.Select(2, "B")
	if _, err := s.Wait(context.Background(), tok2); !errors.Is(err, ErrNoChart) {
		t.Fatalf("Wait(2) = %v, want ErrNoChart", err)
	}
	if cur := s.Current(); cur == nil || cur.ItemID != 1 {
		t.Errorf("Current = %+v, want unchanged chart for item 1", cur)
	}
}

func TestSelector_UnknownToken(t *testing.T) {
	s := NewSelector(newGatedFetcher(), time.Second)
	if _, err := s.Wait(context.Background(), 1); !errors.Is(err, ErrUnknownSelection) {
		t.Errorf("Wait before Select = %v", err)
	}
	tok := s.Select(1, "A")
	if _, err := s.Wait(context.Background(), tok+5); !errors.Is(err, ErrUnknownSelection) {
		t.Errorf("Wait(future) = %v", err)
	}
}

func TestSelector_WaitHonoursContext(t *testing.T) {
	f := newGatedFetcher(1)
	defer f.release(1)
	s := NewSelector(f, time.Second)
	tok := s.Select(1, "A")
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	if _, err := s.Wait(ctx, tok); !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("Wait = %v, want deadline exceeded", err)
	}
}

func TestRender_PNG(t *testing.T) {
	c := &Chart{ItemID: 4151, Name: "Abyssal whip", Series: BuildSeries(days(30))}
	c.Series[3].Value = nil
	var buf bytes.Buffer
	if err := Render(c, &buf, Width, Height); err != nil {
		t.Fatalf("Render: %v", err)
	}
	if !bytes.HasPrefix(buf.Bytes(), []byte("\x89PNG")) {
		t.Error("output is not a PNG")
	}
}

func TestRender_NoData(t *testing.T) {
	var buf bytes.Buffer
	if err := Render(nil, &buf, Width, Height); !errors.Is(err, ErrNoChart) {
		t.Errorf("Render(nil) = %v", err)
	}
	empty := &Chart{Series: Series{{Label: "x"}}}
	if err := Render(empty, &buf, Width, Height); !errors.Is(err, ErrNoChart) {
		t.Errorf("Render(all gaps) = %v", err)
	}
}
