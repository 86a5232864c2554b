package engine

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"osrs-flipper/internal/logger"
	"osrs-flipper/internal/wiki"
)

// Source provides the three bulk resources a load needs.
// *wiki.Client implements it.
type Source interface {
	FetchLatest(ctx context.Context) (map[int]wiki.LatestPrice, error)
	FetchVolumes(ctx context.Context) (map[int]wiki.Volume, error)
	FetchMapping(ctx context.Context) ([]wiki.MappingEntry, error)
}

// LoadRecorder persists the outcome of each load attempt.
type LoadRecorder interface {
	RecordLoad(count int, duration time.Duration, loadErr error)
}

// LoadError reports which resource broke a load.
type LoadError struct {
	Resource string // "latest", "24h" or "mapping"
	Err      error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("load %s: %v", e.Resource, e.Err)
}

func (e *LoadError) Unwrap() error { return e.Err }

// Loader fetches the three wiki resources concurrently and publishes the
// joined items to its Store. All three must succeed.
type Loader struct {
	src   Source
	store *Store

	// Recorder, when set, is told about every load attempt.
	Recorder LoadRecorder
	// OnLoad, when set, runs after a successful publish.
	OnLoad func(*Collection)

	now func() time.Time
}

// NewLoader creates a Loader writing to store.
func NewLoader(src Source, store *Store) *Loader {
	return &Loader{src: src, store: store, now: time.Now}
}

// Load runs one load cycle. On failure the store keeps its previous
// collection and records the error.
func (l *Loader) Load(ctx context.Context) (*Collection, error) {
	start := l.now()

	var (
		latest  map[int]wiki.LatestPrice
		volumes map[int]wiki.Volume
		mapping []wiki.MappingEntry
	)

	// The first failure cancels gctx, which aborts the other two requests.
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		if latest, err = l.src.FetchLatest(gctx); err != nil {
			return &LoadError{Resource: "latest", Err: err}
		}
		return nil
	})
	g.Go(func() error {
		var err error
		if volumes, err = l.src.FetchVolumes(gctx); err != nil {
			return &LoadError{Resource: "24h", Err: err}
		}
		return nil
	})
	g.Go(func() error {
		var err error
		if mapping, err = l.src.FetchMapping(gctx); err != nil {
			return &LoadError{Resource: "mapping", Err: err}
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		l.store.fail(err)
		if l.Recorder != nil {
			l.Recorder.RecordLoad(0, l.now().Sub(start), err)
		}
		logger.Error("Loader", fmt.Sprintf("Market data load failed: %v", err))
		return nil, err
	}

	items := Join(mapping, latest, volumes)
	c := NewCollection(items, l.now())
	l.store.publish(c)

	elapsed := l.now().Sub(start)
	if l.Recorder != nil {
		l.Recorder.RecordLoad(len(items), elapsed, nil)
	}
	logger.Success("Loader", fmt.Sprintf("Loaded %d/%d items in %s", len(items), len(mapping), elapsed.Round(time.Millisecond)))

	if l.OnLoad != nil {
		l.OnLoad(c)
	}
	return c, nil
}
