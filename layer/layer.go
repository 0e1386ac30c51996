package layer

import (
	"context"
	"image"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/royalcat/rquadtree/geom"
	"github.com/royalcat/rquadtree/quadtree"
	"github.com/royalcat/rquadtree/render"
	"github.com/sourcegraph/conc/pool"
)

// Layer is a named quadtree shared between callers. Inserts are serialized,
// queries run concurrently with each other.
type Layer struct {
	name   string
	config Config

	mu    sync.RWMutex
	index *quadtree.Index

	workers int
	logger  *slog.Logger
}

func newLayer(name string, boundary geom.Rect, cfg Config, options options) *Layer {
	log := options.logger.With("layer", name)

	return &Layer{
		name:   name,
		config: cfg,
		index: quadtree.New(boundary, cfg.Capacity,
			quadtree.WithMaxDepth(cfg.MaxDepth),
			quadtree.WithLogger(log),
		),
		workers: options.workers,
		logger:  log,
	}
}

func (l *Layer) Name() string {
	return l.name
}

func (l *Layer) Config() Config {
	return l.config
}

func (l *Layer) Boundary() geom.Rect {
	return l.index.Boundary()
}

// Insert stores entries in order and reports for each whether it was placed.
func (l *Layer) Insert(entries ...geom.Rect) []bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	res := make([]bool, len(entries))
	for i, e := range entries {
		res[i] = l.index.Insert(e)
	}
	return res
}

func (l *Layer) Query(region geom.Rect) ([]geom.Rect, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	return l.index.Query(region)
}

type QueryResult struct {
	Region  geom.Rect
	Entries []geom.Rect
	Found   bool
}

// QueryMany runs one query per region against a single snapshot of the layer.
// Regions not started before ctx is done are left unfound and ctx.Err() is
// returned; a batch that completed in full returns no error.
func (l *Layer) QueryMany(ctx context.Context, regions []geom.Rect) ([]QueryResult, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	res := make([]QueryResult, len(regions))
	var skipped atomic.Bool

	p := pool.New().WithMaxGoroutines(l.workers)
	for i, region := range regions {
		res[i].Region = region
		p.Go(func() {
			if ctx.Err() != nil {
				skipped.Store(true)
				return
			}
			res[i].Entries, res[i].Found = l.index.Query(region)
		})
	}
	p.Wait()

	if skipped.Load() {
		return res, ctx.Err()
	}
	return res, nil
}

type Boundary struct {
	Depth int
	Rect  geom.Rect
}

// Boundaries lists every node boundary in pre-order.
func (l *Layer) Boundaries() []Boundary {
	l.mu.RLock()
	defer l.mu.RUnlock()

	out := []Boundary{}
	for depth, rect := range l.index.Boundaries() {
		out = append(out, Boundary{Depth: depth, Rect: rect})
	}
	return out
}

// Entries lists every stored entry.
func (l *Layer) Entries() geom.Rects {
	l.mu.RLock()
	defer l.mu.RUnlock()

	out := make(geom.Rects, 0, l.index.Len())
	for e := range l.index.All() {
		out = append(out, e)
	}
	return out
}

func (l *Layer) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()

	return l.index.Len()
}

func (l *Layer) Stats() quadtree.Stats {
	l.mu.RLock()
	defer l.mu.RUnlock()

	return l.index.Stats()
}

func (l *Layer) Render(selection geom.Rect, opts ...render.Option) (*image.RGBA, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	return render.Draw(l.index, selection, opts...)
}
