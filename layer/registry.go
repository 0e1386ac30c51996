package layer

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/google/btree"
	"github.com/puzpuzpuz/xsync/v3"
	"github.com/royalcat/rquadtree/geom"
)

var (
	ErrLayerExists     = errors.New("layer already exists")
	ErrLayerNotFound   = errors.New("layer not found")
	ErrInvalidName     = errors.New("invalid layer name")
	ErrInvalidBoundary = errors.New("invalid boundary")
	ErrInvalidCapacity = errors.New("invalid capacity")
)

// Registry hosts named layers. Lookups are lock free; creation and deletion
// are serialized so the ordered name set stays in sync with the map.
type Registry struct {
	layers *xsync.MapOf[string, *Layer]

	mu    sync.Mutex
	names *btree.BTreeG[string]

	options options
	logger  *slog.Logger
}

func NewRegistry(opts ...Option) *Registry {
	options := loadOptions(opts...)

	return &Registry{
		layers:  xsync.NewMapOf[string, *Layer](),
		names:   btree.NewG[string](16, func(a, b string) bool { return a < b }),
		options: options,
		logger:  options.logger.With("component", "layer_registry"),
	}
}

func validate(name string, boundary geom.Rect, cfg Config) error {
	if name == "" || strings.ContainsAny(name, "/ \t\n") {
		return fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	if !boundary.Valid() || boundary.Empty() {
		return fmt.Errorf("%w: %s", ErrInvalidBoundary, boundary)
	}
	if cfg.Capacity < 1 {
		return fmt.Errorf("%w: %d", ErrInvalidCapacity, cfg.Capacity)
	}
	return nil
}

// Create adds an empty layer covering boundary.
func (r *Registry) Create(name string, boundary geom.Rect, cfg Config) (*Layer, error) {
	if err := validate(name, boundary, cfg); err != nil {
		return nil, err
	}
	if cfg.MaxDepth <= 0 {
		cfg.MaxDepth = ConfigDefault().MaxDepth
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.layers.Load(name); ok {
		return nil, fmt.Errorf("%w: %s", ErrLayerExists, name)
	}

	l := newLayer(name, boundary, cfg, r.options)
	r.layers.Store(name, l)
	r.names.ReplaceOrInsert(name)

	r.logger.Info("Layer created",
		"layer", name,
		"boundary", boundary.String(),
		"capacity", cfg.Capacity,
		"max_depth", cfg.MaxDepth,
	)

	return l, nil
}

func (r *Registry) Get(name string) (*Layer, error) {
	l, ok := r.layers.Load(name)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrLayerNotFound, name)
	}
	return l, nil
}

// Delete drops a whole layer and reports whether it existed.
func (r *Registry) Delete(name string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.layers.LoadAndDelete(name); !ok {
		return false
	}
	r.names.Delete(name)

	r.logger.Info("Layer deleted", "layer", name)
	return true
}

// Names returns layer names in ascending order.
func (r *Registry) Names() []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	names := make([]string, 0, r.names.Len())
	r.names.Ascend(func(name string) bool {
		names = append(names, name)
		return true
	})
	return names
}

func (r *Registry) Len() int {
	return r.layers.Size()
}
