// Package quadtree implements a region quadtree over integer rectangles.
//
// Every node holds up to a fixed number of entries. The first insert that
// would overflow a leaf splits it into four equal quadrants, visited in
// north-west, north-east, south-west, south-east order. Entries stored before
// the split stay on the node. Placement and matching only look at an entry's
// origin, with inclusive edges; pruning uses strict rectangle intersection.
//
// An Index is not safe for concurrent use.
package quadtree

import (
	"iter"
	"log/slog"

	"github.com/royalcat/rquadtree/geom"
)

type Index struct {
	root     node
	capacity int
	maxDepth int
	size     int

	logger *slog.Logger
}

// New creates an empty index covering boundary. capacity is the number of
// entries a node holds before it subdivides; it is shared by every node.
func New(boundary geom.Rect, capacity int, opts ...Option) *Index {
	options := loadOptions(opts...)

	return &Index{
		root:     newNode(boundary, 0),
		capacity: capacity,
		maxDepth: options.maxDepth,
		logger:   options.logger,
	}
}

func (idx *Index) Boundary() geom.Rect {
	return idx.root.boundary
}

func (idx *Index) Capacity() int {
	return idx.capacity
}

func (idx *Index) MaxDepth() int {
	return idx.maxDepth
}

// Len returns the number of stored entries.
func (idx *Index) Len() int {
	return idx.size
}

// Insert stores entry and reports whether it was placed. Entries whose origin
// lies outside the index boundary are rejected, as are entries that would need
// a node deeper than the configured max depth.
func (idx *Index) Insert(entry geom.Rect) bool {
	ok, limited := idx.root.insert(entry, idx.capacity, idx.maxDepth)
	if ok {
		idx.size++
		return true
	}

	if limited {
		idx.logger.Warn("entry rejected, quadtree max depth reached",
			"entry", entry.String(),
			"max_depth", idx.maxDepth,
			"capacity", idx.capacity,
		)
	}
	return false
}

// Query returns every stored entry whose origin lies inside region.
// The second result is false when region does not intersect the index
// boundary, in which case nothing was searched. Otherwise the result may be
// empty. Order is deterministic: a node's own entries in insertion order,
// then its quadrants in NW, NE, SW, SE order.
func (idx *Index) Query(region geom.Rect) ([]geom.Rect, bool) {
	out, ok := idx.root.query(region, nil, nil)
	if !ok {
		return nil, false
	}
	if out == nil {
		out = []geom.Rect{}
	}
	return out, true
}

// VisitBoundaries calls visitor with every node boundary in pre-order.
func (idx *Index) VisitBoundaries(visitor func(boundary geom.Rect)) {
	idx.root.walk(func(n *node) bool {
		visitor(n.boundary)
		return true
	})
}

// Boundaries yields the depth and boundary of every node in pre-order.
func (idx *Index) Boundaries() iter.Seq2[int, geom.Rect] {
	return func(yield func(int, geom.Rect) bool) {
		idx.root.walk(func(n *node) bool {
			return yield(n.depth, n.boundary)
		})
	}
}

// All yields every stored entry, walking nodes in pre-order.
func (idx *Index) All() iter.Seq[geom.Rect] {
	return func(yield func(geom.Rect) bool) {
		idx.root.walk(func(n *node) bool {
			for _, e := range n.entries {
				if !yield(e) {
					return false
				}
			}
			return true
		})
	}
}

type Stats struct {
	Nodes   int `json:"nodes"`
	Leaves  int `json:"leaves"`
	Depth   int `json:"depth"`
	Entries int `json:"entries"`
}

func (idx *Index) Stats() Stats {
	var s Stats
	idx.root.walk(func(n *node) bool {
		s.Nodes++
		if n.isLeaf() {
			s.Leaves++
		}
		if n.depth > s.Depth {
			s.Depth = n.depth
		}
		s.Entries += len(n.entries)
		return true
	})
	return s
}
