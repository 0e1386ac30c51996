package quadtree

import "github.com/royalcat/rquadtree/geom"

// Quadrant indexes a node's children. The order is also the visiting order
// of insert, query and traversal.
type Quadrant int

const (
	NorthWest Quadrant = iota
	NorthEast
	SouthWest
	SouthEast
)

func (q Quadrant) String() string {
	switch q {
	case NorthWest:
		return "north-west"
	case NorthEast:
		return "north-east"
	case SouthWest:
		return "south-west"
	case SouthEast:
		return "south-east"
	default:
		return "unknown"
	}
}

type node struct {
	boundary geom.Rect
	depth    int
	entries  []geom.Rect

	// nil while the node is a leaf, all four quadrants once subdivided
	children *[4]node
}

func newNode(boundary geom.Rect, depth int) node {
	return node{boundary: boundary, depth: depth}
}

func (n *node) isLeaf() bool {
	return n.children == nil
}

func (n *node) subdivide() {
	quads := n.boundary.Quadrants()
	n.children = &[4]node{
		newNode(quads[NorthWest], n.depth+1),
		newNode(quads[NorthEast], n.depth+1),
		newNode(quads[SouthWest], n.depth+1),
		newNode(quads[SouthEast], n.depth+1),
	}
}

// insert places e at this node or one of its descendants.
// limited reports whether the depth bound stopped a subdivision on the way.
func (n *node) insert(e geom.Rect, capacity, maxDepth int) (ok bool, limited bool) {
	if !n.boundary.Contains(e) {
		return false, false
	}

	if n.isLeaf() {
		if len(n.entries) < capacity {
			n.entries = append(n.entries, e)
			return true, false
		}
		if n.depth >= maxDepth {
			return false, true
		}
		n.subdivide()
	}

	for i := range n.children {
		ok, l := n.children[i].insert(e, capacity, maxDepth)
		if ok {
			return true, false
		}
		limited = limited || l
	}

	return false, limited
}

// query appends entries contained in region to out.
// It returns false when the node boundary does not intersect region at all.
// visited, when not nil, counts the nodes whose boundary was tested.
func (n *node) query(region geom.Rect, out []geom.Rect, visited *int) ([]geom.Rect, bool) {
	if visited != nil {
		*visited++
	}

	if !n.boundary.Intersects(region) {
		return out, false
	}

	for _, e := range n.entries {
		if region.Contains(e) {
			out = append(out, e)
		}
	}

	if n.isLeaf() {
		return out, true
	}

	for i := range n.children {
		out, _ = n.children[i].query(region, out, visited)
	}

	return out, true
}

// walk visits n and its descendants in pre-order until fn returns false.
func (n *node) walk(fn func(n *node) bool) bool {
	if !fn(n) {
		return false
	}
	if n.isLeaf() {
		return true
	}
	for i := range n.children {
		if !n.children[i].walk(fn) {
			return false
		}
	}
	return true
}
