package geom

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/paulmach/orb"
)

// Rect is an axis aligned rectangle with integer coordinates.
// It is used both as a region (node boundary, query window) and as a stored entry.
//
//easyjson:json
type Rect struct {
	X int `json:"x"`
	Y int `json:"y"`
	W int `json:"w"`
	H int `json:"h"`
}

//easyjson:json
type Rects []Rect

// Point returns a 1x1 entry at x, y.
func Point(x, y int) Rect {
	return Rect{X: x, Y: y, W: 1, H: 1}
}

// Span returns the rect between two corners regardless of their order,
// so a selection dragged up or left still has a non negative extent.
func Span(x0, y0, x1, y1 int) Rect {
	if x1 < x0 {
		x0, x1 = x1, x0
	}
	if y1 < y0 {
		y0, y1 = y1, y0
	}
	return Rect{X: x0, Y: y0, W: x1 - x0, H: y1 - y0}
}

// Contains reports whether the origin of p lies inside r.
// Both edges are inclusive, so a point on the right or bottom edge is contained.
func (r Rect) Contains(p Rect) bool {
	return p.X >= r.X && p.X <= r.X+r.W &&
		p.Y >= r.Y && p.Y <= r.Y+r.H
}

// Intersects reports whether r and o overlap.
// Rects that only touch at an edge do not intersect.
func (r Rect) Intersects(o Rect) bool {
	return r.X < o.X+o.W &&
		r.X+r.W > o.X &&
		r.Y < o.Y+o.H &&
		r.Y+r.H > o.Y
}

// Quadrants splits r into north-west, north-east, south-west and south-east
// halves. Odd sizes are truncated.
func (r Rect) Quadrants() [4]Rect {
	w, h := r.W/2, r.H/2
	return [4]Rect{
		{X: r.X, Y: r.Y, W: w, H: h},
		{X: r.X + w, Y: r.Y, W: w, H: h},
		{X: r.X, Y: r.Y + h, W: w, H: h},
		{X: r.X + w, Y: r.Y + h, W: w, H: h},
	}
}

// Valid reports whether r can be used as a boundary or query region:
// its size is non negative and its far edges fit in an int.
func (r Rect) Valid() bool {
	return r.W >= 0 && r.H >= 0 &&
		r.X <= math.MaxInt-r.W &&
		r.Y <= math.MaxInt-r.H
}

func (r Rect) Empty() bool {
	return r.W == 0 || r.H == 0
}

func (r Rect) String() string {
	return fmt.Sprintf("%d,%d,%d,%d", r.X, r.Y, r.W, r.H)
}

// Bound converts r to an orb bound, with Y growing downwards as in screen space.
func (r Rect) Bound() orb.Bound {
	return orb.Bound{
		Min: orb.Point{float64(r.X), float64(r.Y)},
		Max: orb.Point{float64(r.X + r.W), float64(r.Y + r.H)},
	}
}

// FromBound truncates an orb bound to integer coordinates.
func FromBound(b orb.Bound) Rect {
	return Rect{
		X: int(b.Min.X()),
		Y: int(b.Min.Y()),
		W: int(b.Max.X() - b.Min.X()),
		H: int(b.Max.Y() - b.Min.Y()),
	}
}

// ParseRect parses "x,y,w,h". A two value form "x,y" yields a point.
func ParseRect(s string) (Rect, error) {
	fields := strings.FieldsFunc(s, func(r rune) bool {
		return r == ',' || r == ' ' || r == '\t'
	})
	if len(fields) != 2 && len(fields) != 4 {
		return Rect{}, fmt.Errorf("invalid rect %q: expected x,y or x,y,w,h", s)
	}

	vals := [4]int{0, 0, 1, 1}
	for i, f := range fields {
		v, err := strconv.Atoi(f)
		if err != nil {
			return Rect{}, fmt.Errorf("invalid rect %q: %w", s, err)
		}
		vals[i] = v
	}

	return Rect{X: vals[0], Y: vals[1], W: vals[2], H: vals[3]}, nil
}
