package geom_test

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/paulmach/orb"
	"github.com/royalcat/rquadtree/geom"
)

func TestContainsInclusive(t *testing.T) {
	boundary := geom.Rect{X: 0, Y: 0, W: 10, H: 10}

	tests := []struct {
		x, y int
		want bool
	}{
		{0, 0, true},
		{10, 10, true},
		{10, 0, true},
		{0, 10, true},
		{5, 5, true},
		{11, 0, false},
		{-1, 5, false},
		{5, 11, false},
	}

	for _, tt := range tests {
		got := boundary.Contains(geom.Rect{X: tt.x, Y: tt.y})
		if got != tt.want {
			t.Errorf("Contains(%d,%d) = %v, want %v", tt.x, tt.y, got, tt.want)
		}
	}
}

func TestContainsComparesOriginOnly(t *testing.T) {
	boundary := geom.Rect{X: 0, Y: 0, W: 10, H: 10}

	if !boundary.Contains(geom.Rect{X: 9, Y: 9, W: 100, H: 100}) {
		t.Fatal("entry with origin inside and extent outside must be contained")
	}
	if boundary.Contains(geom.Rect{X: -5, Y: 2, W: 100, H: 1}) {
		t.Fatal("entry with origin outside must not be contained")
	}
}

func TestIntersectsExclusive(t *testing.T) {
	a := geom.Rect{X: 0, Y: 0, W: 10, H: 10}

	tests := []struct {
		name string
		b    geom.Rect
		want bool
	}{
		{"touching right edge", geom.Rect{X: 10, Y: 0, W: 10, H: 10}, false},
		{"overlap by one", geom.Rect{X: 9, Y: 0, W: 10, H: 10}, true},
		{"touching bottom edge", geom.Rect{X: 0, Y: 10, W: 10, H: 10}, false},
		{"left of", geom.Rect{X: -20, Y: 0, W: 5, H: 5}, false},
		{"above", geom.Rect{X: 0, Y: -20, W: 5, H: 5}, false},
		{"inside", geom.Rect{X: 2, Y: 2, W: 2, H: 2}, true},
		{"covers", geom.Rect{X: -5, Y: -5, W: 50, H: 50}, true},
		{"zero area inside", geom.Rect{X: 5, Y: 5, W: 0, H: 0}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := a.Intersects(tt.b); got != tt.want {
				t.Errorf("Intersects(%v) = %v, want %v", tt.b, got, tt.want)
			}
			if got := tt.b.Intersects(a); got != tt.want {
				t.Errorf("reverse Intersects(%v) = %v, want %v", tt.b, got, tt.want)
			}
		})
	}
}

func TestQuadrantsTruncate(t *testing.T) {
	q := geom.Rect{X: 1, Y: 2, W: 9, H: 5}.Quadrants()

	want := [4]geom.Rect{
		{X: 1, Y: 2, W: 4, H: 2},
		{X: 5, Y: 2, W: 4, H: 2},
		{X: 1, Y: 4, W: 4, H: 2},
		{X: 5, Y: 4, W: 4, H: 2},
	}
	if q != want {
		t.Fatalf("got %v, want %v", q, want)
	}
}

func TestSpan(t *testing.T) {
	got := geom.Span(10, 20, 4, 5)
	want := geom.Rect{X: 4, Y: 5, W: 6, H: 15}
	if got != want {
		t.Fatalf("got %v, want %v", got, want)
	}
	if !got.Valid() {
		t.Fatal("span must be valid")
	}
}

func TestValid(t *testing.T) {
	tests := []struct {
		name string
		r    geom.Rect
		want bool
	}{
		{"world", geom.Rect{X: 0, Y: 0, W: 800, H: 450}, true},
		{"zero extent", geom.Rect{X: 5, Y: 5}, true},
		{"negative origin", geom.Rect{X: -10, Y: -10, W: 5, H: 5}, true},
		{"negative width", geom.Rect{W: -1, H: 1}, false},
		{"negative height", geom.Rect{W: 1, H: -1}, false},
		{"far edge at max int", geom.Rect{X: 0, Y: 0, W: math.MaxInt, H: math.MaxInt}, true},
		{"right edge overflows", geom.Rect{X: math.MaxInt - 5, Y: 0, W: 10, H: 10}, false},
		{"bottom edge overflows", geom.Rect{X: 0, Y: 1, W: 10, H: math.MaxInt}, false},
	}

	for _, tt := range tests {
		if got := tt.r.Valid(); got != tt.want {
			t.Errorf("%s: %v.Valid() = %v, want %v", tt.name, tt.r, got, tt.want)
		}
	}
}

func TestParseRect(t *testing.T) {
	tests := []struct {
		in      string
		want    geom.Rect
		wantErr bool
	}{
		{"0,0,800,450", geom.Rect{X: 0, Y: 0, W: 800, H: 450}, false},
		{"3, 4", geom.Point(3, 4), false},
		{"-1 -2 3 4", geom.Rect{X: -1, Y: -2, W: 3, H: 4}, false},
		{"1,2,3", geom.Rect{}, true},
		{"a,b", geom.Rect{}, true},
		{"", geom.Rect{}, true},
	}

	for _, tt := range tests {
		got, err := geom.ParseRect(tt.in)
		if (err != nil) != tt.wantErr {
			t.Fatalf("ParseRect(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
		}
		if got != tt.want {
			t.Errorf("ParseRect(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestBound(t *testing.T) {
	r := geom.Rect{X: 1, Y: 2, W: 3, H: 4}
	b := r.Bound()
	if b.Min != (orb.Point{1, 2}) || b.Max != (orb.Point{4, 6}) {
		t.Fatalf("unexpected bound %v", b)
	}
	if geom.FromBound(b) != r {
		t.Fatalf("FromBound(%v) = %v, want %v", b, geom.FromBound(b), r)
	}
}

func TestRectJSONMatchesStdlib(t *testing.T) {
	type plain struct {
		X int `json:"x"`
		Y int `json:"y"`
		W int `json:"w"`
		H int `json:"h"`
	}

	rects := geom.Rects{{X: 1, Y: 2, W: 3, H: 4}, geom.Point(-5, 6)}
	fast, err := rects.MarshalJSON()
	if err != nil {
		t.Fatal(err)
	}
	expected, err := json.Marshal([]plain{{1, 2, 3, 4}, {-5, 6, 1, 1}})
	if err != nil {
		t.Fatal(err)
	}
	if string(fast) != string(expected) {
		t.Fatalf("expected %s; got %s", expected, fast)
	}

	var decoded geom.Rects
	if err := decoded.UnmarshalJSON([]byte(`[{"x":1,"y":2,"w":3,"h":4,"extra":true},{"y":6,"x":-5,"w":1,"h":1}]`)); err != nil {
		t.Fatal(err)
	}
	if len(decoded) != 2 || decoded[0] != rects[0] || decoded[1] != rects[1] {
		t.Fatalf("unexpected decoded value %v", decoded)
	}
}
