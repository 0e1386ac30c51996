package render_test

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"image/png"
	"math"
	"testing"

	"github.com/royalcat/rquadtree/geom"
	"github.com/royalcat/rquadtree/quadtree"
	"github.com/royalcat/rquadtree/render"
)

func sameColor(a, b color.Color) bool {
	r1, g1, b1, a1 := a.RGBA()
	r2, g2, b2, a2 := b.RGBA()
	return r1 == r2 && g1 == g2 && b1 == b2 && a1 == a2
}

func testIndex() *quadtree.Index {
	idx := quadtree.New(geom.Rect{X: 0, Y: 0, W: 100, H: 100}, 1)
	idx.Insert(geom.Point(70, 70))
	idx.Insert(geom.Point(10, 10))
	return idx
}

func TestDraw(t *testing.T) {
	p := render.DefaultPalette()
	img, err := render.Draw(testIndex(), geom.Rect{X: 0, Y: 0, W: 20, H: 20})
	if err != nil {
		t.Fatal(err)
	}

	if img.Bounds() != image.Rect(0, 0, 101, 101) {
		t.Fatalf("unexpected bounds %v", img.Bounds())
	}

	tests := []struct {
		name string
		x, y int
		want color.Color
	}{
		{"root corner", 0, 0, p.Boundary},
		{"quadrant line", 50, 30, p.Boundary},
		{"far edge", 100, 100, p.Boundary},
		{"entry", 70, 70, p.Entry},
		{"background", 30, 80, p.Background},
	}
	for _, tt := range tests {
		if got := img.At(tt.x, tt.y); !sameColor(got, tt.want) {
			t.Errorf("%s: pixel (%d,%d) = %v, want %v", tt.name, tt.x, tt.y, got, tt.want)
		}
	}

	// matched entry is drawn in the selected colour, then tinted by the selection
	got := img.At(10, 10)
	if sameColor(got, p.Entry) || sameColor(got, p.Background) {
		t.Errorf("selected entry not highlighted: %v", got)
	}
	if sameColor(img.At(15, 15), p.Background) {
		t.Error("selection area not tinted")
	}
}

func TestDrawEmptySelection(t *testing.T) {
	p := render.DefaultPalette()
	img, err := render.Draw(testIndex(), geom.Rect{})
	if err != nil {
		t.Fatal(err)
	}

	if got := img.At(10, 10); !sameColor(got, p.Entry) {
		t.Fatalf("entry without selection = %v, want entry colour", got)
	}
}

func TestDrawScaleAndEncode(t *testing.T) {
	img, err := render.Draw(testIndex(), geom.Rect{X: 60, Y: 60, W: 20, H: 20}, render.WithScale(2))
	if err != nil {
		t.Fatal(err)
	}
	if img.Bounds() != image.Rect(0, 0, 202, 202) {
		t.Fatalf("unexpected bounds %v", img.Bounds())
	}

	var buf bytes.Buffer
	if err = render.EncodePNG(&buf, img); err != nil {
		t.Fatal(err)
	}
	decoded, err := png.Decode(&buf)
	if err != nil {
		t.Fatal(err)
	}
	if decoded.Bounds() != img.Bounds() {
		t.Fatalf("decoded bounds %v", decoded.Bounds())
	}
}

func TestDrawPixelBudget(t *testing.T) {
	tests := []struct {
		name     string
		boundary geom.Rect
		opts     []render.Option
		wantErr  bool
	}{
		{"fits exactly", geom.Rect{W: 99, H: 99}, []render.Option{render.WithMaxPixels(100 * 100)}, false},
		{"one row over", geom.Rect{W: 99, H: 100}, []render.Option{render.WithMaxPixels(100 * 100)}, true},
		{"scaled over", geom.Rect{W: 99, H: 99}, []render.Option{render.WithMaxPixels(100 * 100), render.WithScale(2)}, true},
		{"huge boundary", geom.Rect{W: 1_000_000_000, H: 1_000_000_000}, nil, true},
		{"moderate boundary at max scale", geom.Rect{W: 50_000, H: 50_000}, []render.Option{render.WithScale(8)}, true},
		{"max int boundary", geom.Rect{W: math.MaxInt, H: math.MaxInt}, []render.Option{render.WithScale(8)}, true},
		{"huge scale", geom.Rect{W: 10, H: 10}, []render.Option{render.WithScale(math.MaxInt)}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			idx := quadtree.New(tt.boundary, 4)
			img, err := render.Draw(idx, geom.Rect{}, tt.opts...)
			if tt.wantErr {
				if !errors.Is(err, render.ErrTooLarge) {
					t.Fatalf("expected ErrTooLarge, got %v", err)
				}
				if img != nil {
					t.Fatal("image returned with error")
				}
				return
			}
			if err != nil {
				t.Fatal(err)
			}
		})
	}
}
