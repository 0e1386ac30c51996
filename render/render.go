// Package render draws a quadtree the way an interactive client would show it:
// node boundaries, stored entries, the entries matched by a selection and the
// selection itself.
package render

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"io"

	"github.com/royalcat/rquadtree/geom"
	"github.com/royalcat/rquadtree/quadtree"
)

type Palette struct {
	Background color.Color
	Entry      color.Color
	Selected   color.Color
	Selection  color.Color
	Boundary   color.Color
}

func DefaultPalette() Palette {
	return Palette{
		Background: color.White,
		Entry:      color.RGBA{R: 0xe6, G: 0x29, B: 0x37, A: 0xff},
		Selected:   color.RGBA{R: 0x00, G: 0x79, B: 0xf1, A: 0xff},
		Selection:  color.NRGBA{R: 0x00, G: 0xff, B: 0x00, A: 100},
		Boundary:   color.Black,
	}
}

// DefaultMaxPixels caps the canvas at 128MiB of RGBA.
const DefaultMaxPixels = 1 << 25

var ErrTooLarge = errors.New("image too large")

type options struct {
	scale     int
	maxPixels int
	palette   Palette
}

type Option func(*options)

// WithScale multiplies every coordinate by scale. Default: 1
func WithScale(scale int) Option {
	return func(o *options) {
		if scale > 0 {
			o.scale = scale
		}
	}
}

// WithMaxPixels bounds the canvas size, values above 1<<31 are clamped.
// Default: DefaultMaxPixels
func WithMaxPixels(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.maxPixels = min(n, 1<<31)
		}
	}
}

func WithPalette(p Palette) Option {
	return func(o *options) {
		o.palette = p
	}
}

// Draw renders idx into a new image covering its boundary. Entries matched by
// idx.Query(selection) are drawn over the rest; an empty selection highlights
// nothing. ErrTooLarge is returned when the canvas would exceed the pixel budget.
func Draw(idx *quadtree.Index, selection geom.Rect, opts ...Option) (*image.RGBA, error) {
	o := options{scale: 1, maxPixels: DefaultMaxPixels, palette: DefaultPalette()}
	for _, opt := range opts {
		opt(&o)
	}

	b := idx.Boundary()
	if !o.fits(b) {
		return nil, fmt.Errorf("%w: %dx%d at scale %d exceeds %d pixels", ErrTooLarge, b.W, b.H, o.scale, o.maxPixels)
	}

	c := canvas{origin: b, scale: o.scale}
	// one extra unit so lines on the right and bottom edge stay visible
	img := image.NewRGBA(c.rect(geom.Rect{X: c.origin.X, Y: c.origin.Y, W: c.origin.W + 1, H: c.origin.H + 1}))
	draw.Draw(img, img.Bounds(), image.NewUniform(o.palette.Background), image.Point{}, draw.Src)

	for e := range idx.All() {
		c.fill(img, e, o.palette.Entry)
	}

	if !selection.Empty() {
		if matched, ok := idx.Query(selection); ok {
			for _, e := range matched {
				c.fill(img, e, o.palette.Selected)
			}
		}
		draw.Draw(img, c.rect(selection), image.NewUniform(o.palette.Selection), image.Point{}, draw.Over)
	}

	idx.VisitBoundaries(func(b geom.Rect) {
		c.outline(img, b, o.palette.Boundary)
	})

	return img, nil
}

// fits reports whether the canvas for boundary b, one unit wider and taller,
// stays within maxPixels. maxPixels is at most 1<<31 so the products below
// never overflow.
func (o options) fits(b geom.Rect) bool {
	limit := uint64(o.maxPixels)
	scale := uint64(o.scale)
	if scale > limit {
		return false
	}
	w := uint64(b.W) + 1
	h := uint64(b.H) + 1
	if w > limit || h > limit {
		return false
	}
	w *= scale
	h *= scale
	return w <= limit && h <= limit && w*h <= limit
}

func EncodePNG(w io.Writer, img image.Image) error {
	enc := png.Encoder{CompressionLevel: png.BestSpeed}
	return enc.Encode(w, img)
}

type canvas struct {
	origin geom.Rect
	scale  int
}

func (c canvas) rect(r geom.Rect) image.Rectangle {
	return image.Rect(
		(r.X-c.origin.X)*c.scale,
		(r.Y-c.origin.Y)*c.scale,
		(r.X-c.origin.X+r.W)*c.scale,
		(r.Y-c.origin.Y+r.H)*c.scale,
	)
}

// fill draws an entry; zero sized entries still get a single cell.
func (c canvas) fill(img draw.Image, r geom.Rect, col color.Color) {
	if r.W == 0 {
		r.W = 1
	}
	if r.H == 0 {
		r.H = 1
	}
	draw.Draw(img, c.rect(r), image.NewUniform(col), image.Point{}, draw.Src)
}

func (c canvas) outline(img draw.Image, r geom.Rect, col color.Color) {
	u := image.NewUniform(col)
	b := c.rect(r)
	edges := [4]image.Rectangle{
		image.Rect(b.Min.X, b.Min.Y, b.Max.X+1, b.Min.Y+1),
		image.Rect(b.Min.X, b.Max.Y, b.Max.X+1, b.Max.Y+1),
		image.Rect(b.Min.X, b.Min.Y, b.Min.X+1, b.Max.Y+1),
		image.Rect(b.Max.X, b.Min.Y, b.Max.X+1, b.Max.Y+1),
	}
	for _, e := range edges {
		draw.Draw(img, e, u, image.Point{}, draw.Src)
	}
}
