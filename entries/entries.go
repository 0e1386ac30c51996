// Package entries reads, writes and generates entry lists used to populate
// a quadtree. The text format is one entry per line, "x,y" for a point or
// "x,y,w,h" for a rect; blank lines and lines starting with '#' are skipped.
package entries

import (
	"bufio"
	"fmt"
	"io"
	"math/rand"
	"os"
	"strconv"
	"strings"

	"github.com/fogleman/poissondisc"
	"github.com/klauspost/compress/zstd"
	"github.com/royalcat/rquadtree/geom"
	"golang.org/x/exp/mmap"
)

const zstdExt = ".zst"

// Open opens an entries file. Files ending in .zst are decompressed on the
// fly, plain files are memory mapped.
func Open(name string) (io.ReadCloser, error) {
	if strings.HasSuffix(name, zstdExt) {
		file, err := os.Open(name)
		if err != nil {
			return nil, fmt.Errorf("can`t open file error: %w", err)
		}
		dec, err := zstd.NewReader(file)
		if err != nil {
			file.Close()
			return nil, fmt.Errorf("can`t create zstd reader: %w", err)
		}
		return &zstdReadCloser{ReadCloser: dec.IOReadCloser(), file: file}, nil
	}

	m, err := mmap.Open(name)
	if err != nil {
		return nil, fmt.Errorf("can`t open file error: %w", err)
	}
	return &mmapReadCloser{Reader: io.NewSectionReader(m, 0, int64(m.Len())), m: m}, nil
}

type zstdReadCloser struct {
	io.ReadCloser
	file *os.File
}

func (z *zstdReadCloser) Close() error {
	z.ReadCloser.Close()
	return z.file.Close()
}

type mmapReadCloser struct {
	io.Reader
	m *mmap.ReaderAt
}

func (r *mmapReadCloser) Close() error {
	return r.m.Close()
}

// Load reads every entry of the named file.
func Load(name string) (geom.Rects, error) {
	r, err := Open(name)
	if err != nil {
		return nil, err
	}
	defer r.Close()

	rects, err := Read(r)
	if err != nil {
		return nil, fmt.Errorf("error reading %s: %w", name, err)
	}
	return rects, nil
}

func Read(r io.Reader) (geom.Rects, error) {
	rects := geom.Rects{}

	scanner := bufio.NewScanner(r)
	line := 0
	for scanner.Scan() {
		line++
		text := strings.TrimSpace(scanner.Text())
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}

		rect, err := geom.ParseRect(text)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		rects = append(rects, rect)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}

	return rects, nil
}

// Write writes rects in the text format, using the short form for 1x1 points.
func Write(w io.Writer, rects geom.Rects) error {
	bw := bufio.NewWriter(w)
	buf := make([]byte, 0, 64)
	for _, r := range rects {
		buf = buf[:0]
		buf = strconv.AppendInt(buf, int64(r.X), 10)
		buf = append(buf, ',')
		buf = strconv.AppendInt(buf, int64(r.Y), 10)
		if r.W != 1 || r.H != 1 {
			buf = append(buf, ',')
			buf = strconv.AppendInt(buf, int64(r.W), 10)
			buf = append(buf, ',')
			buf = strconv.AppendInt(buf, int64(r.H), 10)
		}
		buf = append(buf, '\n')
		if _, err := bw.Write(buf); err != nil {
			return err
		}
	}
	return bw.Flush()
}

// Save writes rects to the named file, zstd compressed when the name ends in .zst.
func Save(name string, rects geom.Rects) error {
	file, err := os.OpenFile(name, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0644)
	if err != nil {
		return fmt.Errorf("error creating entries file: %w", err)
	}
	defer file.Close()

	if !strings.HasSuffix(name, zstdExt) {
		if err := Write(file, rects); err != nil {
			return err
		}
		return file.Close()
	}

	enc, err := zstd.NewWriter(file)
	if err != nil {
		return fmt.Errorf("can`t create zstd writer: %w", err)
	}
	if err := Write(enc, rects); err != nil {
		enc.Close()
		return err
	}
	if err := enc.Close(); err != nil {
		return err
	}
	return file.Close()
}

// Sample fills boundary with 1x1 points no closer than distance to each other.
// rnd may be nil to use the global source.
func Sample(boundary geom.Rect, distance float64, rnd *rand.Rand) geom.Rects {
	if boundary.Empty() || distance <= 0 {
		return geom.Rects{}
	}

	b := boundary.Bound()
	points := poissondisc.Sample(b.Min.X(), b.Min.Y(), b.Max.X(), b.Max.Y(), distance, 30, rnd)

	rects := make(geom.Rects, 0, len(points))
	for _, p := range points {
		rect := geom.Point(int(p.X), int(p.Y))
		if boundary.Contains(rect) {
			rects = append(rects, rect)
		}
	}
	return rects
}
