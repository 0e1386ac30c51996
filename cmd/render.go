package main

import (
	"fmt"
	"os"

	"github.com/royalcat/rquadtree/entries"
	"github.com/royalcat/rquadtree/geom"
	"github.com/royalcat/rquadtree/quadtree"
	"github.com/royalcat/rquadtree/render"
	"github.com/urfave/cli/v3"
)

func renderImage(ctx *cli.Context) error {
	world, err := parseWorld(ctx.String("world"))
	if err != nil {
		return err
	}

	capacity := ctx.Int("capacity")
	if capacity < 1 {
		return fmt.Errorf("capacity must be at least 1, got %d", capacity)
	}

	var selection geom.Rect
	if s := ctx.String("selection"); s != "" {
		selection, err = geom.ParseRect(s)
		if err != nil {
			return fmt.Errorf("invalid selection: %w", err)
		}
		if !selection.Valid() {
			return fmt.Errorf("invalid selection %s: negative size", selection)
		}
	}

	rects, err := entries.Load(ctx.String("input"))
	if err != nil {
		return err
	}

	idx := quadtree.New(world, capacity, quadtree.WithMaxDepth(ctx.Int("max-depth")))
	for _, r := range rects {
		idx.Insert(r)
	}

	img, err := render.Draw(idx, selection, render.WithScale(ctx.Int("scale")))
	if err != nil {
		return err
	}

	output := ctx.String("output")
	f, err := os.Create(output)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := render.EncodePNG(f, img); err != nil {
		return fmt.Errorf("failed to encode %s: %w", output, err)
	}

	found, _ := idx.Query(selection)
	fmt.Printf("Rendered %d entries, %d selected, to %s\n", idx.Len(), len(found), output)

	return f.Close()
}
