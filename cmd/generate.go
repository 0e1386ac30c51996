package main

import (
	"fmt"
	"math/rand"

	"github.com/dustin/go-humanize"
	"github.com/royalcat/rquadtree/entries"
	"github.com/urfave/cli/v3"
)

func generate(ctx *cli.Context) error {
	world, err := parseWorld(ctx.String("world"))
	if err != nil {
		return err
	}

	distance := ctx.Float64("distance")
	if distance <= 0 {
		return fmt.Errorf("distance must be positive, got %v", distance)
	}

	rects := entries.Sample(world, distance, rand.New(rand.NewSource(ctx.Int64("seed"))))
	fmt.Printf("Generated %s points in %s\n", humanize.Comma(int64(len(rects))), world)

	output := ctx.String("output")
	fmt.Printf("Saving to file: %s\n", output)
	if err := entries.Save(output, rects); err != nil {
		return fmt.Errorf("failed to save entries: %w", err)
	}

	fmt.Printf("Complete\n")
	return nil
}
