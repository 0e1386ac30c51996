package main

import (
	"fmt"
	"log"
	"os"
	"runtime/pprof"

	"github.com/royalcat/rquadtree/geom"
	"github.com/royalcat/rquadtree/quadtree"

	_ "net/http/pprof"

	_ "github.com/KimMachineGun/automemlimit"
	"github.com/urfave/cli/v3"
	_ "go.uber.org/automaxprocs"
)

const defaultWorld = "0,0,800,450"

func worldFlag() cli.Flag {
	return &cli.StringFlag{
		Name:    "world",
		Aliases: []string{"w"},
		Usage:   "index boundary as x,y,w,h",
		Value:   defaultWorld,
		EnvVars: []string{"RQUADTREE_WORLD"},
	}
}

func capacityFlag() cli.Flag {
	return &cli.IntFlag{
		Name:    "capacity",
		Aliases: []string{"c"},
		Usage:   "entries a leaf holds before it splits",
		Value:   4,
		EnvVars: []string{"RQUADTREE_CAPACITY"},
	}
}

func maxDepthFlag() cli.Flag {
	return &cli.IntFlag{
		Name:    "max-depth",
		Usage:   "deepest level a node may split to",
		Value:   quadtree.DefaultMaxDepth,
		EnvVars: []string{"RQUADTREE_MAX_DEPTH"},
	}
}

func main() {
	if err := newApp().Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:        "rquadtree",
		Description: "Region quadtree index with an HTTP layer API",
		Commands: []*cli.Command{
			{
				Name:  "serve",
				Usage: "serve the quadtree layer api",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "listen",
						Value:   ":8080",
						EnvVars: []string{"RQUADTREE_LISTEN"},
					},
					&cli.StringFlag{
						Name:    "world",
						Aliases: []string{"w"},
						Usage:   "create a default layer covering x,y,w,h",
						EnvVars: []string{"RQUADTREE_WORLD"},
					},
					capacityFlag(),
					maxDepthFlag(),
					&cli.StringFlag{
						Name:    "layer",
						Value:   "default",
						Usage:   "name of the default layer",
						EnvVars: []string{"RQUADTREE_LAYER"},
					},
					&cli.StringFlag{
						Name:      "input",
						Aliases:   []string{"i"},
						Usage:     "entries file loaded into the default layer",
						TakesFile: true,
					},
					&cli.StringFlag{
						Name:    "otel.endpoint",
						Usage:   "OTLP http collector, otel env configuration is used when empty",
						EnvVars: []string{"RQUADTREE_OTEL_ENDPOINT"},
					},
					&cli.BoolFlag{
						Name:    "otel.insecure",
						EnvVars: []string{"RQUADTREE_OTEL_INSECURE"},
					},
					&cli.StringFlag{
						Name:    "log.level",
						Usage:   "debug, info, warn or error",
						Value:   "info",
						EnvVars: []string{"RQUADTREE_LOG_LEVEL"},
					},
				},
				Action: serve,
			},
			{
				Name:    "generate",
				Aliases: []string{"g"},
				Usage:   "generates a poisson disc sampled entries file",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:      "output",
						Aliases:   []string{"o"},
						Required:  true,
						TakesFile: true,
					},
					worldFlag(),
					&cli.Float64Flag{
						Name:    "distance",
						Aliases: []string{"d"},
						Usage:   "minimal distance between points",
						Value:   10,
					},
					&cli.Int64Flag{
						Name:  "seed",
						Value: 1,
					},
				},
				Action: generate,
			},
			{
				Name:    "bench",
				Aliases: []string{"b"},
				Usage:   "measures insert and query throughput",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:      "input",
						Aliases:   []string{"i"},
						Usage:     "entries file, points are sampled when empty",
						TakesFile: true,
					},
					worldFlag(),
					capacityFlag(),
					maxDepthFlag(),
					&cli.Float64Flag{
						Name:  "distance",
						Usage: "minimal distance between sampled points",
						Value: 2,
					},
					&cli.IntFlag{
						Name:    "queries",
						Aliases: []string{"q"},
						Value:   10_000,
					},
					&cli.StringFlag{
						Name:  "query-size",
						Usage: "query window as w,h",
						Value: "50,50",
					},
					&cli.IntFlag{
						Name:        "threads",
						Aliases:     []string{"t"},
						DefaultText: "max",
					},
					&cli.Int64Flag{
						Name:  "seed",
						Value: 1,
					},
					&cli.StringFlag{
						Name:      "stats",
						Usage:     "write a runtime stats report to this file",
						TakesFile: true,
					},
					&cli.StringFlag{
						Name:        "pprof.listen",
						DefaultText: "",
					},
					&cli.BoolFlag{
						Name:        "pprof.profile",
						DefaultText: "",
					},
					&cli.BoolFlag{
						Name:        "pprof.heap",
						DefaultText: "",
					},
				},
				Action: bench,
			},
			{
				Name:    "render",
				Aliases: []string{"r"},
				Usage:   "renders entries, node boundaries and a selection to png",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:      "input",
						Aliases:   []string{"i"},
						Required:  true,
						TakesFile: true,
					},
					&cli.StringFlag{
						Name:      "output",
						Aliases:   []string{"o"},
						Value:     "quadtree.png",
						TakesFile: true,
					},
					worldFlag(),
					capacityFlag(),
					maxDepthFlag(),
					&cli.StringFlag{
						Name:  "selection",
						Usage: "highlighted query region as x,y,w,h",
					},
					&cli.IntFlag{
						Name:  "scale",
						Value: 1,
					},
				},
				Action: renderImage,
			},
		},
	}
}

func parseWorld(s string) (geom.Rect, error) {
	world, err := geom.ParseRect(s)
	if err != nil {
		return geom.Rect{}, fmt.Errorf("invalid world: %w", err)
	}
	if !world.Valid() || world.Empty() {
		return geom.Rect{}, fmt.Errorf("invalid world %s: must have a positive size", world)
	}
	return world, nil
}

func writeHeapProfile(name string) error {
	f, err := os.Create(name + ".heap.prof")
	if err != nil {
		return err
	}
	defer f.Close()
	return pprof.WriteHeapProfile(f)
}
