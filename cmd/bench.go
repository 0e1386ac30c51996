package main

import (
	"fmt"
	"log/slog"
	"math/rand"
	"net/http"
	"os"
	"runtime"
	"runtime/pprof"
	"strconv"
	"strings"
	"time"

	"github.com/cheggaaa/pb/v3"
	"github.com/cheggaaa/pb/v3/termutil"
	"github.com/dustin/go-humanize"
	"github.com/royalcat/rquadtree/entries"
	"github.com/royalcat/rquadtree/geom"
	"github.com/royalcat/rquadtree/internal/stats"
	"github.com/royalcat/rquadtree/layer"
	"github.com/urfave/cli/v3"
)

const progressTemplate = `{{with string . "prefix"}}{{.}} {{end}}{{counters . }} {{bar . }} {{percent . }} {{speed . }} {{rtime . "ETA %s"}}{{with string . "suffix"}} {{.}}{{end}}` + "\n"

// insertBatch bounds how long the layer write lock is held between progress updates.
const insertBatch = 4096

func bench(ctx *cli.Context) error {
	log := slog.Default()

	threads := ctx.Int("threads")
	if threads == 0 {
		threads = runtime.GOMAXPROCS(0)
	}
	log = log.With("threads", threads)

	world, err := parseWorld(ctx.String("world"))
	if err != nil {
		return err
	}
	queryW, queryH, err := parseSize(ctx.String("query-size"))
	if err != nil {
		return err
	}

	if pprofListen := ctx.String("pprof.listen"); pprofListen != "" {
		go func() {
			log.Info("Starting pprof server")
			err := http.ListenAndServe(pprofListen, nil)
			if err != nil {
				log.Error("Error starting pprof server", "error", err)
			}
		}()
	}

	if ctx.Bool("pprof.profile") {
		f, err := os.OpenFile("profile.cpu.pprof", os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
		if err != nil {
			return fmt.Errorf("error creating pprof file: %w", err)
		}
		err = pprof.StartCPUProfile(f)
		if err != nil {
			return fmt.Errorf("error starting pprof: %w", err)
		}
		defer pprof.StopCPUProfile()
	}

	rnd := rand.New(rand.NewSource(ctx.Int64("seed")))

	var rects geom.Rects
	if input := ctx.String("input"); input != "" {
		rects, err = entries.Load(input)
		if err != nil {
			return err
		}
	} else {
		rects = entries.Sample(world, ctx.Float64("distance"), rnd)
	}
	fmt.Printf("Entries: %s\n", humanize.Comma(int64(len(rects))))

	registry := layer.NewRegistry(layer.WithLogger(log), layer.WithWorkers(threads))
	l, err := registry.Create("bench", world, layer.Config{
		Capacity: ctx.Int("capacity"),
		MaxDepth: ctx.Int("max-depth"),
	})
	if err != nil {
		return err
	}

	var collector *stats.Collector
	if ctx.String("stats") != "" {
		collector, err = stats.NewCollector(100*time.Millisecond, l.Stats)
		if err != nil {
			return err
		}
		collector.Start()
	}

	bar := pb.Start64(int64(len(rects)))
	bar.Set("prefix", "1/2 inserting")
	bar.SetRefreshRate(time.Second)
	if w, err := termutil.TerminalWidth(); w == 0 || err != nil {
		bar.SetTemplateString(progressTemplate)
	}

	rejected := 0
	endInsert := collector.Begin("insert")
	start := time.Now()
	for i := 0; i < len(rects); i += insertBatch {
		batch := rects[i:min(i+insertBatch, len(rects))]
		for _, ok := range l.Insert(batch...) {
			if !ok {
				rejected++
			}
		}
		bar.Add(len(batch))
	}
	insertElapsed := time.Since(start)
	endInsert(len(rects))
	bar.Finish()

	queries := make([]geom.Rect, ctx.Int("queries"))
	for i := range queries {
		queries[i] = geom.Rect{
			X: world.X + rnd.Intn(world.W+1) - queryW/2,
			Y: world.Y + rnd.Intn(world.H+1) - queryH/2,
			W: queryW,
			H: queryH,
		}
	}

	fmt.Printf("2/2 querying %s regions of %dx%d\n", humanize.Comma(int64(len(queries))), queryW, queryH)
	endQuery := collector.Begin("query")
	start = time.Now()
	results, err := l.QueryMany(ctx.Context, queries)
	if err != nil {
		return err
	}
	queryElapsed := time.Since(start)
	endQuery(len(queries))

	matched := 0
	for _, r := range results {
		matched += len(r.Entries)
	}

	s := l.Stats()
	fmt.Printf("Inserted %s entries (%s rejected) in %s, %s ops/s\n",
		humanize.Comma(int64(len(rects)-rejected)), humanize.Comma(int64(rejected)),
		insertElapsed.Round(time.Millisecond), humanize.CommafWithDigits(opsPerSecond(len(rects), insertElapsed), 0))
	fmt.Printf("Ran %s queries matching %s entries in %s, %s ops/s\n",
		humanize.Comma(int64(len(queries))), humanize.Comma(int64(matched)),
		queryElapsed.Round(time.Millisecond), humanize.CommafWithDigits(opsPerSecond(len(queries), queryElapsed), 0))
	fmt.Printf("Tree: %s nodes, %s leaves, depth %d\n",
		humanize.Comma(int64(s.Nodes)), humanize.Comma(int64(s.Leaves)), s.Depth)

	if ctx.Bool("pprof.heap") {
		if err := writeHeapProfile("profile"); err != nil {
			return fmt.Errorf("error writing heap profile: %w", err)
		}
	}

	if collector != nil {
		report := collector.Stop()
		if err := report.Save(ctx.String("stats")); err != nil {
			return err
		}
		fmt.Printf("Runtime stats saved to %s\n", ctx.String("stats"))
	}

	return nil
}

func parseSize(s string) (int, int, error) {
	ws, hs, ok := strings.Cut(s, ",")
	if !ok {
		return 0, 0, fmt.Errorf("invalid size %q: expected w,h", s)
	}
	w, err := strconv.Atoi(strings.TrimSpace(ws))
	if err != nil {
		return 0, 0, fmt.Errorf("invalid size %q: %w", s, err)
	}
	h, err := strconv.Atoi(strings.TrimSpace(hs))
	if err != nil {
		return 0, 0, fmt.Errorf("invalid size %q: %w", s, err)
	}
	if w < 0 || h < 0 {
		return 0, 0, fmt.Errorf("invalid size %q: negative", s)
	}
	return w, h, nil
}

func opsPerSecond(ops int, elapsed time.Duration) float64 {
	if elapsed <= 0 {
		return 0
	}
	return float64(ops) / elapsed.Seconds()
}
