// Package stats samples process resources and the shape of a quadtree while a
// benchmark runs, and writes the result as a plain text report.
package stats

import (
	"fmt"
	"io"
	"os"
	"runtime"
	"strings"
	"sync"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/royalcat/rquadtree/quadtree"
	"github.com/shirou/gopsutil/v4/process"
)

// TreeFunc reports the current shape of the index under test.
// It is called from the sampling goroutine and must be safe for concurrent use.
type TreeFunc func() quadtree.Stats

// Sample is one tick of the collector.
type Sample struct {
	Elapsed    time.Duration  `json:"elapsed_ns"`
	HeapAlloc  uint64         `json:"heap_alloc"`
	RSS        uint64         `json:"rss"`
	CPUPercent float64        `json:"cpu_percent"`
	NumGC      uint32         `json:"num_gc"`
	Goroutines int            `json:"goroutines"`
	Tree       quadtree.Stats `json:"tree"`
}

// Phase is a timed stage of a run, such as bulk insertion or querying.
type Phase struct {
	Name    string        `json:"name"`
	Ops     int           `json:"ops"`
	Elapsed time.Duration `json:"elapsed_ns"`
	// HeapGrowth is the heap delta over the phase, negative when a GC shrank it.
	HeapGrowth int64          `json:"heap_growth"`
	Before     quadtree.Stats `json:"before"`
	After      quadtree.Stats `json:"after"`
}

func (p Phase) OpsPerSecond() float64 {
	if p.Elapsed <= 0 {
		return 0
	}
	return float64(p.Ops) / p.Elapsed.Seconds()
}

// Report is everything a Collector gathered between Start and Stop.
type Report struct {
	Start    time.Time     `json:"start"`
	End      time.Time     `json:"end"`
	Interval time.Duration `json:"interval_ns"`
	Samples  []Sample      `json:"samples"`
	Phases   []Phase       `json:"phases"`
	// Peak holds the per field maximum over Samples.
	Peak Sample `json:"peak"`
}

type Collector struct {
	interval time.Duration
	proc     *process.Process
	tree     TreeFunc

	mu     sync.Mutex
	report Report

	stop chan struct{}
	done chan struct{}
}

// NewCollector samples every interval. tree may be nil when no index is
// being measured.
func NewCollector(interval time.Duration, tree TreeFunc) (*Collector, error) {
	proc, err := process.NewProcess(int32(os.Getpid()))
	if err != nil {
		return nil, fmt.Errorf("failed to get process info: %w", err)
	}
	if tree == nil {
		tree = func() quadtree.Stats { return quadtree.Stats{} }
	}

	return &Collector{
		interval: interval,
		proc:     proc,
		tree:     tree,
		report:   Report{Interval: interval},
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
	}, nil
}

func (c *Collector) Start() {
	c.report.Start = time.Now()
	go c.loop()
}

func (c *Collector) loop() {
	defer close(c.done)

	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	c.record()
	for {
		select {
		case <-c.stop:
			c.record()
			return
		case <-ticker.C:
			c.record()
		}
	}
}

func (c *Collector) sample() Sample {
	var mem runtime.MemStats
	runtime.ReadMemStats(&mem)

	s := Sample{
		Elapsed:    time.Since(c.report.Start),
		HeapAlloc:  mem.HeapAlloc,
		NumGC:      mem.NumGC,
		Goroutines: runtime.NumGoroutine(),
		Tree:       c.tree(),
	}
	if info, err := c.proc.MemoryInfo(); err == nil && info != nil {
		s.RSS = info.RSS
	}
	if pct, err := c.proc.CPUPercent(); err == nil {
		s.CPUPercent = pct
	}
	return s
}

func (c *Collector) record() {
	s := c.sample()

	c.mu.Lock()
	c.report.Samples = append(c.report.Samples, s)
	c.mu.Unlock()
}

// Begin starts a phase and returns the function that ends it with the number
// of operations performed. Calling Begin on a nil Collector is a no-op, so
// callers need not check whether collection is enabled.
func (c *Collector) Begin(name string) func(ops int) {
	if c == nil {
		return func(int) {}
	}

	var mem runtime.MemStats
	runtime.ReadMemStats(&mem)
	before := c.tree()
	heap := mem.HeapAlloc
	start := time.Now()

	return func(ops int) {
		elapsed := time.Since(start)
		runtime.ReadMemStats(&mem)

		p := Phase{
			Name:       name,
			Ops:        ops,
			Elapsed:    elapsed,
			HeapGrowth: int64(mem.HeapAlloc) - int64(heap),
			Before:     before,
			After:      c.tree(),
		}

		c.mu.Lock()
		c.report.Phases = append(c.report.Phases, p)
		c.mu.Unlock()
	}
}

// Stop ends sampling and returns the report.
func (c *Collector) Stop() Report {
	close(c.stop)
	<-c.done

	c.mu.Lock()
	defer c.mu.Unlock()

	c.report.End = time.Now()
	c.report.Peak = peak(c.report.Samples)
	return c.report
}

func peak(samples []Sample) Sample {
	var p Sample
	for _, s := range samples {
		p.Elapsed = max(p.Elapsed, s.Elapsed)
		p.HeapAlloc = max(p.HeapAlloc, s.HeapAlloc)
		p.RSS = max(p.RSS, s.RSS)
		p.CPUPercent = max(p.CPUPercent, s.CPUPercent)
		p.NumGC = max(p.NumGC, s.NumGC)
		p.Goroutines = max(p.Goroutines, s.Goroutines)
		p.Tree.Nodes = max(p.Tree.Nodes, s.Tree.Nodes)
		p.Tree.Leaves = max(p.Tree.Leaves, s.Tree.Leaves)
		p.Tree.Depth = max(p.Tree.Depth, s.Tree.Depth)
		p.Tree.Entries = max(p.Tree.Entries, s.Tree.Entries)
	}
	return p
}

// maxRows bounds the sample table, longer runs are thinned evenly.
const maxRows = 100

func (r Report) rows() []Sample {
	if len(r.Samples) <= maxRows {
		return r.Samples
	}
	rows := make([]Sample, 0, maxRows)
	for i := range maxRows {
		rows = append(rows, r.Samples[i*(len(r.Samples)-1)/(maxRows-1)])
	}
	return rows
}

const rule = "--------------------------------------------------------------------------------\n"

// WriteText writes the report as aligned plain text.
func (r Report) WriteText(w io.Writer) error {
	var sb strings.Builder

	fmt.Fprintf(&sb, "QUADTREE BENCHMARK REPORT\n%s", rule)
	fmt.Fprintf(&sb, "  Start:     %s\n", r.Start.Format(time.RFC3339))
	fmt.Fprintf(&sb, "  Duration:  %s\n", r.End.Sub(r.Start).Round(time.Millisecond))
	fmt.Fprintf(&sb, "  Samples:   %d every %s\n\n", len(r.Samples), r.Interval)

	fmt.Fprintf(&sb, "PEAKS\n%s", rule)
	fmt.Fprintf(&sb, "  Heap:        %s\n", humanize.IBytes(r.Peak.HeapAlloc))
	fmt.Fprintf(&sb, "  RSS:         %s\n", humanize.IBytes(r.Peak.RSS))
	fmt.Fprintf(&sb, "  CPU:         %.1f%%\n", r.Peak.CPUPercent)
	fmt.Fprintf(&sb, "  Goroutines:  %d\n", r.Peak.Goroutines)
	fmt.Fprintf(&sb, "  GC cycles:   %d\n", r.Peak.NumGC)
	fmt.Fprintf(&sb, "  Nodes:       %s (%s leaves)\n", humanize.Comma(int64(r.Peak.Tree.Nodes)), humanize.Comma(int64(r.Peak.Tree.Leaves)))
	fmt.Fprintf(&sb, "  Depth:       %d\n", r.Peak.Tree.Depth)
	fmt.Fprintf(&sb, "  Entries:     %s\n", humanize.Comma(int64(r.Peak.Tree.Entries)))
	if r.Peak.Tree.Entries > 0 {
		fmt.Fprintf(&sb, "  Heap/entry:  %s\n", humanize.IBytes(r.Peak.HeapAlloc/uint64(r.Peak.Tree.Entries)))
	}
	sb.WriteString("\n")

	if len(r.Phases) > 0 {
		fmt.Fprintf(&sb, "PHASES\n%s", rule)
		fmt.Fprintf(&sb, "  %-10s %12s %12s %14s %12s %10s %6s\n", "phase", "ops", "elapsed", "ops/s", "heap", "nodes", "depth")
		for _, p := range r.Phases {
			fmt.Fprintf(&sb, "  %-10s %12s %12s %14s %12s %10s %6s\n",
				p.Name,
				humanize.Comma(int64(p.Ops)),
				p.Elapsed.Round(time.Microsecond),
				humanize.CommafWithDigits(p.OpsPerSecond(), 0),
				signedBytes(p.HeapGrowth),
				fmt.Sprintf("%+d", p.After.Nodes-p.Before.Nodes),
				fmt.Sprintf("%d", p.After.Depth),
			)
		}
		sb.WriteString("\n")
	}

	fmt.Fprintf(&sb, "SAMPLES\n%s", rule)
	if rows := r.rows(); len(rows) < len(r.Samples) {
		fmt.Fprintf(&sb, "  (%d of %d samples)\n", len(rows), len(r.Samples))
	}
	fmt.Fprintf(&sb, "  %-10s %12s %12s %8s %12s %12s %6s\n", "elapsed", "heap", "rss", "cpu%", "entries", "nodes", "depth")
	for _, s := range r.rows() {
		fmt.Fprintf(&sb, "  %-10s %12s %12s %8.1f %12s %12s %6d\n",
			s.Elapsed.Round(time.Millisecond),
			humanize.IBytes(s.HeapAlloc),
			humanize.IBytes(s.RSS),
			s.CPUPercent,
			humanize.Comma(int64(s.Tree.Entries)),
			humanize.Comma(int64(s.Tree.Nodes)),
			s.Tree.Depth,
		)
	}

	_, err := io.WriteString(w, sb.String())
	return err
}

// Save writes the text report to name.
func (r Report) Save(name string) error {
	f, err := os.Create(name)
	if err != nil {
		return fmt.Errorf("failed to create stats file: %w", err)
	}
	defer f.Close()

	if err := r.WriteText(f); err != nil {
		return fmt.Errorf("failed to write stats file: %w", err)
	}
	return f.Close()
}

func signedBytes(n int64) string {
	if n < 0 {
		return "-" + humanize.IBytes(uint64(-n))
	}
	return "+" + humanize.IBytes(uint64(n))
}
