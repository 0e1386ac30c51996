package layer

import (
	"log/slog"
	"runtime"
)

// Config holds per layer index parameters.
type Config struct {
	Capacity int
	MaxDepth int
}

func ConfigDefault() Config {
	return Config{
		Capacity: 4,
		MaxDepth: 64,
	}
}

type options struct {
	logger  *slog.Logger
	workers int
}

func loadOptions(opts ...Option) options {
	options := options{
		logger:  slog.Default(),
		workers: runtime.GOMAXPROCS(0),
	}
	for _, o := range opts {
		o.apply(&options)
	}
	return options
}

type Option interface {
	apply(*options)
}

type logger struct {
	l *slog.Logger
}

func (l logger) apply(o *options) {
	if l.l != nil {
		o.logger = l.l
	}
}

// Default: slog.Default()
func WithLogger(l *slog.Logger) Option {
	return logger{l: l}
}

type workers int

func (w workers) apply(o *options) {
	if w > 0 {
		o.workers = int(w)
	}
}

// WithWorkers bounds the goroutines used by a single QueryMany call.
// Default: GOMAXPROCS
func WithWorkers(n int) Option {
	return workers(n)
}
