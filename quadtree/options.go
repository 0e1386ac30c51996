package quadtree

import "log/slog"

// DefaultMaxDepth bounds subdivision. Halving an int extent reaches zero well
// before this, so only clustered entries on a single coordinate can hit it.
const DefaultMaxDepth = 64

type options struct {
	maxDepth int
	logger   *slog.Logger
}

func loadOptions(opts ...Option) options {
	options := options{
		maxDepth: DefaultMaxDepth,
		logger:   slog.Default(),
	}
	for _, o := range opts {
		o.apply(&options)
	}
	return options
}

type Option interface {
	apply(*options)
}

type maxDepth int

func (d maxDepth) apply(o *options) {
	if d < 0 {
		d = 0
	}
	o.maxDepth = int(d)
}

// WithMaxDepth sets the deepest level a node may subdivide to.
// A full leaf at this depth rejects further entries instead of splitting.
// Default: 64
func WithMaxDepth(depth int) Option {
	return maxDepth(depth)
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
