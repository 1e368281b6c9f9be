package exchange

import "time"

// Option configures a single operation call.
type Option func(*Options)

// Options holds per-call parameters.
type Options struct {
	// Depth caps the number of order book levels per side.
	Depth int
	// StartTime bounds historical queries, exchange permitting.
	StartTime time.Time
}

// WithDepth caps the order book depth per side.
func WithDepth(depth int) Option {
	return func(o *Options) {
		o.Depth = depth
	}
}

// WithStartTime bounds a historical query to trades at or after t.
func WithStartTime(t time.Time) Option {
	return func(o *Options) {
		o.StartTime = t
	}
}

// ApplyOptions folds the options into a single struct.
func ApplyOptions(opts ...Option) *Options {
	o := &Options{}
	for _, opt := range opts {
		opt(o)
	}
	return o
}
