package eval

import (
	"io"
	"log/slog"
	"runtime"
)

type options struct {
	threads int
	logger  *slog.Logger
}

// Option configures an Eval.
type Option func(*options)

// WithThreads sets the number of worker goroutines used per call. Values
// below one select runtime.NumCPU().
func WithThreads(n int) Option {
	return func(o *options) {
		if n < 1 {
			n = runtime.NumCPU()
		}
		o.threads = n
	}
}

// WithLogger sets the logger Prepare reports layout statistics to.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) { o.logger = l }
}

func gatherOptions(opts []Option) options {
	o := options{
		threads: runtime.NumCPU(),
		logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger == nil {
		o.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return o
}
