package equivalence

import (
	"io"
	"log/slog"
	"time"
)

type options struct {
	logger   *slog.Logger
	timeout  time.Duration
	maxPairs int
}

// Option configures an equivalence query.
type Option func(*options)

// WithLogger sets the logger for search progress. Queries log nothing by
// default.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithTimeout bounds the query's wall-clock time. Zero means no bound
// beyond the caller's context.
func WithTimeout(d time.Duration) Option {
	return func(o *options) { o.timeout = d }
}

// WithMaxPairs bounds the number of configuration pairs explored. Running
// out is reported as a timeout. Zero means unbounded.
func WithMaxPairs(n int) Option {
	return func(o *options) { o.maxPairs = n }
}

func buildOptions(opts []Option) options {
	o := options{logger: slog.New(slog.NewTextHandler(io.Discard, nil))}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}
