package afa

import (
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/jacoelho/afa/internal/equivalence"
)

// Option configures compilation and queries.
type Option interface{ apply(*options) }

type options struct {
	logger    *slog.Logger
	timeout   time.Duration
	maxPairs  int
	semantics Semantics
	err       error
}

type optionFunc func(*options)

func (f optionFunc) apply(cfg *options) {
	if cfg == nil {
		return
	}
	f(cfg)
}

// WithSemantics selects how matches decide acceptance. The default is
// FirstMatch.
func WithSemantics(s Semantics) Option {
	return optionFunc(func(cfg *options) {
		cfg.semantics = s
	})
}

// WithTimeout bounds each compilation or query (0 means no bound beyond the
// caller's context).
func WithTimeout(d time.Duration) Option {
	return optionFunc(func(cfg *options) {
		cfg.timeout = d
	})
}

// WithMaxPairs bounds the configuration pairs an equivalence query may
// explore (0 means unbounded).
func WithMaxPairs(n int) Option {
	return optionFunc(func(cfg *options) {
		cfg.maxPairs = n
	})
}

// WithLogger sets the logger for debug output. Nothing is logged by default.
func WithLogger(l *slog.Logger) Option {
	return optionFunc(func(cfg *options) {
		if l != nil {
			cfg.logger = l
		}
	})
}

// WithConfig applies every setting of c. An invalid c makes the call it is
// passed to fail with the validation error.
func WithConfig(c Config) Option {
	return optionFunc(func(cfg *options) {
		if err := c.Validate(); err != nil {
			cfg.err = fmt.Errorf("config: %w", err)
			return
		}
		s, _ := ParseSemantics(c.Semantics)
		cfg.semantics = s
		cfg.timeout = c.Timeout
		cfg.maxPairs = c.MaxPairs
	})
}

func applyOptions(opts []Option) options {
	cfg := options{logger: slog.New(slog.NewTextHandler(io.Discard, nil))}
	for _, opt := range opts {
		if opt != nil {
			opt.apply(&cfg)
		}
	}
	return cfg
}

func (o options) equivalenceOptions() []equivalence.Option {
	return []equivalence.Option{
		equivalence.WithLogger(o.logger),
		equivalence.WithTimeout(o.timeout),
		equivalence.WithMaxPairs(o.maxPairs),
	}
}
