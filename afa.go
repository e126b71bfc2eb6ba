// Package afa compiles regular expressions with lookaheads and atomic
// groups into symbolic alternating automata, matches words against them
// and decides language equivalence and emptiness.
package afa

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/jacoelho/afa/internal/automaton"
	"github.com/jacoelho/afa/internal/charset"
	"github.com/jacoelho/afa/internal/equivalence"
	"github.com/jacoelho/afa/internal/regex"
)

// Semantics selects which matches of a pattern make a word accepted.
type Semantics = regex.Semantics

const (
	// FirstMatch accepts w when the first match a backtracking engine
	// finds at offset 0 spans all of w.
	FirstMatch = regex.FirstMatch
	// AnyMatch accepts w when some match spans all of w.
	AnyMatch = regex.AnyMatch
)

// Stats describes a compiled pattern.
type Stats = regex.Stats

// ParseSemantics parses "first-match" or "any-match".
func ParseSemantics(name string) (Semantics, error) {
	return regex.ParseSemantics(name)
}

var tracer = otel.Tracer("afa")

var (
	compileTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "afa_compile_total",
		Help: "Total pattern compilations by result",
	}, []string{"result"})

	compileDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "afa_compile_duration_seconds",
		Help:    "Pattern compilation duration in seconds",
		Buckets: prometheus.ExponentialBuckets(0.0001, 2, 16),
	})
)

// Regex is a compiled pattern. It is immutable and safe for concurrent use.
type Regex struct {
	automaton *automaton.Automaton[charset.Set]
	pattern   string
	stats     Stats
	semantics Semantics
}

// Verdict is the answer to an equivalence or emptiness query. Witness is
// meaningful only when HasWitness is set: for Equivalent it is a word
// exactly one side accepts, for IsEmpty an accepted word.
type Verdict struct {
	Witness    string
	Equivalent bool
	HasWitness bool
}

// Compile parses pattern and builds its automaton.
func Compile(ctx context.Context, pattern string, opts ...Option) (*Regex, error) {
	cfg := applyOptions(opts)
	if cfg.err != nil {
		return nil, cfg.err
	}
	if cfg.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cfg.timeout)
		defer cancel()
	}
	ctx, span := tracer.Start(ctx, "afa.Compile",
		trace.WithAttributes(
			attribute.String("pattern", pattern),
			attribute.String("semantics", cfg.semantics.String()),
		),
	)
	defer span.End()

	start := time.Now()
	a, stats, err := regex.Compile(ctx, pattern, cfg.semantics)
	compileDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		compileTotal.WithLabelValues("error").Inc()
		span.RecordError(err)
		span.SetStatus(codes.Error, "compile failed")
		cfg.logger.Debug("compile failed", "pattern", pattern, "error", err)
		return nil, err
	}
	compileTotal.WithLabelValues("ok").Inc()
	span.SetAttributes(attribute.Int("states", stats.States))
	span.SetStatus(codes.Ok, "")
	cfg.logger.Debug("compiled pattern",
		"pattern", pattern,
		"semantics", cfg.semantics.String(),
		"states", stats.States,
		"lookaheads", stats.Lookaheads,
		"priority_guards", stats.PriorityGuards,
		"duration", time.Since(start),
	)
	return &Regex{automaton: a, pattern: pattern, stats: stats, semantics: cfg.semantics}, nil
}

// MustCompile is like Compile but panics on error.
func MustCompile(pattern string, opts ...Option) *Regex {
	r, err := Compile(context.Background(), pattern, opts...)
	if err != nil {
		panic("afa: Compile(" + pattern + "): " + err.Error())
	}
	return r
}

// Match reports whether s is accepted.
func (r *Regex) Match(s string) bool {
	if r == nil {
		return false
	}
	return automaton.Accepts(r.automaton, charset.Algebra{}, []rune(s))
}

// Pattern returns the source pattern.
func (r *Regex) Pattern() string { return r.pattern }

// Semantics returns the semantics r was compiled with.
func (r *Regex) Semantics() Semantics { return r.semantics }

// Stats returns compilation statistics.
func (r *Regex) Stats() Stats { return r.stats }

// String returns the source pattern.
func (r *Regex) String() string { return r.pattern }

// Equivalent decides whether a and b accept the same words.
func Equivalent(ctx context.Context, a, b *Regex, opts ...Option) (Verdict, error) {
	cfg := applyOptions(opts)
	if cfg.err != nil {
		return Verdict{}, cfg.err
	}
	res, err := equivalence.IsEquivalent(ctx, charset.Algebra{}, a.automaton, b.automaton, cfg.equivalenceOptions()...)
	if err != nil {
		return Verdict{}, err
	}
	return verdict(res), nil
}

// IsEmpty decides whether r accepts no word at all.
func IsEmpty(ctx context.Context, r *Regex, opts ...Option) (Verdict, error) {
	cfg := applyOptions(opts)
	if cfg.err != nil {
		return Verdict{}, cfg.err
	}
	res, err := equivalence.IsEmpty(ctx, charset.Algebra{}, r.automaton, cfg.equivalenceOptions()...)
	if err != nil {
		return Verdict{}, err
	}
	return verdict(res), nil
}

func verdict(res equivalence.Result[rune]) Verdict {
	return Verdict{
		Equivalent: res.Equivalent,
		Witness:    string(res.Witness),
		HasWitness: !res.Equivalent,
	}
}
