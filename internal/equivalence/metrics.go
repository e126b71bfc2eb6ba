package equivalence

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.opentelemetry.io/otel"
)

var tracer = otel.Tracer("afa.equivalence")

var (
	queriesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "afa_equivalence_queries_total",
		Help: "Total equivalence queries by result",
	}, []string{"result"})

	queryDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "afa_equivalence_duration_seconds",
		Help:    "Equivalence query duration in seconds",
		Buckets: prometheus.ExponentialBuckets(0.0001, 2, 16),
	}, []string{"method"})

	pairsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "afa_equivalence_pairs_total",
		Help: "Total configuration pairs explored by equivalence queries",
	})
)

const (
	resultEquivalent   = "equivalent"
	resultInequivalent = "inequivalent"
	resultError        = "error"
)
