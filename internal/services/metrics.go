package services

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the engine-level Prometheus collectors. Handler-level
// request metrics live in the middleware; these track the scoring paths.
type Metrics struct {
	RecommendationDuration *prometheus.HistogramVec
	RetrievalDuration      *prometheus.HistogramVec
	InteractionsTotal      *prometheus.CounterVec
	ClassifierFallbacks    prometheus.Counter
	SearchesTotal          prometheus.Counter
}

func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		RecommendationDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "recommendation_duration_seconds",
			Help:    "Time spent producing a recommendation response",
			Buckets: prometheus.DefBuckets,
		}, []string{"path"}),
		RetrievalDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "retrieval_duration_seconds",
			Help:    "Time spent in each candidate retriever",
			Buckets: prometheus.DefBuckets,
		}, []string{"source"}),
		InteractionsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "interactions_total",
			Help: "Interaction events processed, by action",
		}, []string{"action"}),
		ClassifierFallbacks: factory.NewCounter(prometheus.CounterOpts{
			Name: "classifier_fallbacks_total",
			Help: "Queries that fell through to the fallback category",
		}),
		SearchesTotal: factory.NewCounter(prometheus.CounterOpts{
			Name: "searches_total",
			Help: "Search requests served",
		}),
	}
}
