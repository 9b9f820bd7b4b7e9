// Package metrics holds the Prometheus collectors exported on /metrics.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	DecksGenerated = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "pitchdeck_decks_generated_total",
		Help: "Deck generation attempts by outcome",
	}, []string{"status"})

	StageDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "pitchdeck_stage_duration_seconds",
		Help:    "Duration of each deck pipeline stage",
		Buckets: []float64{0.01, 0.1, 0.5, 1, 2, 5, 10, 20, 30, 60, 120, 300},
	}, []string{"stage"})

	LLMRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "pitchdeck_llm_request_duration_seconds",
		Help:    "Duration of language model requests",
		Buckets: prometheus.DefBuckets,
	}, []string{"model"})

	CacheRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "pitchdeck_cache_requests_total",
		Help: "Cache lookups by result",
	}, []string{"result"})

	WebsiteSelected = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "pitchdeck_website_selected_total",
		Help: "Whether a business website was found in the scraped profile",
	}, []string{"found"})

	HTTPRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "pitchdeck_http_requests_total",
		Help: "HTTP requests served by route and status code",
	}, []string{"route", "code"})
)

// ObserveStage records how long a pipeline stage took, measured from start.
func ObserveStage(stage string, start time.Time) {
	StageDuration.WithLabelValues(stage).Observe(time.Since(start).Seconds())
}

// Found maps a boolean to the "found" label value.
func Found(ok bool) string {
	if ok {
		return "yes"
	}
	return "no"
}
