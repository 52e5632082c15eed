// Package metrics declares the Prometheus collectors shared by the catalog
// resolver, the analysis pipeline and the capability gate.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Outcome label values.
const (
	OutcomeOK      = "ok"
	OutcomeError   = "error"
	OutcomeSkipped = "skipped"
)

var (
	CatalogFetches = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vectora_catalog_fetches_total",
			Help: "Model catalog fetches by provider and outcome",
		},
		[]string{"provider", "outcome"},
	)

	CatalogModels = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "vectora_catalog_models",
			Help: "Number of models in the last fetched catalog per provider",
		},
		[]string{"provider"},
	)

	AnalysisAttempts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vectora_analysis_attempts_total",
			Help: "Analysis endpoint attempts by endpoint and outcome",
		},
		[]string{"endpoint", "outcome"},
	)

	AnalysisLatency = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "vectora_analysis_attempt_duration_seconds",
			Help:    "Analysis endpoint attempt duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"endpoint"},
	)

	AnalysisFallbacks = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "vectora_analysis_unreachable_total",
			Help: "Analysis requests for which every endpoint failed",
		},
	)

	GateBlocks = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vectora_gate_blocks_total",
			Help: "Actions refused because the selected model lacks a capability",
		},
		[]string{"capability"},
	)
)
