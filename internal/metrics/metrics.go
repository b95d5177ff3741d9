// Package metrics exposes Prometheus instruments for analysis runs and an
// optional HTTP listener serving them.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Run outcomes used as the "outcome" label.
const (
	OutcomeSuccess = "success"
	OutcomeFailed  = "failed"
	OutcomeBusy    = "busy"
)

var (
	RunsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "starreview_analysis_runs_total",
		Help: "Total number of analysis runs, by outcome",
	}, []string{"outcome"})

	StageDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "starreview_stage_duration_seconds",
		Help:    "Duration of analysis pipeline stages",
		Buckets: []float64{0.5, 1, 5, 10, 30, 60, 120, 300, 600},
	}, []string{"stage"})

	AnnotationsCreatedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "starreview_annotations_created_total",
		Help: "Total number of AI annotations stored, by source",
	}, []string{"source"})

	FramesExtractedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "starreview_frames_extracted_total",
		Help: "Total number of frames decoded across all runs",
	})

	ActiveRuns = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "starreview_active_runs",
		Help: "Number of analysis runs currently executing",
	})
)
