// Package metrics provides the Prometheus collectors for the check-in pipeline.
package metrics

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/saturnino-fabrica-de-software/empathia/internal/domain"
)

// Metrics contains all Prometheus metrics of the matching and emotion pipeline.
// Every Record method is safe to call on a nil *Metrics.
type Metrics struct {
	// Matching
	IdentifyTotal  *prometheus.CounterVec
	MatchScore     prometheus.Histogram
	SkippedRecords prometheus.Counter

	// Emotion sampling
	ClassifyAttempts *prometheus.CounterVec
	SamplingTotal    *prometheus.CounterVec
	AnalysisDuration prometheus.Histogram

	// Gallery state
	GallerySize         prometheus.Gauge
	GalleryIncompatible prometheus.Gauge
	GalleryCache        *prometheus.CounterVec

	registry *prometheus.Registry
}

// NewMetrics creates the collectors and registers them on the registry.
func NewMetrics(registry *prometheus.Registry) (*Metrics, error) {
	m := &Metrics{registry: registry}
	m.initMetrics()
	if err := registry.Register(m); err != nil {
		return nil, fmt.Errorf("failed to register empathia metrics: %w", err)
	}
	return m, nil
}

func (m *Metrics) initMetrics() {
	m.IdentifyTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "empathia_identify_total",
			Help: "Identification requests partitioned by outcome.",
		},
		[]string{"outcome"},
	)
	m.MatchScore = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "empathia_match_best_score",
			Help:    "Best combined similarity score per identification.",
			Buckets: prometheus.LinearBuckets(0.5, 0.05, 11), // 0.50 to 1.00
		},
	)
	m.SkippedRecords = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "empathia_match_skipped_records_total",
			Help: "Gallery entries skipped for a missing or incompatible embedding.",
		},
	)

	m.ClassifyAttempts = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "empathia_classify_attempts_total",
			Help: "Emotion classifier attempts partitioned by phase, backend and result.",
		},
		[]string{"phase", "backend", "result"},
	)
	m.SamplingTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "empathia_sampling_total",
			Help: "Emotion sampling runs partitioned by outcome.",
		},
		[]string{"outcome"},
	)
	m.AnalysisDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "empathia_analysis_duration_seconds",
			Help:    "Wall time of a complete emotion analysis.",
			Buckets: prometheus.ExponentialBuckets(0.25, 2, 8), // 250ms to ~32s
		},
	)

	m.GallerySize = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "empathia_gallery_employees",
			Help: "Enrolled employees in the gallery.",
		},
	)
	m.GalleryIncompatible = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "empathia_gallery_incompatible_records",
			Help: "Enrolled employees whose stored embedding needs re-enrolment.",
		},
	)
	m.GalleryCache = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "empathia_gallery_cache_requests_total",
			Help: "Gallery snapshot lookups partitioned by hit or miss.",
		},
		[]string{"result"},
	)
}

// RecordIdentify records the outcome of one identification.
func (m *Metrics) RecordIdentify(matched bool, bestScore float64, skipped int) {
	if m == nil {
		return
	}
	outcome := "no_match"
	if matched {
		outcome = "matched"
	}
	m.IdentifyTotal.WithLabelValues(outcome).Inc()
	m.MatchScore.Observe(bestScore)
	m.SkippedRecords.Add(float64(skipped))
}

// RecordIdentifyError records an identification that failed before a decision.
func (m *Metrics) RecordIdentifyError() {
	if m == nil {
		return
	}
	m.IdentifyTotal.WithLabelValues("error").Inc()
}

// RecordClassifyAttempt records one classifier call. result is one of
// accepted, rejected or error.
func (m *Metrics) RecordClassifyAttempt(phase, backend, result string) {
	if m == nil {
		return
	}
	m.ClassifyAttempts.WithLabelValues(phase, backend, result).Inc()
}

// RecordSampling records the outcome of a sampling run.
func (m *Metrics) RecordSampling(err error) {
	if m == nil {
		return
	}
	m.SamplingTotal.WithLabelValues(categorizeError(err)).Inc()
}

// RecordAnalysisDuration records the duration of a complete analysis.
func (m *Metrics) RecordAnalysisDuration(seconds float64) {
	if m == nil {
		return
	}
	m.AnalysisDuration.Observe(seconds)
}

// SetGallery publishes the gallery size and how many entries are unusable.
func (m *Metrics) SetGallery(total, incompatible int) {
	if m == nil {
		return
	}
	m.GallerySize.Set(float64(total))
	m.GalleryIncompatible.Set(float64(incompatible))
}

// RecordCacheLookup records a gallery snapshot cache lookup.
func (m *Metrics) RecordCacheLookup(hit bool) {
	if m == nil {
		return
	}
	result := "miss"
	if hit {
		result = "hit"
	}
	m.GalleryCache.WithLabelValues(result).Inc()
}

func categorizeError(err error) string {
	switch {
	case err == nil:
		return "complete"
	case errors.Is(err, domain.ErrInsufficientSamples):
		return "insufficient"
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return "cancelled"
	default:
		return "error"
	}
}

// Describe implements the prometheus.Collector interface.
func (m *Metrics) Describe(ch chan<- *prometheus.Desc) {
	m.IdentifyTotal.Describe(ch)
	m.MatchScore.Describe(ch)
	m.SkippedRecords.Describe(ch)
	m.ClassifyAttempts.Describe(ch)
	m.SamplingTotal.Describe(ch)
	m.AnalysisDuration.Describe(ch)
	m.GallerySize.Describe(ch)
	m.GalleryIncompatible.Describe(ch)
	m.GalleryCache.Describe(ch)
}

// Collect implements the prometheus.Collector interface.
func (m *Metrics) Collect(ch chan<- prometheus.Metric) {
	m.IdentifyTotal.Collect(ch)
	m.MatchScore.Collect(ch)
	m.SkippedRecords.Collect(ch)
	m.ClassifyAttempts.Collect(ch)
	m.SamplingTotal.Collect(ch)
	m.AnalysisDuration.Collect(ch)
	m.GallerySize.Collect(ch)
	m.GalleryIncompatible.Collect(ch)
	m.GalleryCache.Collect(ch)
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{
		ErrorLog:      log.New(os.Stderr, "metrics handler: ", log.LstdFlags),
		ErrorHandling: promhttp.HTTPErrorOnError,
	})
}
