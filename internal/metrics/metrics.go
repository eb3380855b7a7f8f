// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package metrics records search and adapter outcomes in Prometheus.
// Operators use it to tell "no jobs exist" apart from "every source
// failed", which the API deliberately presents the same way.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Search outcomes.
const (
	OutcomeResults          = "results"
	OutcomeNoResults        = "no_results"
	OutcomeAllSourcesFailed = "all_sources_failed"
	OutcomeBlankQuery       = "blank_query"
	OutcomeInvalid          = "invalid"
)

// Snapshot lookup results.
const (
	SnapshotHit   = "hit"
	SnapshotMiss  = "miss"
	SnapshotError = "error"
)

// Recorder holds the collectors. A nil *Recorder is valid and records nothing.
type Recorder struct {
	adapterResults  *prometheus.CounterVec
	adapterLatency  *prometheus.HistogramVec
	adapterSkipped  *prometheus.CounterVec
	searches        *prometheus.CounterVec
	fanOutDuration  prometheus.Histogram
	snapshotLookups *prometheus.CounterVec
}

// NewRecorder registers the collectors with reg.
func NewRecorder(reg prometheus.Registerer) *Recorder {
	f := promauto.With(reg)
	return &Recorder{
		adapterResults: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "jobsearch_adapter_results_total",
				Help: "Source adapter invocations by platform and status (ok, empty, timeout, error)",
			},
			[]string{"platform", "status"},
		),
		adapterLatency: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "jobsearch_adapter_duration_seconds",
				Help:    "Source adapter latency in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"platform"},
		),
		adapterSkipped: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "jobsearch_adapter_skipped_records_total",
				Help: "Malformed upstream records dropped by adapters",
			},
			[]string{"platform"},
		),
		searches: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "jobsearch_searches_total",
				Help: "Search requests by outcome",
			},
			[]string{"outcome"},
		),
		fanOutDuration: f.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "jobsearch_fanout_duration_seconds",
				Help:    "Wall-clock time of one fan-out across all active adapters",
				Buckets: prometheus.DefBuckets,
			},
		),
		snapshotLookups: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "jobsearch_snapshot_lookups_total",
				Help: "Paging snapshot lookups by result (hit, miss, error)",
			},
			[]string{"result"},
		),
	}
}

// AdapterResult records one adapter invocation.
func (r *Recorder) AdapterResult(platform, status string, elapsed time.Duration, skipped int) {
	if r == nil {
		return
	}
	r.adapterResults.WithLabelValues(platform, status).Inc()
	r.adapterLatency.WithLabelValues(platform).Observe(elapsed.Seconds())
	if skipped > 0 {
		r.adapterSkipped.WithLabelValues(platform).Add(float64(skipped))
	}
}

// Search records the outcome of one search request.
func (r *Recorder) Search(outcome string) {
	if r == nil {
		return
	}
	r.searches.WithLabelValues(outcome).Inc()
}

// FanOut records the duration of one fan-out.
func (r *Recorder) FanOut(elapsed time.Duration) {
	if r == nil {
		return
	}
	r.fanOutDuration.Observe(elapsed.Seconds())
}

// SnapshotLookup records a snapshot cache lookup.
func (r *Recorder) SnapshotLookup(result string) {
	if r == nil {
		return
	}
	r.snapshotLookups.WithLabelValues(result).Inc()
}
