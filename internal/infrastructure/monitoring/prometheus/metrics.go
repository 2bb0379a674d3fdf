// Package prometheus exposes the analyser's metrics through a private
// client_golang registry.
package prometheus

import (
	"strconv"
	"time"
)

// Status label values of MoleculesAnalyzed.
const (
	StatusOK     = "ok"
	StatusError  = "error"
	StatusCached = "cached"
)

// AppMetrics holds all application metrics.
type AppMetrics struct {
	// Analysis
	MoleculesAnalyzed CounterVec
	AnalysisDuration  HistogramVec
	GroupsMatched     CounterVec
	MoleculeAtoms     HistogramVec

	// Batch
	BatchSize        HistogramVec
	BatchDuration    HistogramVec
	BatchActiveTasks GaugeVec

	// Cache
	CacheHitsTotal   CounterVec
	CacheMissesTotal CounterVec
	CacheErrorsTotal CounterVec

	// HTTP
	HTTPRequestsTotal   CounterVec
	HTTPRequestDuration HistogramVec
}

// Default Buckets
var (
	DefaultHTTPDurationBuckets     = []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5}
	DefaultAnalysisDurationBuckets = []float64{.0001, .0005, .001, .005, .01, .05, .1, .5, 1}
	DefaultBatchSizeBuckets        = []float64{1, 10, 50, 100, 500, 1000, 5000}
	DefaultAtomBuckets             = []float64{5, 10, 20, 50, 100, 200, 500}
)

// NewAppMetrics registers all metrics and returns AppMetrics struct.
func NewAppMetrics(collector MetricsCollector) *AppMetrics {
	m := &AppMetrics{}

	m.MoleculesAnalyzed = collector.RegisterCounter("molecules_analyzed_total", "Molecules analysed", "status")
	m.AnalysisDuration = collector.RegisterHistogram("analysis_duration_seconds", "Per-molecule analysis duration", DefaultAnalysisDurationBuckets, "mode")
	m.GroupsMatched = collector.RegisterCounter("functional_groups_matched_total", "Functional groups matched", "view", "name")
	m.MoleculeAtoms = collector.RegisterHistogram("molecule_atoms", "Heavy atoms per analysed molecule", DefaultAtomBuckets)

	m.BatchSize = collector.RegisterHistogram("batch_size", "Molecules per batch", DefaultBatchSizeBuckets)
	m.BatchDuration = collector.RegisterHistogram("batch_duration_seconds", "Batch duration", nil)
	m.BatchActiveTasks = collector.RegisterGauge("batch_active_tasks", "Molecules currently being analysed by batch workers")

	m.CacheHitsTotal = collector.RegisterCounter("cache_hits_total", "Cache hits", "cache")
	m.CacheMissesTotal = collector.RegisterCounter("cache_misses_total", "Cache misses", "cache")
	m.CacheErrorsTotal = collector.RegisterCounter("cache_errors_total", "Cache errors", "cache", "operation")

	m.HTTPRequestsTotal = collector.RegisterCounter("http_requests_total", "Total HTTP requests", "method", "path", "status_code")
	m.HTTPRequestDuration = collector.RegisterHistogram("http_request_duration_seconds", "HTTP request duration", DefaultHTTPDurationBuckets, "method", "path")

	return m
}

// Helpers.  Every helper accepts a nil *AppMetrics.

func RecordAnalysis(metrics *AppMetrics, status, mode string, atoms int, duration time.Duration) {
	if metrics == nil {
		return
	}
	metrics.MoleculesAnalyzed.WithLabelValues(status).Inc()
	if status == StatusOK {
		metrics.AnalysisDuration.WithLabelValues(mode).Observe(duration.Seconds())
		metrics.MoleculeAtoms.WithLabelValues().Observe(float64(atoms))
	}
}

func RecordGroups(metrics *AppMetrics, view string, groups map[string]int) {
	if metrics == nil {
		return
	}
	for name, n := range groups {
		metrics.GroupsMatched.WithLabelValues(view, name).Add(float64(n))
	}
}

func RecordBatch(metrics *AppMetrics, size int, duration time.Duration) {
	if metrics == nil {
		return
	}
	metrics.BatchSize.WithLabelValues().Observe(float64(size))
	metrics.BatchDuration.WithLabelValues().Observe(duration.Seconds())
}

func TrackBatchTask(metrics *AppMetrics) (done func()) {
	if metrics == nil {
		return func() {}
	}
	g := metrics.BatchActiveTasks.WithLabelValues()
	g.Inc()
	return g.Dec
}

func RecordCacheAccess(metrics *AppMetrics, cache string, hit bool) {
	if metrics == nil {
		return
	}
	if hit {
		metrics.CacheHitsTotal.WithLabelValues(cache).Inc()
	} else {
		metrics.CacheMissesTotal.WithLabelValues(cache).Inc()
	}
}

func RecordCacheError(metrics *AppMetrics, cache, operation string) {
	if metrics == nil {
		return
	}
	metrics.CacheErrorsTotal.WithLabelValues(cache, operation).Inc()
}

func RecordHTTPRequest(metrics *AppMetrics, method, path string, statusCode int, duration time.Duration) {
	if metrics == nil {
		return
	}
	metrics.HTTPRequestsTotal.WithLabelValues(method, path, strconv.Itoa(statusCode)).Inc()
	metrics.HTTPRequestDuration.WithLabelValues(method, path).Observe(duration.Seconds())
}
