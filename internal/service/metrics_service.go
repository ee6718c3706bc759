package service

import (
	"net/http"
	"runtime"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/noah-isme/sma-attendance-scoring/internal/models"
)

// MetricsService owns the Prometheus registry and keeps atomic counters for JSON snapshots.
type MetricsService struct {
	registry *prometheus.Registry
	handler  http.Handler

	requestDuration    *prometheus.HistogramVec
	requestTotal       *prometheus.CounterVec
	cacheLatency       prometheus.Observer
	cacheWrite         prometheus.Observer
	cacheHitRatio      prometheus.Gauge
	cacheLookups       *prometheus.CounterVec
	dbQueryDuration    *prometheus.HistogramVec
	evaluationDuration *prometheus.HistogramVec
	studentsScored     prometheus.Gauge
	exportJobs         *prometheus.CounterVec

	cacheHitCount        uint64
	cacheMissCount       uint64
	requestCount         uint64
	requestDurationTotal uint64
	dbQueryCount         uint64
	dbQueryDurationTotal uint64
	evaluationCount      uint64
	evaluationTotal      uint64
	lastStudents         int64
	exportsFinished      uint64
	exportsFailed        uint64
}

// NewMetricsService registers the service collectors on a private registry.
func NewMetricsService() *MetricsService {
	m := &MetricsService{registry: prometheus.NewRegistry()}

	m.requestDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "Duration of HTTP requests in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path", "status"})
	m.requestTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "path", "status"})
	cacheLatency := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "scoring_cache_latency_seconds",
		Help:    "Latency of evaluation cache lookups",
		Buckets: prometheus.DefBuckets,
	})
	cacheWrite := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "scoring_cache_write_seconds",
		Help:    "Latency of evaluation cache writes",
		Buckets: prometheus.DefBuckets,
	})
	m.cacheLatency, m.cacheWrite = cacheLatency, cacheWrite
	m.cacheHitRatio = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "scoring_cache_hit_ratio",
		Help: "Ratio of evaluation cache hits to lookups",
	})
	m.cacheLookups = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "scoring_cache_lookups_total",
		Help: "Evaluation cache lookups by result",
	}, []string{"result"})
	m.dbQueryDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "db_query_duration_seconds",
		Help:    "Duration of database queries",
		Buckets: prometheus.DefBuckets,
	}, []string{"query"})
	m.evaluationDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "scoring_evaluation_duration_seconds",
		Help:    "Time spent in the scoring engine per evaluation",
		Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1},
	}, []string{"mode"})
	m.studentsScored = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "scoring_last_evaluation_students",
		Help: "Number of scorecards produced by the most recent evaluation",
	})
	m.exportJobs = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "export_jobs_total",
		Help: "Export jobs reaching a terminal state",
	}, []string{"status"})
	goroutines := prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "goroutines_total",
		Help: "Total number of goroutines",
	}, func() float64 {
		return float64(runtime.NumGoroutine())
	})

	m.registry.MustRegister(
		m.requestDuration, m.requestTotal,
		cacheLatency, cacheWrite, m.cacheHitRatio, m.cacheLookups,
		m.dbQueryDuration, m.evaluationDuration, m.studentsScored, m.exportJobs,
		goroutines,
	)
	m.handler = promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
	return m
}

// Handler exposes the Prometheus HTTP handler.
func (m *MetricsService) Handler() http.Handler {
	if m == nil {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		})
	}
	return m.handler
}

// ObserveHTTPRequest records request metrics.
func (m *MetricsService) ObserveHTTPRequest(method, path string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	labelStatus := strconv.Itoa(status)
	m.requestDuration.WithLabelValues(method, path, labelStatus).Observe(duration.Seconds())
	m.requestTotal.WithLabelValues(method, path, labelStatus).Inc()
	atomic.AddUint64(&m.requestCount, 1)
	atomic.AddUint64(&m.requestDurationTotal, uint64(duration.Nanoseconds()))
}

// RecordCacheOperation records a cache lookup and refreshes the hit ratio.
func (m *MetricsService) RecordCacheOperation(hit bool, duration time.Duration) {
	if m == nil {
		return
	}
	m.cacheLatency.Observe(duration.Seconds())
	if hit {
		m.cacheLookups.WithLabelValues("hit").Inc()
		atomic.AddUint64(&m.cacheHitCount, 1)
	} else {
		m.cacheLookups.WithLabelValues("miss").Inc()
		atomic.AddUint64(&m.cacheMissCount, 1)
	}
	hits := atomic.LoadUint64(&m.cacheHitCount)
	total := hits + atomic.LoadUint64(&m.cacheMissCount)
	if total > 0 {
		m.cacheHitRatio.Set(float64(hits) / float64(total))
	}
}

// ObserveCacheWrite tracks cache write latency.
func (m *MetricsService) ObserveCacheWrite(duration time.Duration) {
	if m == nil {
		return
	}
	m.cacheWrite.Observe(duration.Seconds())
}

// ObserveDBQuery records database query timing.
func (m *MetricsService) ObserveDBQuery(label string, duration time.Duration) {
	if m == nil {
		return
	}
	m.dbQueryDuration.WithLabelValues(label).Observe(duration.Seconds())
	atomic.AddUint64(&m.dbQueryCount, 1)
	atomic.AddUint64(&m.dbQueryDurationTotal, uint64(duration.Nanoseconds()))
}

// ObserveEvaluation records one engine run. mode distinguishes stored-policy evaluations
// from previews.
func (m *MetricsService) ObserveEvaluation(mode string, students int, duration time.Duration) {
	if m == nil {
		return
	}
	m.evaluationDuration.WithLabelValues(mode).Observe(duration.Seconds())
	m.studentsScored.Set(float64(students))
	atomic.AddUint64(&m.evaluationCount, 1)
	atomic.AddUint64(&m.evaluationTotal, uint64(duration.Nanoseconds()))
	atomic.StoreInt64(&m.lastStudents, int64(students))
}

// RecordExportJob counts an export job reaching a terminal status.
func (m *MetricsService) RecordExportJob(status models.ExportStatus) {
	if m == nil {
		return
	}
	m.exportJobs.WithLabelValues(string(status)).Inc()
	switch status {
	case models.ExportStatusFinished:
		atomic.AddUint64(&m.exportsFinished, 1)
	case models.ExportStatusFailed:
		atomic.AddUint64(&m.exportsFailed, 1)
	}
}

// Snapshot returns aggregated metrics for the JSON metrics endpoint.
func (m *MetricsService) Snapshot() models.SystemMetrics {
	if m == nil {
		return models.SystemMetrics{}
	}
	hits := atomic.LoadUint64(&m.cacheHitCount)
	misses := atomic.LoadUint64(&m.cacheMissCount)
	requests := atomic.LoadUint64(&m.requestCount)
	dbCount := atomic.LoadUint64(&m.dbQueryCount)
	evaluations := atomic.LoadUint64(&m.evaluationCount)

	var cacheRatio float64
	if hits+misses > 0 {
		cacheRatio = float64(hits) / float64(hits+misses)
	}

	return models.SystemMetrics{
		CacheHitRatio:            cacheRatio,
		CacheHits:                hits,
		CacheMisses:              misses,
		RequestsTotal:            requests,
		AverageRequestDurationMs: averageMillis(atomic.LoadUint64(&m.requestDurationTotal), requests),
		DBQueryCount:             dbCount,
		AverageDBQueryDurationMs: averageMillis(atomic.LoadUint64(&m.dbQueryDurationTotal), dbCount),
		Evaluations:              evaluations,
		AverageEvaluationMs:      averageMillis(atomic.LoadUint64(&m.evaluationTotal), evaluations),
		LastEvaluationStudents:   int(atomic.LoadInt64(&m.lastStudents)),
		ExportJobsFinished:       atomic.LoadUint64(&m.exportsFinished),
		ExportJobsFailed:         atomic.LoadUint64(&m.exportsFailed),
		Goroutines:               runtime.NumGoroutine(),
		GeneratedAt:              time.Now().UTC(),
	}
}

func averageMillis(totalNanos, count uint64) float64 {
	if count == 0 {
		return 0
	}
	return float64(totalNanos) / float64(count) / float64(time.Millisecond)
}
