package models

import "time"

// SystemMetrics is a point-in-time snapshot of service instrumentation.
type SystemMetrics struct {
	CacheHitRatio            float64   `json:"cache_hit_ratio"`
	CacheHits                uint64    `json:"cache_hits"`
	CacheMisses              uint64    `json:"cache_misses"`
	RequestsTotal            uint64    `json:"requests_total"`
	AverageRequestDurationMs float64   `json:"average_request_duration_ms"`
	DBQueryCount             uint64    `json:"db_query_count"`
	AverageDBQueryDurationMs float64   `json:"average_db_query_duration_ms"`
	Evaluations              uint64    `json:"evaluations"`
	AverageEvaluationMs      float64   `json:"average_evaluation_ms"`
	LastEvaluationStudents   int       `json:"last_evaluation_students"`
	ExportJobsFinished       uint64    `json:"export_jobs_finished"`
	ExportJobsFailed         uint64    `json:"export_jobs_failed"`
	Goroutines               int       `json:"goroutines"`
	GeneratedAt              time.Time `json:"generated_at"`
}
