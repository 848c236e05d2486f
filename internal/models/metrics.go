package models

import "time"

// SystemMetrics is the JSON snapshot served next to the Prometheus endpoint.
type SystemMetrics struct {
	CacheHitRatio            float64           `json:"cache_hit_ratio"`
	CacheHits                uint64            `json:"cache_hits"`
	CacheMisses              uint64            `json:"cache_misses"`
	RequestsTotal            uint64            `json:"requests_total"`
	AverageRequestDurationMs float64           `json:"avg_request_duration_ms"`
	PlansGenerated           uint64            `json:"plans_generated"`
	PlansStored              int               `json:"plans_stored"`
	ConflictsDetected        map[string]uint64 `json:"conflicts_detected"`
	OptimizeJobs             map[string]uint64 `json:"optimize_jobs"`
	Goroutines               int               `json:"goroutines"`
	GeneratedAt              time.Time         `json:"generated_at"`
}
