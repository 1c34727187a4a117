package dto

import "time"

// SystemMetrics is an instrumentation snapshot surfaced by the analytics API.
type SystemMetrics struct {
	CacheHitRatio             float64   `json:"cacheHitRatio"`
	CacheHits                 uint64    `json:"cacheHits"`
	CacheMisses               uint64    `json:"cacheMisses"`
	RequestsTotal             uint64    `json:"requestsTotal"`
	AverageRequestDurationMs  float64   `json:"averageRequestDurationMs"`
	PipelineRuns              uint64    `json:"pipelineRuns"`
	AveragePipelineDurationMs float64   `json:"averagePipelineDurationMs"`
	Goroutines                int       `json:"goroutines"`
	GeneratedAt               time.Time `json:"generatedAt"`
}
