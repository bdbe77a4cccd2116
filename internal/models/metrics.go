package models

import "time"

// SystemMetrics is a point-in-time summary of process and scheduler metrics.
type SystemMetrics struct {
	CacheHitRatio            float64   `json:"cache_hit_ratio"`
	RequestsTotal            uint64    `json:"requests_total"`
	AverageRequestDurationMs float64   `json:"average_request_duration_ms"`
	GenerationsTotal         uint64    `json:"generations_total"`
	LastUnresolvedSlots      int       `json:"last_unresolved_slots"`
	SyncFailures             uint64    `json:"sync_failures"`
	Goroutines               int       `json:"goroutines"`
	GeneratedAt              time.Time `json:"generated_at"`
}
