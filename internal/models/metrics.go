package models

import "time"

// MetricsSnapshot summarises in-process instrumentation for the JSON metrics endpoint.
type MetricsSnapshot struct {
	RequestsTotal            uint64    `json:"requestsTotal"`
	AverageRequestDurationMs float64   `json:"averageRequestDurationMs"`
	BackendCalls             uint64    `json:"backendCalls"`
	BackendFailures          uint64    `json:"backendFailures"`
	AverageBackendDurationMs float64   `json:"averageBackendDurationMs"`
	UploadsTotal             uint64    `json:"uploadsTotal"`
	Goroutines               int       `json:"goroutines"`
	GeneratedAt              time.Time `json:"generatedAt"`
}
