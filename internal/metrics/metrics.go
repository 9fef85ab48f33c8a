// Package metrics provides lightweight hooks for instrumentation.
package metrics

import "time"

// Recorder captures metric events for the application.
// Implementations can expose these to Prometheus, StatsD, etc.
type Recorder interface {
	// Batch loader metrics
	ObserveLoaderBatch(loader string, size int, duration time.Duration, failed bool)

	// Account cache metrics
	AddAccountCacheHits(n int)
	AddAccountCacheMisses(n int)

	// GraphQL metrics
	IncGraphQLRequest(status string) // status: "ok", "error", "rejected"
	ObserveGraphQLDuration(duration time.Duration)

	// Plan transitions
	IncPlanTransition(transition string, status string) // status: "success" or "failed"
}

// Snapshotter exposes a snapshot of current metrics.
type Snapshotter interface {
	Snapshot() Snapshot
}
