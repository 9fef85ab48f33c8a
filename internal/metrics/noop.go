package metrics

import "time"

// NoopRecorder implements Recorder with no-op methods.
type NoopRecorder struct{}

// NewNoop returns a Recorder that discards all metrics.
func NewNoop() Recorder {
	return &NoopRecorder{}
}

// ObserveLoaderBatch is a no-op.
func (n *NoopRecorder) ObserveLoaderBatch(loader string, size int, duration time.Duration, failed bool) {}

// AddAccountCacheHits is a no-op.
func (n *NoopRecorder) AddAccountCacheHits(count int) {}

// AddAccountCacheMisses is a no-op.
func (n *NoopRecorder) AddAccountCacheMisses(count int) {}

// IncGraphQLRequest is a no-op.
func (n *NoopRecorder) IncGraphQLRequest(status string) {}

// ObserveGraphQLDuration is a no-op.
func (n *NoopRecorder) ObserveGraphQLDuration(duration time.Duration) {}

// IncPlanTransition is a no-op.
func (n *NoopRecorder) IncPlanTransition(transition string, status string) {}
