package metrics

import (
	"sync"
	"sync/atomic"
	"time"
)

// Snapshot captures current in-memory counters.
type Snapshot struct {
	LoaderBatches      map[string]uint64
	LoaderKeys         map[string]uint64
	LoaderFailures     uint64
	AccountCacheHits   uint64
	AccountCacheMisses uint64
	GraphQLRequests    map[string]uint64
	PlanTransitions    map[string]uint64
}

// InMemoryRecorder stores metrics in memory for tests.
type InMemoryRecorder struct {
	accountCacheHits   uint64
	accountCacheMisses uint64
	loaderFailures     uint64

	mu              sync.Mutex
	loaderBatches   map[string]uint64
	loaderKeys      map[string]uint64
	graphqlRequests map[string]uint64
	planTransitions map[string]uint64
}

// NewInMemory returns a Recorder that stores counters in memory.
func NewInMemory() *InMemoryRecorder {
	return &InMemoryRecorder{
		loaderBatches:   make(map[string]uint64),
		loaderKeys:      make(map[string]uint64),
		graphqlRequests: make(map[string]uint64),
		planTransitions: make(map[string]uint64),
	}
}

// Snapshot returns a copy of the counters.
func (m *InMemoryRecorder) Snapshot() Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()

	return Snapshot{
		LoaderBatches:      copyCounts(m.loaderBatches),
		LoaderKeys:         copyCounts(m.loaderKeys),
		LoaderFailures:     atomic.LoadUint64(&m.loaderFailures),
		AccountCacheHits:   atomic.LoadUint64(&m.accountCacheHits),
		AccountCacheMisses: atomic.LoadUint64(&m.accountCacheMisses),
		GraphQLRequests:    copyCounts(m.graphqlRequests),
		PlanTransitions:    copyCounts(m.planTransitions),
	}
}

// ObserveLoaderBatch counts a dispatched batch and its keys.
func (m *InMemoryRecorder) ObserveLoaderBatch(loader string, size int, duration time.Duration, failed bool) {
	if failed {
		atomic.AddUint64(&m.loaderFailures, 1)
	}
	m.mu.Lock()
	m.loaderBatches[loader]++
	m.loaderKeys[loader] += uint64(size)
	m.mu.Unlock()
}

// AddAccountCacheHits increments the cache hit counter.
func (m *InMemoryRecorder) AddAccountCacheHits(n int) {
	atomic.AddUint64(&m.accountCacheHits, uint64(n))
}

// AddAccountCacheMisses increments the cache miss counter.
func (m *InMemoryRecorder) AddAccountCacheMisses(n int) {
	atomic.AddUint64(&m.accountCacheMisses, uint64(n))
}

// IncGraphQLRequest counts a GraphQL request by outcome.
func (m *InMemoryRecorder) IncGraphQLRequest(status string) {
	m.mu.Lock()
	m.graphqlRequests[status]++
	m.mu.Unlock()
}

// ObserveGraphQLDuration is not tracked in memory.
func (m *InMemoryRecorder) ObserveGraphQLDuration(duration time.Duration) {}

// IncPlanTransition counts a plan transition as "<transition>:<status>".
func (m *InMemoryRecorder) IncPlanTransition(transition string, status string) {
	m.mu.Lock()
	m.planTransitions[transition+":"+status]++
	m.mu.Unlock()
}

func copyCounts(src map[string]uint64) map[string]uint64 {
	dst := make(map[string]uint64, len(src))
	for k, v := range src {
		dst[k] = v
	}
	return dst
}
