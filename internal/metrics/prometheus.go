package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "hostplan"

// PrometheusRecorder exports Recorder events as Prometheus collectors.
type PrometheusRecorder struct {
	registry *prometheus.Registry

	loaderBatches   *prometheus.CounterVec
	loaderBatchSize *prometheus.HistogramVec
	loaderDuration  *prometheus.HistogramVec
	cacheLookups    *prometheus.CounterVec
	graphqlRequests *prometheus.CounterVec
	graphqlDuration prometheus.Histogram
	planTransitions *prometheus.CounterVec
}

// NewPrometheus creates a Recorder with its own registry, including the
// process and Go runtime collectors.
func NewPrometheus() *PrometheusRecorder {
	p := &PrometheusRecorder{
		registry: prometheus.NewRegistry(),
		loaderBatches: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "loader",
				Name:      "batches_total",
				Help:      "Total number of bulk fetches issued by batch loaders.",
			},
			[]string{"loader", "status"},
		),
		loaderBatchSize: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "loader",
				Name:      "batch_size",
				Help:      "Distinct keys per bulk fetch.",
				Buckets:   prometheus.ExponentialBuckets(1, 2, 10), // 1 to 512
			},
			[]string{"loader"},
		),
		loaderDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "loader",
				Name:      "batch_duration_seconds",
				Help:      "Duration of bulk fetches.",
				Buckets:   prometheus.ExponentialBuckets(0.001, 2, 12), // 1ms to ~4s
			},
			[]string{"loader"},
		),
		cacheLookups: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "account_cache",
				Name:      "lookups_total",
				Help:      "Account cache lookups by result.",
			},
			[]string{"result"},
		),
		graphqlRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "graphql",
				Name:      "requests_total",
				Help:      "Total number of GraphQL requests by outcome.",
			},
			[]string{"status"},
		),
		graphqlDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "graphql",
				Name:      "request_duration_seconds",
				Help:      "Duration of GraphQL request execution.",
				Buckets:   prometheus.ExponentialBuckets(0.005, 2, 10), // 5ms to ~5s
			},
		),
		planTransitions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "account",
				Name:      "plan_transitions_total",
				Help:      "Plan upgrade and downgrade attempts.",
			},
			[]string{"transition", "status"},
		),
	}

	p.registry.MustRegister(
		p.loaderBatches,
		p.loaderBatchSize,
		p.loaderDuration,
		p.cacheLookups,
		p.graphqlRequests,
		p.graphqlDuration,
		p.planTransitions,
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		collectors.NewGoCollector(),
	)

	return p
}

// Handler returns an HTTP handler exposing the registered metrics.
func (p *PrometheusRecorder) Handler() http.Handler {
	return promhttp.HandlerFor(p.registry, promhttp.HandlerOpts{})
}

// Registry returns the underlying registry.
func (p *PrometheusRecorder) Registry() *prometheus.Registry {
	return p.registry
}

// ObserveLoaderBatch records a bulk fetch.
func (p *PrometheusRecorder) ObserveLoaderBatch(loader string, size int, duration time.Duration, failed bool) {
	status := "success"
	if failed {
		status = "failed"
	}
	p.loaderBatches.WithLabelValues(loader, status).Inc()
	p.loaderBatchSize.WithLabelValues(loader).Observe(float64(size))
	p.loaderDuration.WithLabelValues(loader).Observe(duration.Seconds())
}

// AddAccountCacheHits records cache hits.
func (p *PrometheusRecorder) AddAccountCacheHits(n int) {
	p.cacheLookups.WithLabelValues("hit").Add(float64(n))
}

// AddAccountCacheMisses records cache misses.
func (p *PrometheusRecorder) AddAccountCacheMisses(n int) {
	p.cacheLookups.WithLabelValues("miss").Add(float64(n))
}

// IncGraphQLRequest records a GraphQL request outcome.
func (p *PrometheusRecorder) IncGraphQLRequest(status string) {
	p.graphqlRequests.WithLabelValues(status).Inc()
}

// ObserveGraphQLDuration records GraphQL execution time.
func (p *PrometheusRecorder) ObserveGraphQLDuration(duration time.Duration) {
	p.graphqlDuration.Observe(duration.Seconds())
}

// IncPlanTransition records a plan transition attempt.
func (p *PrometheusRecorder) IncPlanTransition(transition string, status string) {
	p.planTransitions.WithLabelValues(transition, status).Inc()
}
