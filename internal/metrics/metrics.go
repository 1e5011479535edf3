package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Query layer
	QueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "cinephile_query_duration_seconds",
			Help:    "Duration of catalog query operations in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation"},
	)

	QueryResults = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cinephile_query_results_total",
			Help: "Query operations by outcome (hit, miss, error)",
		},
		[]string{"operation", "outcome"},
	)

	CatalogRecords = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "cinephile_catalog_records",
			Help: "Number of movie records currently loaded",
		},
	)

	// Trivia cache
	TriviaCacheHits = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "cinephile_trivia_cache_hits_total",
			Help: "Total number of trivia answers served from cache",
		},
	)

	TriviaCacheMisses = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "cinephile_trivia_cache_misses_total",
			Help: "Total number of trivia lookups that missed the cache",
		},
	)

	// Text generation circuit breaker
	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "cinephile_circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"name"},
	)

	CircuitBreakerTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cinephile_circuit_breaker_transitions_total",
			Help: "Circuit breaker state transitions",
		},
		[]string{"name", "from", "to"},
	)

	// HTTP API
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cinephile_api_requests_total",
			Help: "Total number of API requests",
		},
		[]string{"method", "endpoint", "status"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "cinephile_api_request_duration_seconds",
			Help:    "API request latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "endpoint"},
	)

	// Offline pipeline
	PipelineRows = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "cinephile_pipeline_rows",
			Help: "Row counts from the last prep run by stage",
		},
		[]string{"stage"},
	)
)

// Query outcomes.
const (
	OutcomeHit   = "hit"
	OutcomeMiss  = "miss"
	OutcomeError = "error"
)

// RecordQuery records the latency and outcome of one query operation.
func RecordQuery(operation, outcome string, duration time.Duration) {
	QueryDuration.WithLabelValues(operation).Observe(duration.Seconds())
	QueryResults.WithLabelValues(operation, outcome).Inc()
}

// RecordAPIRequest records one HTTP API request.
func RecordAPIRequest(method, endpoint string, status int, duration time.Duration) {
	APIRequestsTotal.WithLabelValues(method, endpoint, strconv.Itoa(status)).Inc()
	APIRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}

// RecordTriviaCache records a trivia cache lookup.
func RecordTriviaCache(hit bool) {
	if hit {
		TriviaCacheHits.Inc()
		return
	}
	TriviaCacheMisses.Inc()
}

// RecordBreakerTransition records a circuit breaker state change. States use
// the breaker's own names ("closed", "half-open", "open").
func RecordBreakerTransition(name, from, to string) {
	CircuitBreakerTransitions.WithLabelValues(name, from, to).Inc()
	CircuitBreakerState.WithLabelValues(name).Set(breakerStateValue(to))
}

func breakerStateValue(state string) float64 {
	switch state {
	case "half-open":
		return 1
	case "open":
		return 2
	default:
		return 0
	}
}

// SetCatalogRecords publishes the loaded catalog size.
func SetCatalogRecords(n int) {
	CatalogRecords.Set(float64(n))
}

// SetPipelineRows publishes the row count for a prep stage.
func SetPipelineRows(stage string, n int) {
	PipelineRows.WithLabelValues(stage).Set(float64(n))
}
