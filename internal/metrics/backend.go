package metrics

import "github.com/prometheus/client_golang/prometheus"

// Backend and query engine Prometheus metrics.
var (
	BackendRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "querygate",
			Name:      "backend_requests_total",
			Help:      "Total number of backend ACI requests",
		},
		[]string{"channel", "action", "status"},
	)

	BackendRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "querygate",
			Name:      "backend_request_duration_seconds",
			Help:      "Backend ACI request duration in seconds",
			Buckets:   []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"channel", "action"},
	)

	BackendErrorsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "querygate",
			Name:      "backend_errors_total",
			Help:      "Total backend errors by type",
		},
		[]string{"channel", "action", "error_type"}, // transport / http_status / decode / aci
	)

	QueryExecutionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "querygate",
			Name:      "query_executions_total",
			Help:      "Query executions by query type, initial channel and outcome",
		},
		[]string{"query_type", "channel", "outcome"},
	)

	AutocorrectRetriesTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "querygate",
			Name:      "autocorrect_retries_total",
			Help:      "Queries re-executed with the backend's suggested spelling",
		},
	)

	EnrichmentFallbacksTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "querygate",
			Name:      "enrichment_fallbacks_total",
			Help:      "Enrichment channel queries re-run on the content channel after a missing rule",
		},
	)

	HitParseErrorsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "querygate",
			Name:      "hit_parse_errors_total",
			Help:      "Malformed hits skipped while parsing responses",
		},
	)

	InvalidDatabaseWarningsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "querygate",
			Name:      "invalid_database_warnings_total",
			Help:      "Responses that carried invalid database warnings",
		},
	)

	DatabasesCacheTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "querygate",
			Name:      "databases_cache_total",
			Help:      "Database list cache hits and misses",
		},
		[]string{"result"}, // "hit" / "miss"
	)

	RuntimeConfigReloadsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "querygate",
			Name:      "runtime_config_reloads_total",
			Help:      "Runtime configuration reload attempts",
		},
		[]string{"status"}, // "success" / "error"
	)
)

var backendMetricsRegistered bool

// RegisterBackendMetrics registers backend and engine metrics. Must be called once from main.
func RegisterBackendMetrics() {
	if backendMetricsRegistered {
		return
	}
	prometheus.MustRegister(BackendRequestsTotal)
	prometheus.MustRegister(BackendRequestDuration)
	prometheus.MustRegister(BackendErrorsTotal)
	prometheus.MustRegister(QueryExecutionsTotal)
	prometheus.MustRegister(AutocorrectRetriesTotal)
	prometheus.MustRegister(EnrichmentFallbacksTotal)
	prometheus.MustRegister(HitParseErrorsTotal)
	prometheus.MustRegister(InvalidDatabaseWarningsTotal)
	prometheus.MustRegister(DatabasesCacheTotal)
	prometheus.MustRegister(RuntimeConfigReloadsTotal)
	backendMetricsRegistered = true
}
