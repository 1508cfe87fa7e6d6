package querygate

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// sdkMetrics holds prometheus metrics registered for the SDK.
type sdkMetrics struct {
	operations *prometheus.CounterVec
	duration   *prometheus.HistogramVec
	results    *prometheus.HistogramVec
	notices    *prometheus.CounterVec
}

func newSDKMetrics(reg prometheus.Registerer) (*sdkMetrics, error) {
	m := &sdkMetrics{
		operations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "querygate",
			Subsystem: "sdk",
			Name:      "operations_total",
			Help:      "Total SDK operations by operation, query type and outcome.",
		}, []string{"operation", "query_type", "status"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "querygate",
			Subsystem: "sdk",
			Name:      "operation_duration_seconds",
			Help:      "SDK operation duration in seconds.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"operation"}),
		results: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "querygate",
			Subsystem: "sdk",
			Name:      "results_returned",
			Help:      "Documents returned per successful search operation.",
			Buckets:   []float64{0, 1, 5, 10, 25, 50, 100, 250},
		}, []string{"operation"}),
		notices: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "querygate",
			Subsystem: "sdk",
			Name:      "response_notices_total",
			Help:      "Successful search responses by notice kind.",
		}, []string{"operation", "kind"}),
	}
	if err := registerOrReuse(reg, &m.operations); err != nil {
		return nil, err
	}
	if err := registerOrReuse(reg, &m.duration); err != nil {
		return nil, err
	}
	if err := registerOrReuse(reg, &m.results); err != nil {
		return nil, err
	}
	if err := registerOrReuse(reg, &m.notices); err != nil {
		return nil, err
	}
	return m, nil
}

// registerOrReuse registers a collector or reuses an existing one.
func registerOrReuse[T prometheus.Collector](reg prometheus.Registerer, c *T) error {
	if err := reg.Register(*c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			existing, ok := are.ExistingCollector.(T)
			if !ok {
				return fmt.Errorf("querygate: metric already registered with incompatible type: %T", are.ExistingCollector)
			}
			*c = existing
			return nil
		}
		return fmt.Errorf("querygate: register metric: %w", err)
	}
	return nil
}

// Notice kinds reported for successful document responses.
const (
	noticeParseErrors      = "parse_errors"
	noticeInvalidDatabases = "invalid_databases"
	noticeSpelling         = "spelling_corrected"
)

// errorStatus maps an operation error to a low-cardinality status label.
func errorStatus(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, ErrInvalidRequest):
		return "invalid_request"
	case errors.Is(err, ErrChannelUnavailable):
		return "channel_unavailable"
	case errors.Is(err, ErrMalformedResponse):
		return "malformed_response"
	case errors.Is(err, ErrNotFound):
		return "not_found"
	case errors.Is(err, ErrBackend):
		return "backend"
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return "canceled"
	default:
		return "error"
	}
}

// queryTypeLabel names the routing of a query; operations without one use "none".
func queryTypeLabel(qt QueryType) string {
	if qt == "" {
		return "none"
	}
	return string(qt)
}

// observer provides logging and metrics for SDK operations.
type observer struct {
	logger  *slog.Logger
	metrics *sdkMetrics
}

func newObserver(logger *slog.Logger, reg prometheus.Registerer) (*observer, error) {
	var m *sdkMetrics
	if reg != nil {
		var err error
		m, err = newSDKMetrics(reg)
		if err != nil {
			return nil, err
		}
	}
	return &observer{logger: logger, metrics: m}, nil
}

// observe records an operation that returns no document set.
func (o *observer) observe(op string, start time.Time, err error) {
	o.record(op, "", start, nil, err)
}

// observeDocuments records a search operation together with what its
// response says about query routing and partial failures.
func (o *observer) observeDocuments(op string, qt QueryType, start time.Time, docs Documents, err error) {
	o.record(op, qt, start, &docs, err)
}

func (o *observer) record(op string, qt QueryType, start time.Time, docs *Documents, err error) {
	if o == nil {
		return
	}
	dur := time.Since(start)
	status := errorStatus(err)

	var kinds []string
	if err == nil && docs != nil {
		if docs.ParseErrors > 0 {
			kinds = append(kinds, noticeParseErrors)
		}
		if len(docs.InvalidDatabases) > 0 {
			kinds = append(kinds, noticeInvalidDatabases)
		}
		if docs.Spelling != nil {
			kinds = append(kinds, noticeSpelling)
		}
	}

	if o.metrics != nil {
		o.metrics.operations.WithLabelValues(op, queryTypeLabel(qt), status).Inc()
		o.metrics.duration.WithLabelValues(op).Observe(dur.Seconds())
		if err == nil && docs != nil {
			o.metrics.results.WithLabelValues(op).Observe(float64(len(docs.Results)))
		}
		for _, k := range kinds {
			o.metrics.notices.WithLabelValues(op, k).Inc()
		}
	}

	if o.logger == nil {
		return
	}
	attrs := []any{"op", op, "duration", dur}
	if qt != "" {
		attrs = append(attrs, "query_type", string(qt))
	}
	if err != nil {
		o.logger.Warn("Operation failed", append(attrs, "status", status, "error", err)...)
		return
	}
	if docs != nil {
		attrs = append(attrs, "results", len(docs.Results), "total", docs.TotalResults)
	}
	if len(kinds) > 0 {
		o.logger.Info("Operation completed with notices", append(attrs,
			"notices", kinds,
			"parse_errors", docs.ParseErrors,
			"invalid_databases", docs.InvalidDatabases,
		)...)
		return
	}
	o.logger.Debug("Operation completed", attrs...)
}
