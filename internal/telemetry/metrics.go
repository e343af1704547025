// Package telemetry exposes pipeline, supplier and transport counters on a
// private Prometheus registry. A nil *Metrics records nothing.
package telemetry

import (
	"net/http"
	"strconv"
	"time"

	"github.com/godilite/call-insights/internal/domain"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "callinsights"

type Metrics struct {
	registry *prometheus.Registry

	callsNormalized  *prometheus.CounterVec
	callsScored      *prometheus.CounterVec
	scoringSkipped   *prometheus.CounterVec
	syncRuns         *prometheus.CounterVec
	syncDuration     *prometheus.HistogramVec
	supplierRequests *prometheus.CounterVec
	supplierLatency  *prometheus.HistogramVec
	rpcRequests      *prometheus.CounterVec
	rpcLatency       *prometheus.HistogramVec
	httpRequests     *prometheus.CounterVec
	httpLatency      *prometheus.HistogramVec
}

// New builds the collectors and registers them, plus the Go runtime and
// process collectors, on a fresh registry.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),

		callsNormalized: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "calls_normalized_total",
				Help:      "Raw call records processed by the normalizer",
			},
			[]string{"result"},
		),
		callsScored: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "calls_scored_total",
				Help:      "Analyses written, by kind and rating",
			},
			[]string{"kind", "rating"},
		),
		scoringSkipped: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "scoring_skipped_total",
				Help:      "Calls that could not be scored, by reason",
			},
			[]string{"reason"},
		),
		syncRuns: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "sync_runs_total",
				Help:      "Completed sync runs",
			},
			[]string{"outcome"},
		),
		syncDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "sync_duration_seconds",
				Help:      "Wall time of a sync run",
				Buckets:   prometheus.ExponentialBuckets(0.5, 2, 12),
			},
			[]string{"outcome"},
		),
		supplierRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "supplier_requests_total",
				Help:      "Requests to external suppliers after retries",
			},
			[]string{"supplier", "op", "outcome"},
		),
		supplierLatency: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "supplier_request_duration_seconds",
				Help:      "Latency of supplier requests including retries",
				Buckets:   prometheus.ExponentialBuckets(0.05, 2, 12),
			},
			[]string{"supplier", "op"},
		),
		rpcRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "grpc_requests_total",
				Help:      "Unary gRPC requests by method and status code",
			},
			[]string{"method", "code"},
		),
		rpcLatency: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "grpc_request_duration_seconds",
				Help:      "Latency of unary gRPC requests",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"method"},
		),
		httpRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "http_requests_total",
				Help:      "HTTP requests by route pattern and status",
			},
			[]string{"method", "route", "status"},
		),
		httpLatency: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "http_request_duration_seconds",
				Help:      "Latency of HTTP requests",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"method", "route"},
		),
	}

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.callsNormalized,
		m.callsScored,
		m.scoringSkipped,
		m.syncRuns,
		m.syncDuration,
		m.supplierRequests,
		m.supplierLatency,
		m.rpcRequests,
		m.rpcLatency,
		m.httpRequests,
		m.httpLatency,
	)
	return m
}

// Registry exposes the registry for tests and extra collectors.
func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

func (m *Metrics) CallsNormalized(valid, invalid int) {
	if m == nil {
		return
	}
	m.callsNormalized.WithLabelValues("valid").Add(float64(valid))
	m.callsNormalized.WithLabelValues("invalid").Add(float64(invalid))
}

func (m *Metrics) CallScored(kind domain.AnalysisKind, rating domain.Rating) {
	if m == nil {
		return
	}
	m.callsScored.WithLabelValues(string(kind), string(rating)).Inc()
}

func (m *Metrics) ScoringSkipped(reason string) {
	if m == nil {
		return
	}
	m.scoringSkipped.WithLabelValues(reason).Inc()
}

func (m *Metrics) SyncFinished(outcome string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.syncRuns.WithLabelValues(outcome).Inc()
	m.syncDuration.WithLabelValues(outcome).Observe(elapsed.Seconds())
}

func (m *Metrics) ObserveSupplierRequest(supplier, op, outcome string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.supplierRequests.WithLabelValues(supplier, op, outcome).Inc()
	m.supplierLatency.WithLabelValues(supplier, op).Observe(elapsed.Seconds())
}

func (m *Metrics) ObserveRPC(method, code string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.rpcRequests.WithLabelValues(method, code).Inc()
	m.rpcLatency.WithLabelValues(method).Observe(elapsed.Seconds())
}

// ObserveHTTP records one request. route is the matched pattern, not the raw
// path, so ids do not explode the label set.
func (m *Metrics) ObserveHTTP(method, route string, status int, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.httpRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.httpLatency.WithLabelValues(method, route).Observe(elapsed.Seconds())
}
