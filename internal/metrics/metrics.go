// Package metrics exposes Prometheus collectors for upstream calls, skipped
// symbols and the HTTP API.
package metrics

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics owns its registry so tests and multiple servers never collide on
// the global one.
type Metrics struct {
	Registry *prometheus.Registry

	// UpstreamRequests counts provider calls by outcome (ok|error).
	UpstreamRequests *prometheus.CounterVec
	// UpstreamDuration observes provider call latency.
	UpstreamDuration *prometheus.HistogramVec
	// SymbolsSkipped counts symbols dropped from responses.
	SymbolsSkipped *prometheus.CounterVec

	HTTPRequests *prometheus.CounterVec
	HTTPDuration *prometheus.HistogramVec
}

func New() *Metrics {
	m := &Metrics{
		Registry: prometheus.NewRegistry(),
		UpstreamRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "quotes_upstream_requests_total",
				Help: "Total number of upstream provider requests",
			},
			[]string{"provider", "outcome"},
		),
		UpstreamDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "quotes_upstream_request_duration_seconds",
				Help:    "Upstream provider request latencies",
				Buckets: []float64{.05, .1, .25, .5, 1, 2.5, 5, 10},
			},
			[]string{"provider"},
		),
		SymbolsSkipped: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "quotes_symbols_skipped_total",
				Help: "Total number of symbols a provider flagged and that were dropped",
			},
			[]string{"provider"},
		),
		HTTPRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "quotes_http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"route", "status"},
		),
		HTTPDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "quotes_http_request_duration_seconds",
				Help:    "HTTP request latencies",
				Buckets: []float64{.01, .05, .1, .25, .5, 1, 2.5, 5, 10},
			},
			[]string{"route"},
		),
	}
	m.Registry.MustRegister(
		m.UpstreamRequests,
		m.UpstreamDuration,
		m.SymbolsSkipped,
		m.HTTPRequests,
		m.HTTPDuration,
	)
	return m
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{})
}

func (m *Metrics) UnitFetched(provider string, _ int, elapsed time.Duration, err error) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	m.UpstreamRequests.WithLabelValues(provider, outcome).Inc()
	m.UpstreamDuration.WithLabelValues(provider).Observe(elapsed.Seconds())
}

func (m *Metrics) SymbolSkipped(provider, _ string, _ error) {
	m.SymbolsSkipped.WithLabelValues(provider).Inc()
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

// Middleware records request count and latency per chi route pattern.
func (m *Metrics) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(rec, r)

		route := requestRoute(r)
		m.HTTPRequests.WithLabelValues(route, strconv.Itoa(rec.status)).Inc()
		m.HTTPDuration.WithLabelValues(route).Observe(time.Since(start).Seconds())
	})
}

// requestRoute prefers the matched pattern so label cardinality stays
// bounded by the route table.
func requestRoute(r *http.Request) string {
	if rctx := chi.RouteContext(r.Context()); rctx != nil {
		if pattern := strings.TrimSpace(rctx.RoutePattern()); pattern != "" {
			return pattern
		}
	}
	return "unmatched"
}
