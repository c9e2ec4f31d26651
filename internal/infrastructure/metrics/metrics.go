// Package metrics provides the Prometheus collectors for the HTTP API and
// the brewing core
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/ak/sba/internal/infrastructure/config"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds every collector, all registered on one registry
type Metrics struct {
	registry *prometheus.Registry

	requestsTotal    *prometheus.CounterVec
	requestDuration  *prometheus.HistogramVec
	activeRequests   prometheus.Gauge
	recipesBuilt     *prometheus.CounterVec
	suggestionsTotal *prometheus.CounterVec
	storeErrors      *prometheus.CounterVec
}

// New creates the collectors on a fresh registry. A nil *Metrics is
// valid and records nothing.
func New(cfg config.MetricsConfig) *Metrics {
	if !cfg.Enabled {
		return nil
	}
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	factory := promauto.With(reg)
	ns := cfg.Namespace

	return &Metrics{
		registry: reg,
		requestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: ns,
				Subsystem: "http",
				Name:      "requests_total",
				Help:      "Total number of HTTP requests",
			},
			[]string{"method", "route", "status"},
		),
		requestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: ns,
				Subsystem: "http",
				Name:      "request_duration_seconds",
				Help:      "HTTP request latency",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"method", "route"},
		),
		activeRequests: factory.NewGauge(
			prometheus.GaugeOpts{
				Namespace: ns,
				Subsystem: "http",
				Name:      "active_requests",
				Help:      "Requests currently being served",
			},
		),
		recipesBuilt: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: ns,
				Subsystem: "brew",
				Name:      "recipes_built_total",
				Help:      "Stage recipes built, by stage",
			},
			[]string{"stage"},
		),
		suggestionsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: ns,
				Subsystem: "brew",
				Name:      "substitution_requests_total",
				Help:      "Substitution requests, by target ingredient",
			},
			[]string{"target"},
		),
		storeErrors: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: ns,
				Subsystem: "store",
				Name:      "errors_total",
				Help:      "Document store failures surfaced to clients",
			},
			[]string{"route"},
		),
	}
}

// ObserveRequest records one finished request
func (m *Metrics) ObserveRequest(method, route string, status int, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.requestsTotal.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.requestDuration.WithLabelValues(method, route).Observe(elapsed.Seconds())
}

// RequestStarted and RequestFinished track in-flight requests
func (m *Metrics) RequestStarted() {
	if m != nil {
		m.activeRequests.Inc()
	}
}

func (m *Metrics) RequestFinished() {
	if m != nil {
		m.activeRequests.Dec()
	}
}

func (m *Metrics) RecipeBuilt(stage string) {
	if m != nil {
		m.recipesBuilt.WithLabelValues(stage).Inc()
	}
}

func (m *Metrics) SubstitutionRequested(target string) {
	if m != nil {
		m.suggestionsTotal.WithLabelValues(target).Inc()
	}
}

func (m *Metrics) StoreError(route string) {
	if m != nil {
		m.storeErrors.WithLabelValues(route).Inc()
	}
}

// Handler serves the registry in the Prometheus text format
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Registry exposes the registry for tests
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}
