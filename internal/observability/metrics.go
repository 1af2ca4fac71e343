// Package observability exposes Prometheus metrics for the service.
package observability

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics bundles the registry with the collectors the service updates.
type Metrics struct {
	registry *prometheus.Registry

	httpRequests *prometheus.CounterVec
	httpDuration *prometheus.HistogramVec

	PedidosCreated  *prometheus.CounterVec
	StatusAdvanced  *prometheus.CounterVec
	LoginFailures   prometheus.Counter
	EmailsEnqueued  prometheus.Counter
	ResumoCacheHits prometheus.Counter
}

// NewMetrics builds and registers all collectors.
func NewMetrics() *Metrics {
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	m := &Metrics{
		registry: registry,
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "pedidoflow_http_requests_total",
			Help: "Total HTTP requests by method, route and status code.",
		}, []string{"method", "route", "code"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "pedidoflow_http_request_duration_seconds",
			Help:    "HTTP request latency by method and route.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route"}),
		PedidosCreated: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "pedidoflow_pedidos_created_total",
			Help: "Orders created by tipo and status.",
		}, []string{"tipo", "status"}),
		StatusAdvanced: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "pedidoflow_status_advanced_total",
			Help: "Status transitions applied by target status.",
		}, []string{"status"}),
		LoginFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "pedidoflow_login_failures_total",
			Help: "Failed login attempts.",
		}),
		EmailsEnqueued: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "pedidoflow_emails_enqueued_total",
			Help: "Notification emails enqueued to the worker.",
		}),
		ResumoCacheHits: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "pedidoflow_resumo_cache_hits_total",
			Help: "Summary endpoint responses served from cache.",
		}),
	}

	registry.MustRegister(
		m.httpRequests,
		m.httpDuration,
		m.PedidosCreated,
		m.StatusAdvanced,
		m.LoginFailures,
		m.EmailsEnqueued,
		m.ResumoCacheHits,
	)
	return m
}

// Handler serves the /metrics endpoint.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Middleware instruments every request with count and latency metrics.
func (m *Metrics) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(sw, r)

		route := chi.RouteContext(r.Context()).RoutePattern()
		if route == "" {
			route = "unmatched"
		}
		m.httpRequests.WithLabelValues(r.Method, route, strconv.Itoa(sw.status)).Inc()
		m.httpDuration.WithLabelValues(r.Method, route).Observe(time.Since(start).Seconds())
	})
}

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}
