// Package metrics exports HTTP and scheduling metrics in the Prometheus
// format.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "trip_planner"

// Metrics owns a private registry so tests can build as many as they like.
// It implements service.Recorder.
type Metrics struct {
	registry  *prometheus.Registry
	requests  *prometheus.CounterVec
	latency   *prometheus.HistogramVec
	storeBusy *prometheus.CounterVec
	proposals *prometheus.CounterVec
	votes     *prometheus.CounterVec
}

// New registers every collector, including the Go runtime and process
// collectors.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	f := promauto.With(reg)

	return &Metrics{
		registry: reg,
		requests: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by method, route pattern and status.",
		}, []string{"method", "route", "status"}),
		latency: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by method and route pattern.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
		storeBusy: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "store_busy_total",
			Help:      "Transaction attempts that found the store busy, by operation.",
		}, []string{"op"}),
		proposals: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "suggestions_proposed_total",
			Help:      "Proposals by outcome: created, replayed or conflict.",
		}, []string{"outcome"}),
		votes: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "votes_cast_total",
			Help:      "Votes by outcome: pending, promoted or blocked.",
		}, []string{"outcome"}),
	}
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// Middleware counts requests by chi route pattern rather than raw path, so
// ids do not explode the label space. Requests no route matched are
// labelled "unmatched".
func (m *Metrics) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := chimiddleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		route := "unmatched"
		if rc := chi.RouteContext(r.Context()); rc != nil && rc.RoutePattern() != "" {
			route = rc.RoutePattern()
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		m.requests.WithLabelValues(r.Method, route, strconv.Itoa(status)).Inc()
		m.latency.WithLabelValues(r.Method, route).Observe(time.Since(start).Seconds())
	})
}

func (m *Metrics) StoreBusy(op string) {
	m.storeBusy.WithLabelValues(op).Inc()
}

func (m *Metrics) SuggestionProposed(outcome string) {
	m.proposals.WithLabelValues(outcome).Inc()
}

func (m *Metrics) VoteCast(outcome string) {
	m.votes.WithLabelValues(outcome).Inc()
}
