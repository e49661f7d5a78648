package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the Prometheus collectors of the service. A nil *Metrics is
// valid and records nothing.
type Metrics struct {
	registry *prometheus.Registry

	ModelRequests      *prometheus.CounterVec
	ModelLatency       *prometheus.HistogramVec
	ExtractionOutcomes *prometheus.CounterVec
	HTTPRequests       *prometheus.CounterVec
}

// New creates and registers all collectors on a fresh registry.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,
		ModelRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "helpline_model_requests_total",
			Help: "Model completions by task and result code",
		}, []string{"task", "code"}),
		ModelLatency: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "helpline_model_request_duration_seconds",
			Help:    "Model completion latency by task",
			Buckets: []float64{0.25, 0.5, 1, 2, 5, 10, 20, 30, 60},
		}, []string{"task"}),
		ExtractionOutcomes: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "helpline_extractions_total",
			Help: "Case record extractions by outcome and fallback reason",
		}, []string{"outcome", "reason"}),
		HTTPRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "helpline_http_requests_total",
			Help: "HTTP requests by method, route and status",
		}, []string{"method", "route", "status"}),
	}
}

// ObserveModel records one model call. code is "ok" on success.
func (m *Metrics) ObserveModel(task, code string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.ModelRequests.WithLabelValues(task, code).Inc()
	m.ModelLatency.WithLabelValues(task).Observe(elapsed.Seconds())
}

func (m *Metrics) IncExtraction(outcome, reason string) {
	if m == nil {
		return
	}
	m.ExtractionOutcomes.WithLabelValues(outcome, reason).Inc()
}

func (m *Metrics) IncHTTPRequest(method, route, status string) {
	if m == nil {
		return
	}
	m.HTTPRequests.WithLabelValues(method, route, status).Inc()
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return promhttp.HandlerFor(prometheus.NewRegistry(), promhttp.HandlerOpts{})
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
