package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the service's Prometheus collectors. Each instance owns its
// registry so several routers can coexist in one process.
type Metrics struct {
	registry        *prometheus.Registry
	requests        *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	marks           *prometheus.CounterVec
	feedConnections prometheus.Gauge
}

// New creates and registers the collectors
func New() *Metrics {
	reg := prometheus.NewRegistry()
	m := &Metrics{
		registry: reg,
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "attendly",
			Name:      "http_requests_total",
			Help:      "HTTP requests by method, route and status.",
		}, []string{"method", "route", "status"}),
		requestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "attendly",
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by method and route.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
		marks: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "attendly",
			Name:      "attendance_marks_total",
			Help:      "Attendance records written, by status.",
		}, []string{"status"}),
		feedConnections: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "attendly",
			Name:      "feed_connections",
			Help:      "Open live attendance feed connections.",
		}),
	}
	reg.MustRegister(
		m.requests,
		m.requestDuration,
		m.marks,
		m.feedConnections,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// ObserveRequest records one finished HTTP request
func (m *Metrics) ObserveRequest(method, route string, status int, elapsed time.Duration) {
	if m == nil {
		return
	}
	if route == "" {
		route = "unmatched"
	}
	m.requests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.requestDuration.WithLabelValues(method, route).Observe(elapsed.Seconds())
}

// AddMarks counts written attendance records
func (m *Metrics) AddMarks(present, absent int) {
	if m == nil {
		return
	}
	m.marks.WithLabelValues("PRESENT").Add(float64(present))
	m.marks.WithLabelValues("ABSENT").Add(float64(absent))
}

// SetFeedConnections publishes the number of open feed connections
func (m *Metrics) SetFeedConnections(n int) {
	if m == nil {
		return
	}
	m.feedConnections.Set(float64(n))
}

// Registry exposes the registry, mainly for tests
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus text format
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
