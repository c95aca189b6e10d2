// Package telemetry owns the prometheus collectors exported on /metrics.
package telemetry

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/mamadbah2/pigfarm/internal/apperror"
)

// Metrics groups the service collectors on a private registry. A nil *Metrics
// is valid and records nothing.
type Metrics struct {
	registry   *prometheus.Registry
	requests   *prometheus.HistogramVec
	rejections *prometheus.CounterVec
	writes     *prometheus.CounterVec
	purged     prometheus.Counter
}

// New registers every collector plus the Go and process collectors.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	m := &Metrics{
		registry: reg,
		requests: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "pigfarm",
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by route and status.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route", "status"}),
		rejections: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "pigfarm",
			Name:      "write_rejections_total",
			Help:      "Writes rejected by validation, by module and error kind.",
		}, []string{"module", "kind"}),
		writes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "pigfarm",
			Name:      "record_writes_total",
			Help:      "Committed record writes, by module and action.",
		}, []string{"module", "action"}),
		purged: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "pigfarm",
			Name:      "activity_logs_purged_total",
			Help:      "Activity log rows removed by the retention policy.",
		}),
	}

	reg.MustRegister(
		m.requests, m.rejections, m.writes, m.purged,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// Handler serves the registry in the prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// ObserveRequest records one HTTP request.
func (m *Metrics) ObserveRequest(method, route string, status int, elapsed time.Duration) {
	if m == nil {
		return
	}
	if route == "" {
		route = "unmatched"
	}
	m.requests.WithLabelValues(method, route, strconv.Itoa(status)).Observe(elapsed.Seconds())
}

// Rejected counts a domain rejection. Non-domain errors are ignored.
func (m *Metrics) Rejected(module string, err error) {
	if m == nil {
		return
	}
	if appErr, ok := apperror.As(err); ok {
		m.rejections.WithLabelValues(module, string(appErr.Kind)).Inc()
	}
}

// Wrote counts a committed write.
func (m *Metrics) Wrote(module, action string) {
	if m == nil {
		return
	}
	m.writes.WithLabelValues(module, action).Inc()
}

// Purged counts removed activity log rows.
func (m *Metrics) Purged(n int64) {
	if m == nil || n <= 0 {
		return
	}
	m.purged.Add(float64(n))
}
