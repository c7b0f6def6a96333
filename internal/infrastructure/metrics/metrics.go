// Package metrics exposes Prometheus collectors for the HTTP API, label
// generation and the database pool.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"linksoc/internal/domain/labels"
	"linksoc/internal/infrastructure/storage/postgres"
)

const namespace = "linksoc"

// Metrics owns a registry and the collectors registered on it.
type Metrics struct {
	registry *prometheus.Registry

	requests        *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	generated       *prometheus.CounterVec
	shortfall       *prometheus.CounterVec
}

var _ labels.Observer = (*Metrics)(nil)

// New creates the collectors on a fresh registry, together with the Go and process collectors.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "HTTP requests by route, method and status.",
		}, []string{"route", "method", "status"}),
		requestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request latency by route and method.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"route", "method"}),
		generated: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "labels",
			Name:      "generated_total",
			Help:      "Labels written by Generate, by mode.",
		}, []string{"mode"}),
		shortfall: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "labels",
			Name:      "shortfall_total",
			Help:      "Requested labels Generate could not allocate, by mode.",
		}, []string{"mode"}),
	}

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.requests,
		m.requestDuration,
		m.generated,
		m.shortfall,
	)
	return m
}

// Registry returns the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// ObserveGenerate implements labels.Observer.
func (m *Metrics) ObserveGenerate(mode labels.Mode, requested, generated int) {
	m.generated.WithLabelValues(string(mode)).Add(float64(generated))
	if short := requested - generated; short > 0 {
		m.shortfall.WithLabelValues(string(mode)).Add(float64(short))
	}
}

// RegisterPool exports connection pool statistics as gauges.
func (m *Metrics) RegisterPool(pool *postgres.Pool) {
	gauge := func(name, help string, value func(postgres.PoolStats) int32) prometheus.Collector {
		return prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "db_pool",
			Name:      name,
			Help:      help,
		}, func() float64 { return float64(value(pool.Stats())) })
	}

	m.registry.MustRegister(
		gauge("total_conns", "Total connections in the pool.", func(s postgres.PoolStats) int32 { return s.TotalConns }),
		gauge("acquired_conns", "Connections currently in use.", func(s postgres.PoolStats) int32 { return s.AcquiredConns }),
		gauge("idle_conns", "Idle connections.", func(s postgres.PoolStats) int32 { return s.IdleConns }),
		gauge("max_conns", "Maximum pool size.", func(s postgres.PoolStats) int32 { return s.MaxConns }),
	)
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// Middleware records request count and latency per matched route.
func (m *Metrics) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		m.requests.WithLabelValues(route, c.Request.Method, strconv.Itoa(c.Writer.Status())).Inc()
		m.requestDuration.WithLabelValues(route, c.Request.Method).Observe(time.Since(start).Seconds())
	}
}
