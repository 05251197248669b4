// Package monitoring provides Prometheus metrics for the HTTP surface
// and the generation pipeline.
package monitoring

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics.
type Metrics struct {
	registry *prometheus.Registry

	// HTTP metrics
	RequestsTotal   *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec

	// Pipeline metrics
	GenerationsTotal *prometheus.CounterVec
	StageDuration    *prometheus.HistogramVec

	// Cache metrics
	CacheEntries     prometheus.Gauge
	CacheHits        prometheus.Counter
	CacheMisses      prometheus.Counter
	CacheExpirations prometheus.Counter

	// Refresh metrics
	RefreshTotal *prometheus.CounterVec
}

// NewMetrics creates and registers all metrics on a private registry.
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,

		RequestsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "apiforge_http_requests_total",
			Help: "Total HTTP requests by method, path, and status",
		}, []string{"method", "path", "status"}),

		RequestDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "apiforge_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "path"}),

		GenerationsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "apiforge_generations_total",
			Help: "Total generation runs by outcome",
		}, []string{"outcome"}),

		StageDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "apiforge_pipeline_stage_duration_seconds",
			Help:    "Generation pipeline stage duration in seconds",
			Buckets: []float64{.05, .1, .25, .5, 1, 2.5, 5, 10, 30},
		}, []string{"stage"}),

		CacheEntries: factory.NewGauge(prometheus.GaugeOpts{
			Name: "apiforge_cache_entries",
			Help: "Current number of cached extraction records",
		}),

		CacheHits: factory.NewCounter(prometheus.CounterOpts{
			Name: "apiforge_cache_hits_total",
			Help: "Cache reads that returned a live entry",
		}),

		CacheMisses: factory.NewCounter(prometheus.CounterOpts{
			Name: "apiforge_cache_misses_total",
			Help: "Cache reads for absent slugs",
		}),

		CacheExpirations: factory.NewCounter(prometheus.CounterOpts{
			Name: "apiforge_cache_expirations_total",
			Help: "Entries evicted because their TTL elapsed",
		}),

		RefreshTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "apiforge_refresh_requests_total",
			Help: "Manual refresh requests by outcome",
		}, []string{"outcome"}),
	}
}

// Handler returns an HTTP handler exposing the metrics registry.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// RecordHTTPRequest records a completed HTTP request.
func (m *Metrics) RecordHTTPRequest(method, path, status string, duration time.Duration) {
	m.RequestsTotal.WithLabelValues(method, path, status).Inc()
	m.RequestDuration.WithLabelValues(method, path).Observe(duration.Seconds())
}

// RecordGeneration records the outcome of a generation run.
func (m *Metrics) RecordGeneration(outcome string) {
	m.GenerationsTotal.WithLabelValues(outcome).Inc()
}

// RecordStage records the duration of one pipeline stage.
func (m *Metrics) RecordStage(stage string, duration time.Duration) {
	m.StageDuration.WithLabelValues(stage).Observe(duration.Seconds())
}

// RecordRefresh records the outcome of a refresh request.
func (m *Metrics) RecordRefresh(outcome string) {
	m.RefreshTotal.WithLabelValues(outcome).Inc()
}

// SetCacheEntries updates the cache size gauge.
func (m *Metrics) SetCacheEntries(n int) {
	m.CacheEntries.Set(float64(n))
}

// RecordCacheRead records a cache hit or miss.
func (m *Metrics) RecordCacheRead(hit bool) {
	if hit {
		m.CacheHits.Inc()
	} else {
		m.CacheMisses.Inc()
	}
}

// RecordExpirations adds TTL evictions to the expiration counter.
func (m *Metrics) RecordExpirations(n int) {
	m.CacheExpirations.Add(float64(n))
}
