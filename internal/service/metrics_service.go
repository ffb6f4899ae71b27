package service

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// MetricsService owns the Prometheus registry and the collectors the server
// exports. All methods are nil-safe so instrumented code never has to branch
// on whether metrics are wired.
type MetricsService struct {
	registry *prometheus.Registry

	httpDuration *prometheus.HistogramVec
	httpTotal    *prometheus.CounterVec

	bufferHits    prometheus.Counter
	bufferMisses  prometheus.Counter
	bufferEntries prometheus.Gauge

	queryCacheHits   prometheus.Counter
	queryCacheMisses prometheus.Counter
}

// NewMetricsService constructs the registry and registers all collectors.
func NewMetricsService() *MetricsService {
	registry := prometheus.NewRegistry()

	s := &MetricsService{
		registry: registry,
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "vault_http_request_duration_seconds",
			Help:    "HTTP request latency by route.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "path", "status"}),
		httpTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "vault_http_requests_total",
			Help: "HTTP requests by route and status.",
		}, []string{"method", "path", "status"}),
		bufferHits: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "vault_buffer_hits_total",
			Help: "Buffer cache reads that found a live entry.",
		}),
		bufferMisses: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "vault_buffer_misses_total",
			Help: "Buffer cache reads that found nothing.",
		}),
		bufferEntries: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "vault_buffer_entries",
			Help: "Entries currently held in the buffer cache.",
		}),
		queryCacheHits: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "vault_query_cache_hits_total",
			Help: "Find-files queries answered from the result cache.",
		}),
		queryCacheMisses: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "vault_query_cache_misses_total",
			Help: "Find-files queries that went to the database.",
		}),
	}

	registry.MustRegister(
		s.httpDuration,
		s.httpTotal,
		s.bufferHits,
		s.bufferMisses,
		s.bufferEntries,
		s.queryCacheHits,
		s.queryCacheMisses,
	)

	return s
}

// ObserveHTTPRequest records one handled request.
func (s *MetricsService) ObserveHTTPRequest(method, path string, status int, duration time.Duration) {
	if s == nil {
		return
	}
	code := strconv.Itoa(status)
	s.httpDuration.WithLabelValues(method, path, code).Observe(duration.Seconds())
	s.httpTotal.WithLabelValues(method, path, code).Inc()
}

// RecordBufferGet counts a buffer cache lookup.
func (s *MetricsService) RecordBufferGet(hit bool) {
	if s == nil {
		return
	}
	if hit {
		s.bufferHits.Inc()
	} else {
		s.bufferMisses.Inc()
	}
}

// SetBufferEntries publishes the current buffer cache size.
func (s *MetricsService) SetBufferEntries(n int) {
	if s == nil {
		return
	}
	s.bufferEntries.Set(float64(n))
}

// RecordQueryCache counts a find-files result cache lookup.
func (s *MetricsService) RecordQueryCache(hit bool) {
	if s == nil {
		return
	}
	if hit {
		s.queryCacheHits.Inc()
	} else {
		s.queryCacheMisses.Inc()
	}
}

// Handler exposes the registry for the /metrics endpoint.
func (s *MetricsService) Handler() http.Handler {
	return promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{})
}
