package http

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the service's Prometheus collectors on a private registry.
type Metrics struct {
	registry *prometheus.Registry

	RequestsTotal         *prometheus.CounterVec
	CacheHitsTotal        prometheus.Counter
	CacheMissesTotal      prometheus.Counter
	FetchesTotal          *prometheus.CounterVec
	FetchDuration         *prometheus.HistogramVec
	ReleaseArtworkMissing prometheus.Counter
}

// NewMetrics creates and registers all collectors.
func NewMetrics() *Metrics {
	metrics := &Metrics{
		RequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "coverart_http_requests_total",
				Help: "Total number of HTTP requests handled",
			},
			[]string{"route", "code"},
		),
		CacheHitsTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "coverart_artwork_cache_hits_total",
				Help: "Total number of artwork lookups served from the cache",
			},
		),
		CacheMissesTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "coverart_artwork_cache_misses_total",
				Help: "Total number of artwork lookups that missed the cache",
			},
		),
		FetchesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "coverart_oembed_fetches_total",
				Help: "Total number of oEmbed requests",
			},
			[]string{"status"},
		),
		FetchDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "coverart_oembed_fetch_duration_seconds",
				Help:    "Time spent fetching oEmbed metadata",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"status"},
		),
		ReleaseArtworkMissing: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "coverart_release_artwork_missing_total",
				Help: "Total number of releases served without artwork",
			},
		),
	}

	metrics.registry = prometheus.NewRegistry()
	metrics.registry.MustRegister(
		metrics.RequestsTotal,
		metrics.CacheHitsTotal,
		metrics.CacheMissesTotal,
		metrics.FetchesTotal,
		metrics.FetchDuration,
		metrics.ReleaseArtworkMissing,
	)

	return metrics
}

// Registry returns the registry the collectors are registered with.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// ObserveCacheSize exports the current number of cached artwork entries.
func (m *Metrics) ObserveCacheSize(size func() int) {
	m.registry.MustRegister(prometheus.NewGaugeFunc(
		prometheus.GaugeOpts{
			Name: "coverart_artwork_cache_entries",
			Help: "Current number of cached artwork URLs",
		},
		func() float64 { return float64(size()) },
	))
}

func (m *Metrics) RecordCacheHit() {
	m.CacheHitsTotal.Inc()
}

func (m *Metrics) RecordCacheMiss() {
	m.CacheMissesTotal.Inc()
}

func (m *Metrics) RecordFetch(status string, duration time.Duration) {
	m.FetchesTotal.WithLabelValues(status).Inc()
	m.FetchDuration.WithLabelValues(status).Observe(duration.Seconds())
}

func (m *Metrics) RecordRequest(route, code string) {
	m.RequestsTotal.WithLabelValues(route, code).Inc()
}

func (m *Metrics) RecordMissingArtwork() {
	m.ReleaseArtworkMissing.Inc()
}
