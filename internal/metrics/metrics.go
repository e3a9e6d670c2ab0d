package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the service collectors. A nil *Metrics is a valid no-op.
type Metrics struct {
	cacheRequests    *prometheus.CounterVec
	catalogRequests  *prometheus.CounterVec
	favoritesCreated prometheus.Counter
	httpRequests     *prometheus.CounterVec
	httpLatency      *prometheus.HistogramVec
}

const (
	CacheHit   = "hit"
	CacheMiss  = "miss"
	CacheError = "error"

	CatalogFound       = "found"
	CatalogNotFound    = "not_found"
	CatalogUnavailable = "unavailable"
)

// New creates the collectors and registers them on reg
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		cacheRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "favorites_product_cache_requests_total",
				Help: "Product cache lookups by result",
			},
			[]string{"result"},
		),
		catalogRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "favorites_catalog_requests_total",
				Help: "Catalog product fetches by outcome",
			},
			[]string{"outcome"},
		),
		favoritesCreated: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "favorites_created_total",
				Help: "Favorites persisted by the ingestion workflow",
			},
		),
		httpRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "favorites_http_requests_total",
				Help: "HTTP requests by method, route and status",
			},
			[]string{"method", "route", "status"},
		),
		httpLatency: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "favorites_http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "route"},
		),
	}

	reg.MustRegister(
		m.cacheRequests,
		m.catalogRequests,
		m.favoritesCreated,
		m.httpRequests,
		m.httpLatency,
	)
	return m
}

func (m *Metrics) CacheResult(result string) {
	if m == nil {
		return
	}
	m.cacheRequests.WithLabelValues(result).Inc()
}

func (m *Metrics) CatalogOutcome(outcome string) {
	if m == nil {
		return
	}
	m.catalogRequests.WithLabelValues(outcome).Inc()
}

func (m *Metrics) FavoritesCreated(n int) {
	if m == nil || n <= 0 {
		return
	}
	m.favoritesCreated.Add(float64(n))
}

func (m *Metrics) ObserveHTTP(method, route, status string, seconds float64) {
	if m == nil {
		return
	}
	m.httpRequests.WithLabelValues(method, route, status).Inc()
	m.httpLatency.WithLabelValues(method, route).Observe(seconds)
}
