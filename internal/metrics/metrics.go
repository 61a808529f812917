package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the marketplace collectors.
type Metrics struct {
	// Bid lifecycle
	BidTransitions *prometheus.CounterVec
	BidConflicts   prometheus.Counter

	// HTTP
	HTTPRequests *prometheus.CounterVec
	HTTPDuration *prometheus.HistogramVec
}

// New registers the collectors on reg. Pass prometheus.DefaultRegisterer in
// the server and a fresh registry in tests.
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		BidTransitions: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "bid_transitions_total",
				Help: "Persisted bid lifecycle actions by resulting status",
			},
			[]string{"action", "status"},
		),
		BidConflicts: f.NewCounter(
			prometheus.CounterOpts{
				Name: "bid_write_conflicts_total",
				Help: "Bid writes retried because another writer changed the bid first",
			},
		),
		HTTPRequests: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "HTTP requests by method, route and status code",
			},
			[]string{"method", "route", "status"},
		),
		HTTPDuration: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "HTTP request latency",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "route"},
		),
	}
}
