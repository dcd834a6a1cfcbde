package telemetry

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	// ReviewsTotal counts review submissions by outcome and location source
	ReviewsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "feedback",
			Name:      "reviews_total",
			Help:      "Total number of review submissions",
		},
		[]string{"outcome", "source"},
	)

	// GeolocateTotal counts geolocation lookups by whether edge headers were usable
	GeolocateTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "feedback",
			Name:      "geolocate_total",
			Help:      "Total number of geolocation lookups",
		},
		[]string{"result"},
	)

	// MatchesTotal counts nearest-store matches by location source
	MatchesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "feedback",
			Name:      "matches_total",
			Help:      "Total number of nearest-store matches",
		},
		[]string{"source"},
	)

	once sync.Once
)

// InitMetrics registers all metrics with the global Prometheus registry.
// Safe to call more than once.
func InitMetrics() {
	once.Do(func() {
		prometheus.MustRegister(ReviewsTotal, GeolocateTotal, MatchesTotal)
	})
}
