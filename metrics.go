package orbit

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	searchesTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "orbit_soi_searches_total",
			Help: "Total number of SOI entry searches run.",
		},
	)

	crossingsFoundTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "orbit_soi_crossings_found_total",
			Help: "Total number of searches that located an SOI entry.",
		},
	)

	undefinedSamplesTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "orbit_undefined_samples_total",
			Help: "Coarse samples skipped because propagation degenerated.",
		},
	)

	bisectionIterations = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "orbit_bisection_iterations",
			Help:    "Refinement iterations spent per located crossing.",
			Buckets: prometheus.LinearBuckets(2, 2, 10),
		},
	)
)

func init() {
	prometheus.MustRegister(searchesTotal)
	prometheus.MustRegister(crossingsFoundTotal)
	prometheus.MustRegister(undefinedSamplesTotal)
	prometheus.MustRegister(bisectionIterations)
}

// MetricsHandler returns the Prometheus metrics HTTP handler for callers
// embedding the search in a service.
func MetricsHandler() http.Handler {
	return promhttp.Handler()
}
