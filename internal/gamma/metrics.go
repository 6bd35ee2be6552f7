package gamma

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// MarketsFetchedTotal tracks markets returned by the Gamma API.
	MarketsFetchedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "arb_monitor_markets_fetched_total",
		Help: "Total number of markets fetched from the Gamma API",
	})

	// FetchErrorsTotal tracks failed fetches by endpoint.
	FetchErrorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "arb_monitor_fetch_errors_total",
			Help: "Total number of failed API fetches",
		},
		[]string{"endpoint"},
	)

	// RequestDurationSeconds tracks API request latency.
	RequestDurationSeconds = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "arb_monitor_api_request_duration_seconds",
		Help:    "Duration of Gamma/CLOB API requests",
		Buckets: prometheus.DefBuckets,
	})
)
