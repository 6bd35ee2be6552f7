package detect

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// OpportunitiesDetectedTotal tracks detected opportunities by rule type.
	OpportunitiesDetectedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "arb_monitor_opportunities_detected_total",
			Help: "Total number of arbitrage opportunities detected",
		},
		[]string{"type"},
	)

	// DuplicatesDroppedTotal tracks candidates dropped by the aggregator.
	DuplicatesDroppedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "arb_monitor_opportunity_duplicates_dropped_total",
		Help: "Total number of duplicate opportunity candidates dropped during aggregation",
	})

	// FlaggedMarkets tracks the size of the flagged-markets set.
	FlaggedMarkets = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "arb_monitor_flagged_markets",
		Help: "Number of markets currently flagged for orderbook-level checks",
	})

	// DetectionDurationSeconds tracks full detection pass latency.
	DetectionDurationSeconds = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "arb_monitor_detection_duration_seconds",
		Help:    "Duration of a full detection pass",
		Buckets: prometheus.DefBuckets,
	})

	// OpportunityProfit tracks profit estimates by rule type.
	OpportunityProfit = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "arb_monitor_opportunity_profit",
			Help:    "Fractional profit estimate of detected opportunities",
			Buckets: []float64{0.01, 0.02, 0.05, 0.10, 0.20, 0.50},
		},
		[]string{"type"},
	)
)
