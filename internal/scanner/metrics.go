package scanner

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// ScansTotal tracks completed scan cycles.
	ScansTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "arb_monitor_scans_total",
		Help: "Total number of completed scan cycles",
	})

	// ScanErrorsTotal tracks cycles that fetched no markets.
	ScanErrorsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "arb_monitor_scan_errors_total",
		Help: "Total number of scan cycles that fetched no markets",
	})

	// ScanDurationSeconds tracks full-cycle latency.
	ScanDurationSeconds = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "arb_monitor_scan_duration_seconds",
		Help:    "Duration of a full scan cycle",
		Buckets: prometheus.DefBuckets,
	})

	// NewOpportunitiesTotal tracks opportunities that survived the seen-set
	// filter, by rule type.
	NewOpportunitiesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "arb_monitor_new_opportunities_total",
		Help: "Total number of novel opportunities, by rule type",
	}, []string{"type"})

	// DuplicateOpportunitiesTotal tracks opportunities suppressed by the
	// seen-set.
	DuplicateOpportunitiesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "arb_monitor_duplicate_opportunities_total",
		Help: "Total number of opportunities suppressed as already seen",
	})

	// NotificationsSentTotal tracks successful sink deliveries.
	NotificationsSentTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "arb_monitor_notifications_sent_total",
		Help: "Total number of notifications delivered",
	})

	// NotificationErrorsTotal tracks failed sink deliveries.
	NotificationErrorsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "arb_monitor_notification_errors_total",
		Help: "Total number of notification delivery failures",
	})

	// SeenSetSize tracks the current seen-set cardinality.
	SeenSetSize = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "arb_monitor_seen_set_size",
		Help: "Current number of opportunity ids in the seen-set",
	})
)
