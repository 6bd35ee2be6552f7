package notify

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// DeliveriesTotal tracks successful deliveries, by sink.
	DeliveriesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "arb_monitor_notify_deliveries_total",
		Help: "Total number of opportunity notifications delivered, by sink",
	}, []string{"sink"})

	// DeliveryErrorsTotal tracks failed deliveries, by sink.
	DeliveryErrorsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "arb_monitor_notify_errors_total",
		Help: "Total number of failed notification deliveries, by sink",
	}, []string{"sink"})
)
