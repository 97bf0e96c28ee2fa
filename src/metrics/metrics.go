package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// TicketsIssued The total number of issued tickets (counter)
	TicketsIssued = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "tickets",
			Name:      "issued_total",
			Help:      "The total number of issued tickets",
		},
	)

	// VerificationResults The total number of verifications by result status (counter)
	VerificationResults = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "admissions",
			Name:      "verifications_total",
			Help:      "The total number of ticket verifications by result status",
		},
		[]string{"status"},
	)

	// DeliveriesScheduled The total number of scheduled ticket deliveries (counter)
	DeliveriesScheduled = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "deliveries",
			Name:      "scheduled_total",
			Help:      "The total number of scheduled ticket deliveries",
		},
	)

	// DeliveriesCompleted The total number of finished deliveries by outcome (counter)
	DeliveriesCompleted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "deliveries",
			Name:      "completed_total",
			Help:      "The total number of finished ticket deliveries",
		},
		[]string{"status", "notifier"},
	)

	// DeliveryDuration Time spent in the notifier per delivery (summary with quantiles 0.5, 0.9, and 0.99)
	DeliveryDuration = promauto.NewSummaryVec(
		prometheus.SummaryOpts{
			Namespace:  "deliveries",
			Name:       "send_duration_seconds",
			Help:       "The time spent sending ticket deliveries",
			Objectives: map[float64]float64{0.5: 0.05, 0.9: 0.01, 0.99: 0.001},
		},
		[]string{"notifier"},
	)
)
