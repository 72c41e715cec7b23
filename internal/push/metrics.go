package push

import "github.com/prometheus/client_golang/prometheus"

var (
	// pushMessages counts per-token delivery outcomes ("success", "failure",
	// "batch_error").
	pushMessages = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "push_messages_total",
			Help: "Push deliveries by outcome.",
		},
		[]string{"outcome"},
	)

	// pushRetired counts endpoints removed after a dead-token failure.
	pushRetired = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "push_endpoints_retired_total",
			Help: "Push endpoints retired after a not-registered or invalid-token failure.",
		},
	)
)

func init() {
	prometheus.MustRegister(pushMessages, pushRetired)
}
