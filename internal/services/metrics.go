package services

import "github.com/prometheus/client_golang/prometheus"

var (
	// matchCandidates observes how many providers each new order reached.
	matchCandidates = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "match_candidates",
			Help:    "Providers notified per matched order.",
			Buckets: []float64{0, 1, 2, 5, 10, 20, 30},
		},
	)

	// webhookEvents counts processor webhook events by type and result
	// ("processed", "ignored", "duplicate", "rejected", "error").
	webhookEvents = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "webhook_events_total",
			Help: "Payment processor webhook events by type and result.",
		},
		[]string{"type", "result"},
	)
)

func init() {
	prometheus.MustRegister(matchCandidates, webhookEvents)
}
