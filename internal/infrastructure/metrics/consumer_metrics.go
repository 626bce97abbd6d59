package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// ConsumerMetrics contains Prometheus metrics for the consumer-side apply
// pipeline.
type ConsumerMetrics struct {
	MessagesApplied  *prometheus.CounterVec
	ApplyDuration    *prometheus.HistogramVec
	DeadLettersTotal *prometheus.CounterVec
}

// NewConsumerMetrics creates and registers consumer metrics with the given registerer.
func NewConsumerMetrics(registerer prometheus.Registerer) *ConsumerMetrics {
	metrics := &ConsumerMetrics{
		MessagesApplied: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "themery_consumer_messages_applied_total",
				Help: "Total number of applied deliveries",
			},
			[]string{"topic", "status"}, // status: success/failed
		),
		ApplyDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "themery_consumer_apply_duration_seconds",
				Help:    "Time to apply a delivery to the projection store",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"topic"},
		),
		DeadLettersTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "themery_consumer_dead_letters_total",
				Help: "Total number of deliveries moved to the dead letter queue",
			},
			[]string{"topic"},
		),
	}

	registerer.MustRegister(
		metrics.MessagesApplied,
		metrics.ApplyDuration,
		metrics.DeadLettersTotal,
	)

	return metrics
}
