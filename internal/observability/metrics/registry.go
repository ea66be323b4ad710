// Package metrics provides the Prometheus metrics for the dispatcher.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Dispatch metrics
var (
	// DispatchTotal counts Send* calls by channel and final status
	DispatchTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "wa_dispatch_total",
			Help: "Total number of dispatch calls",
		},
		[]string{"channel", "status"},
	)

	// DispatchDuration measures a whole Send* call, retries included
	DispatchDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "wa_dispatch_duration_seconds",
			Help:    "Dispatch call duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"channel"},
	)

	// AttemptsTotal counts provider adapter calls by provider and result
	AttemptsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "wa_provider_attempts_total",
			Help: "Total number of provider attempts",
		},
		[]string{"provider", "result"},
	)

	// DeliveryLogErrors counts delivery log writes that failed
	DeliveryLogErrors = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "wa_delivery_log_errors_total",
			Help: "Total number of failed delivery log writes",
		},
	)
)

// Queue metrics
var (
	// QueueMessagesTotal counts consumed queue messages by result
	QueueMessagesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "wa_queue_messages_total",
			Help: "Total number of consumed send requests",
		},
		[]string{"result"},
	)
)

// RecordDispatch records a finished dispatch call.
func RecordDispatch(channel, status string, duration time.Duration) {
	DispatchTotal.WithLabelValues(channel, status).Inc()
	DispatchDuration.WithLabelValues(channel).Observe(duration.Seconds())
}

// RecordAttempt records one provider attempt.
func RecordAttempt(provider string, ok bool) {
	result := "failed"
	if ok {
		result = "sent"
	}
	AttemptsTotal.WithLabelValues(provider, result).Inc()
}
