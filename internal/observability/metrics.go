// Package observability holds the Prometheus collectors shared by the habit service.
package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	completionCounter = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "habit_service",
		Subsystem: "streaks",
		Name:      "completions_total",
		Help:      "Completion requests for existing habits, labeled by streak outcome.",
	}, []string{"outcome"})

	lastCompletionGauge = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "habit_service",
		Subsystem: "streaks",
		Name:      "last_completion_written_timestamp_seconds",
		Help:      "Unix timestamp of the most recent completion written to the habit store.",
	})

	storeErrorCounter = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "habit_service",
		Subsystem: "store",
		Name:      "errors_total",
		Help:      "Habit store failures, labeled by operation.",
	}, []string{"operation"})
)

func init() {
	prometheus.MustRegister(completionCounter, lastCompletionGauge, storeErrorCounter)
}

// RecordCompletion counts a completion by its outcome.
func RecordCompletion(outcome string) {
	completionCounter.WithLabelValues(outcome).Inc()
}

// RecordCompletionWritten updates the completion watermark gauge.
func RecordCompletionWritten(ts time.Time) {
	if ts.IsZero() {
		return
	}
	lastCompletionGauge.Set(float64(ts.Unix()))
}

// RecordStoreError counts a failed store operation.
func RecordStoreError(operation string) {
	storeErrorCounter.WithLabelValues(operation).Inc()
}

// CompletionCounter exposes the completion counter for the given outcome.
func CompletionCounter(outcome string) prometheus.Counter {
	return completionCounter.WithLabelValues(outcome)
}
