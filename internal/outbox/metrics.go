package outbox

import "github.com/prometheus/client_golang/prometheus"

var (
	publishedCounter = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "habit_service",
		Subsystem: "events",
		Name:      "published_total",
		Help:      "Number of habit events successfully written to Kafka.",
	}, []string{"event_type"})

	publishFailedCounter = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "habit_service",
		Subsystem: "events",
		Name:      "publish_failed_total",
		Help:      "Number of habit events that could not be written to Kafka.",
	}, []string{"event_type"})
)

func init() {
	prometheus.MustRegister(publishedCounter, publishFailedCounter)
}
