// Package metrics defines the Prometheus instrumentation for the event
// bus. The /metrics endpoint is registered by the HTTP router.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// EventBusMetrics contains Prometheus metrics for the Redis event bus.
type EventBusMetrics struct {
	EventsPublished *prometheus.CounterVec
	EventsHandled   *prometheus.CounterVec
	HandlerRetries  *prometheus.CounterVec
	HandleDuration  *prometheus.HistogramVec
	DeadLettered    *prometheus.CounterVec
}

// NewEventBusMetrics creates and registers event bus metrics with the
// given registerer.
func NewEventBusMetrics(registerer prometheus.Registerer) *EventBusMetrics {
	m := &EventBusMetrics{
		EventsPublished: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "gigwork_eventbus_events_published_total",
				Help: "Total number of events published to the bus",
			},
			[]string{"event_type"},
		),
		EventsHandled: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "gigwork_eventbus_events_handled_total",
				Help: "Total number of handled events",
			},
			[]string{"event_type", "status"}, // status: success/failed
		),
		HandlerRetries: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "gigwork_eventbus_handler_retries_total",
				Help: "Total number of handler retry attempts",
			},
			[]string{"event_type"},
		),
		HandleDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "gigwork_eventbus_handle_duration_seconds",
				Help:    "Time spent handling an event, retries included",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"event_type"},
		),
		DeadLettered: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "gigwork_eventbus_dead_lettered_total",
				Help: "Total number of events recorded in the dead letter list",
			},
			[]string{"event_type"},
		),
	}

	registerer.MustRegister(
		m.EventsPublished,
		m.EventsHandled,
		m.HandlerRetries,
		m.HandleDuration,
		m.DeadLettered,
	)

	return m
}
