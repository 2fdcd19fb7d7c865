package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// EventsTotal counts processed ledger events by kind and audit outcome.
	EventsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "forum_events_total",
		Help: "Total number of ledger events processed",
	}, []string{"event", "outcome"})

	// EventDuration observes per-event processing time in seconds.
	EventDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "forum_event_duration_seconds",
		Help:    "Event processing time in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"event"})

	// ContentResolveFailures counts content hashes whose retry budget was
	// exhausted without a payload.
	ContentResolveFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "forum_content_resolve_failures_total",
		Help: "Total number of content resolutions that exhausted their retry budget",
	})

	// ContentShapeInvalid counts resolved payloads that did not parse as the
	// expected shape.
	ContentShapeInvalid = promauto.NewCounter(prometheus.CounterOpts{
		Name: "forum_content_shape_invalid_total",
		Help: "Total number of resolved payloads with an invalid shape",
	})
)

// Handler returns the HTTP handler serving the default Prometheus registry.
func Handler() http.Handler {
	return promhttp.Handler()
}
