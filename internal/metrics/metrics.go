package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	UpstreamRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "upstream_requests_total",
			Help: "Total number of requests sent to the verification backend",
		},
		[]string{"method", "outcome"},
	)

	UpstreamDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "upstream_request_duration_seconds",
			Help:    "Duration of requests to the verification backend in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method"},
	)

	FallbackReads = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fallback_reads_total",
			Help: "Reads served from a fallback source after an upstream failure",
		},
		[]string{"resource", "source"},
	)

	LifecycleRejections = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "lifecycle_rejections_total",
			Help: "Operations rejected before reaching the backend",
		},
		[]string{"action", "kind"},
	)

	EventsPublished = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "lifecycle_events_published_total",
			Help: "Lifecycle events published to NATS",
		},
		[]string{"subject", "outcome"},
	)
)
