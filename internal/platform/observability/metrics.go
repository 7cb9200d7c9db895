package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	LinksDetected = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "embedfixer_links_detected_total",
		Help: "The total number of recognized platform links seen in messages",
	}, []string{"platform"})

	MirrorAttempts = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "embedfixer_mirror_attempts_total",
		Help: "The total number of mirror-domain embed attempts by outcome",
	}, []string{"platform", "outcome"})

	Resolutions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "embedfixer_resolutions_total",
		Help: "The total number of fallback resolver runs by status",
	}, []string{"platform", "status"})

	DispatchFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "embedfixer_dispatch_failures_total",
		Help: "The total number of final replies rejected by the chat platform",
	})

	EmbedWaitDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "embedfixer_embed_wait_duration_seconds",
		Help:    "Time spent waiting for the platform to render a mirror embed",
		Buckets: []float64{0.5, 1, 2, 3, 5, 7.5, 10, 15},
	})
)
