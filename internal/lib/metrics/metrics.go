// Package metrics declares the Prometheus collectors exported on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "sovyx"

var (
	GraphRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "graph",
			Name:      "requests_total",
			Help:      "Outbound Graph API requests by operation and response status",
		},
		[]string{"operation", "method", "status"},
	)

	GraphDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "graph",
			Name:      "request_duration_seconds",
			Help:      "Latency of outbound Graph API requests",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"operation"},
	)

	Publications = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "instagram",
			Name:      "publications_total",
			Help:      "Publish attempts by tenant, media type and outcome",
		},
		[]string{"client", "media_type", "status"},
	)

	TokenRefreshes = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "instagram",
			Name:      "token_refreshes_total",
			Help:      "Token refresh attempts by tenant and outcome",
		},
		[]string{"client", "status"},
	)

	RateLimited = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "rate_limited_total",
			Help:      "Requests rejected by the rate limiter",
		},
		[]string{"path"},
	)

	UploadsStored = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "uploads",
			Name:      "stored_total",
			Help:      "Files accepted into the upload cache by kind",
		},
		[]string{"kind"},
	)

	UploadBytes = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "uploads",
			Name:      "size_bytes",
			Help:      "Size of accepted uploads",
			Buckets:   prometheus.ExponentialBuckets(64<<10, 4, 8),
		},
	)

	JobsProcessed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "jobs",
			Name:      "processed_total",
			Help:      "Background tasks processed by type and outcome",
		},
		[]string{"task", "status"},
	)
)
