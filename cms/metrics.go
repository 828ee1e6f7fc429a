package cms

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	requestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cms_requests_total",
			Help: "Requests sent to the content API by operation and status",
		},
		[]string{"op", "status"},
	)

	requestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "cms_request_duration_seconds",
			Help:    "Latency of content API requests",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"op"},
	)
)
