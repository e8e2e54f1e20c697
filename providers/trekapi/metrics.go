package trekapi

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	requestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "trek",
			Name:      "upstream_requests_total",
			Help:      "Requests sent to the trek API by method, endpoint and outcome.",
		},
		[]string{"method", "endpoint", "outcome"},
	)

	requestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "trek",
			Name:      "upstream_request_duration_seconds",
			Help:      "Latency of trek API requests.",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		},
		[]string{"method", "endpoint"},
	)

	// shapesTotal macht sichtbar, welche Antwortform die API liefert;
	// "unknown" unterscheidet eine kaputte Antwort von einer leeren Liste.
	shapesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "trek",
			Name:      "normalize_shapes_total",
			Help:      "Collection responses by detected shape.",
		},
		[]string{"collection", "shape"},
	)

	dayDecodesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "trek",
			Name:      "daylist_decode_total",
			Help:      "Trek day list decodes by terminal status.",
		},
		[]string{"status"},
	)
)
