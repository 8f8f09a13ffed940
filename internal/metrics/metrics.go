package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	UploadsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "semla_uploads_total",
			Help: "Submission uploads by outcome",
		},
		[]string{"outcome"},
	)

	GradesTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "semla_grades_total",
			Help: "Number of submissions graded",
		},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "semla_api_request_duration_seconds",
			Help:    "API request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"endpoint", "method"},
	)

	AuthFailuresTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "semla_auth_failures_total",
			Help: "Requests rejected with an invalid or missing session",
		},
	)
)
