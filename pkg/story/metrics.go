package story

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	conversionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "story_conversions_total",
			Help: "Story files converted, by where the body came from",
		},
		[]string{"source"},
	)

	conversionErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "story_conversion_errors_total",
			Help: "Story conversions that failed, by stage",
		},
		[]string{"stage"},
	)

	conversionDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "story_conversion_duration_seconds",
			Help:    "Time spent converting story files",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"mode"},
	)
)
