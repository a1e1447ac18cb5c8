package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTP request metrics
	HttpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status_code", "service"},
	)

	HttpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "service"},
	)

	// Job lifecycle metrics
	JobsSubmittedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "velocity_jobs_submitted_total",
			Help: "Total number of analysis jobs accepted",
		},
	)

	JobsFinishedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "velocity_jobs_finished_total",
			Help: "Total number of analysis jobs reaching a terminal status",
		},
		[]string{"status"},
	)

	JobsInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "velocity_jobs_in_flight",
			Help: "Number of analysis jobs currently processing",
		},
	)

	JobsReapedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "velocity_jobs_reaped_total",
			Help: "Total number of expired jobs removed by the reaper",
		},
	)

	// Upstream collaborator metrics
	ScrapeAttemptsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "velocity_scrape_attempts_total",
			Help: "Total number of scraping agent attempts by outcome",
		},
		[]string{"outcome"},
	)

	ClassifierRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "velocity_classifier_requests_total",
			Help: "Total number of classifier calls by outcome",
		},
		[]string{"outcome"},
	)
)
