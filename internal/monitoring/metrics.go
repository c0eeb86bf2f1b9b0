package monitoring

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "eventmarket_http_requests_total",
			Help: "HTTP requests by route and status",
		},
		[]string{"method", "route", "status"},
	)

	HTTPDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "eventmarket_http_request_duration_seconds",
			Help:    "HTTP request latency",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)

	BannerPipelineDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "eventmarket_banner_pipeline_duration_seconds",
			Help:    "Time spent processing an uploaded banner",
			Buckets: []float64{0.1, 0.25, 0.5, 1, 2, 5, 10},
		},
	)

	BannerPipelineFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "eventmarket_banner_pipeline_failures_total",
			Help: "Banner pipeline failures by stage",
		},
		[]string{"stage"},
	)

	PaystackCalls = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "eventmarket_paystack_calls_total",
			Help: "Paystack API calls by operation and status",
		},
		[]string{"operation", "status"},
	)

	PaystackDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "eventmarket_paystack_call_duration_seconds",
			Help:    "Paystack API latency",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation"},
	)

	RecipientLinkJobs = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "eventmarket_recipient_link_jobs_total",
			Help: "Background recipient link attempts by outcome",
		},
		[]string{"outcome"},
	)

	OrphanedObjects = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "eventmarket_orphaned_objects_total",
			Help: "Storage objects that could not be deleted inline",
		},
	)

	StaleUploadsRemoved = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "eventmarket_stale_uploads_removed_total",
			Help: "Raw uploads removed by the cleanup worker",
		},
	)
)

// ObservePaystack matches paystack.Observer.
func ObservePaystack(operation string, status int, duration time.Duration) {
	label := "error"
	if status > 0 {
		label = strconv.Itoa(status)
	}
	PaystackCalls.WithLabelValues(operation, label).Inc()
	PaystackDuration.WithLabelValues(operation).Observe(duration.Seconds())
}
