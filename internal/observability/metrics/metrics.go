package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	apiRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "staffdesk_api_requests_total",
		Help: "Total number of outbound API requests",
	}, []string{"operation", "result"})

	apiRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "staffdesk_api_request_duration_seconds",
		Help:    "Duration of outbound API requests",
		Buckets: prometheus.DefBuckets,
	}, []string{"operation", "result"})

	loginAttempts = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "staffdesk_login_attempts_total",
		Help: "Count of login attempts by result",
	}, []string{"result"})

	pageReloads = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "staffdesk_directory_reloads_total",
		Help: "Count of directory page reloads by trigger",
	}, []string{"trigger"})

	staleResponses = promauto.NewCounter(prometheus.CounterOpts{
		Name: "staffdesk_stale_responses_dropped_total",
		Help: "Count of page responses discarded because a newer request superseded them",
	})
)

// ObserveAPIRequest records one outbound API call with its result
// label (success, rejected, transport_error).
func ObserveAPIRequest(operation, result string, duration time.Duration) {
	apiRequestsTotal.WithLabelValues(operation, result).Inc()
	apiRequestDuration.WithLabelValues(operation, result).Observe(duration.Seconds())
}

// ObserveLogin records a login attempt result.
func ObserveLogin(result string) {
	loginAttempts.WithLabelValues(result).Inc()
}

// ObservePageReload records a directory reload and what triggered it
// (navigation, create, update, delete).
func ObservePageReload(trigger string) {
	pageReloads.WithLabelValues(trigger).Inc()
}

// ObserveStaleResponse records a discarded superseded page response.
func ObserveStaleResponse() {
	staleResponses.Inc()
}
