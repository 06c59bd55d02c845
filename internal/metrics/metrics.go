// Package metrics holds the Prometheus collectors for login and provider traffic.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "cfuaa"

// Login outcomes.
const (
	OutcomeSuccess         = "success"
	OutcomeInvalidState    = "invalid_state"
	OutcomeNoSession       = "no_session"
	OutcomeProviderError   = "provider_error"
	OutcomeMissingCode     = "missing_code"
	OutcomeCompletionError = "completion_error"
)

var (
	// LoginsStarted counts authorization redirects issued.
	LoginsStarted = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "logins_started_total",
		Help:      "Authorization requests redirected to the login server.",
	})

	// LoginsFinished counts callbacks by outcome.
	LoginsFinished = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "logins_finished_total",
		Help:      "OAuth callbacks handled, by outcome.",
	}, []string{"outcome"})

	// ProviderRequests counts calls to UAA and the cloud controller.
	ProviderRequests = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "provider_requests_total",
		Help:      "Requests to UAA and the cloud controller, by operation and status.",
	}, []string{"operation", "status"})

	// ProviderDuration observes provider round-trip latency.
	ProviderDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "provider_request_duration_seconds",
		Help:      "Latency of requests to UAA and the cloud controller.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"operation"})

	// TruncatedListings counts organization listings that had more than one page.
	TruncatedListings = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "organization_listings_truncated_total",
		Help:      "Organization listings where only the first of several pages was used.",
	})

	// HTTPRequests counts requests served by the host web layer.
	HTTPRequests = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "http_requests_total",
		Help:      "HTTP requests served, by route and status.",
	}, []string{"route", "status"})
)

// NewRegistry returns a registry with every cfuaa collector plus the Go and
// process collectors.
func NewRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	Register(reg)
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return reg
}

// Register adds the cfuaa collectors to reg.
func Register(reg prometheus.Registerer) {
	reg.MustRegister(
		LoginsStarted,
		LoginsFinished,
		ProviderRequests,
		ProviderDuration,
		TruncatedListings,
		HTTPRequests,
	)
}

// Handler exposes reg in the Prometheus text format.
func Handler(reg *prometheus.Registry) http.Handler {
	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg})
}

// ObserveProvider records one provider round trip. status is the HTTP status
// code, or 0 when no response was received.
func ObserveProvider(operation string, status int, elapsed time.Duration) {
	label := "error"
	if status > 0 {
		label = strconv.Itoa(status)
	}
	ProviderRequests.WithLabelValues(operation, label).Inc()
	ProviderDuration.WithLabelValues(operation).Observe(elapsed.Seconds())
}
