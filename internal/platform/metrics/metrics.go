package metrics

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "family_bank"

var (
	// Registry holds the application-specific Prometheus collectors.
	Registry = prometheus.NewRegistry()

	httpInFlight = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "inflight_requests",
			Help:      "Current number of in-flight HTTP requests.",
		},
	)

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests handled.",
		},
		[]string{"method", "route", "status"},
	)

	httpDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Duration of HTTP requests.",
			Buckets:   prometheus.ExponentialBuckets(0.005, 2, 10), // 5ms to ~5s
		},
		[]string{"method", "route"},
	)

	ledgerAdjustments = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "ledger",
			Name:      "adjustments_total",
			Help:      "Balance adjustments by entry kind and outcome.",
		},
		[]string{"kind", "outcome"},
	)

	interestRuns = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "interest",
			Name:      "runs_total",
			Help:      "Interest runs by final state.",
		},
		[]string{"state"},
	)

	interestAccounts = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "interest",
			Name:      "accounts_total",
			Help:      "Child accounts processed by interest runs, by outcome.",
		},
		[]string{"outcome"},
	)

	interestDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "interest",
			Name:      "run_duration_seconds",
			Help:      "Duration of interest runs.",
			Buckets:   prometheus.ExponentialBuckets(0.01, 2, 14),
		},
	)

	keySetFetches = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "auth",
			Name:      "keyset_fetches_total",
			Help:      "Signing key set fetches by outcome.",
		},
		[]string{"outcome"},
	)
)

func init() {
	Registry.MustRegister(
		httpInFlight,
		httpRequests,
		httpDuration,
		ledgerAdjustments,
		interestRuns,
		interestAccounts,
		interestDuration,
		keySetFetches,
		prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}),
		prometheus.NewGoCollector(),
	)
}

// Handler returns an HTTP handler exposing the registered Prometheus metrics.
func Handler() http.Handler {
	return promhttp.HandlerFor(Registry, promhttp.HandlerOpts{})
}

// TrackInFlight increments the in-flight gauge and returns the matching decrement.
func TrackInFlight() func() {
	httpInFlight.Inc()
	return httpInFlight.Dec
}

// RecordHTTPRequest records one handled request. route is the matched route template.
func RecordHTTPRequest(method, route string, status int, duration time.Duration) {
	if route == "" {
		route = "unmatched"
	}
	method = strings.ToUpper(method)
	httpRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	httpDuration.WithLabelValues(method, route).Observe(duration.Seconds())
}

// RecordAdjustment records the outcome of one balance adjustment.
func RecordAdjustment(kind, outcome string) {
	ledgerAdjustments.WithLabelValues(kind, outcome).Inc()
}

// RecordInterestRun records the result of one interest run.
func RecordInterestRun(state string, applied, skipped, failed int, duration time.Duration) {
	interestRuns.WithLabelValues(state).Inc()
	interestAccounts.WithLabelValues("applied").Add(float64(applied))
	interestAccounts.WithLabelValues("skipped").Add(float64(skipped))
	interestAccounts.WithLabelValues("failed").Add(float64(failed))
	interestDuration.Observe(duration.Seconds())
}

// RecordKeySetFetch records one signing key set fetch.
func RecordKeySetFetch(success bool) {
	outcome := "success"
	if !success {
		outcome = "failure"
	}
	keySetFetches.WithLabelValues(outcome).Inc()
}
