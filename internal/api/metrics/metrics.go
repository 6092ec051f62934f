// Package metrics defines and registers all custom Prometheus metrics for the
// console. It is the single source of truth for metric names, labels, and
// help strings. Metrics register with the default registry at package init.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "console"

// ── Fetch metrics ─────────────────────────────────────────────────────────────

// FetchResolvedTotal counts resolved views.
// Labels:
//   - view: catalog view name (e.g. "companies")
//   - source: "realtime" or "fallback"
var FetchResolvedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "fetch_resolved_total",
		Help:      "Total number of views resolved, by winning channel.",
	},
	[]string{"view", "source"},
)

// FetchDuration measures mount-to-resolution time.
var FetchDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "fetch_duration_seconds",
		Help:      "Time from view mount to resolution.",
		Buckets:   []float64{.025, .05, .1, .25, .5, 1, 2, 3, 4, 6, 10},
	},
	[]string{"view", "source"},
)

// RealtimeErrorsTotal counts realtime failures that left a view waiting for
// its fallback.
// Label:
//   - stage: connect, announce, request or decode
var RealtimeErrorsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "realtime_errors_total",
		Help:      "Total number of realtime failures, by view and stage.",
	},
	[]string{"view", "stage"},
)

// ── Session metrics ───────────────────────────────────────────────────────────

// GuardDecisionsTotal counts route guard outcomes.
// Label:
//   - outcome: admit, redirect_login or redirect_landing
var GuardDecisionsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "guard_decisions_total",
		Help:      "Total number of route guard decisions, by outcome.",
	},
	[]string{"outcome"},
)

// SessionDecryptFailuresTotal counts persisted entries that could not be opened.
var SessionDecryptFailuresTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "session_decrypt_failures_total",
		Help:      "Total number of session entries discarded as unreadable.",
	},
	[]string{"key"},
)

// Recorder implements ports.Observer on the collectors above.
type Recorder struct{}

func (Recorder) FetchResolved(view, source string, elapsed time.Duration) {
	FetchResolvedTotal.WithLabelValues(view, source).Inc()
	FetchDuration.WithLabelValues(view, source).Observe(elapsed.Seconds())
}

func (Recorder) RealtimeError(view, stage string) {
	RealtimeErrorsTotal.WithLabelValues(view, stage).Inc()
}

func (Recorder) GuardDecision(outcome string) {
	GuardDecisionsTotal.WithLabelValues(outcome).Inc()
}

func (Recorder) DecryptFailure(key string) {
	SessionDecryptFailuresTotal.WithLabelValues(key).Inc()
}
