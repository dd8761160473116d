// Package metrics defines and registers all custom Prometheus metrics for the
// attendance kiosk. It is the single source of truth for metric names,
// labels, and help strings.
//
// Collectors register with the default Prometheus registry on package init;
// the control API exposes them on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "attendance_kiosk"

// ── Session metrics ───────────────────────────────────────────────────────────

// LoginsTotal counts login attempts that reached a verdict.
// Label:
//   - outcome: "success", "validation", "no_token", "rejected", "network"
var LoginsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "logins_total",
		Help:      "Total number of login attempts, by outcome.",
	},
	[]string{"outcome"},
)

// LogoutsTotal counts logouts.
// Label:
//   - reason: "user" or "session_invalid"
var LogoutsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "logouts_total",
		Help:      "Total number of logouts, by reason.",
	},
	[]string{"reason"},
)

// ── Attempt metrics ───────────────────────────────────────────────────────────

// ScansTotal counts scanning sessions by how they ended.
// Labels:
//   - direction: "check-in" or "check-out"
//   - outcome: "accepted", "rejected", "cancelled", "capability_error"
var ScansTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "scans_total",
		Help:      "Total number of scanning sessions, by direction and outcome.",
	},
	[]string{"direction", "outcome"},
)

// LocationFailuresTotal counts failed location acquisitions.
// Label:
//   - reason: "timeout", "denied", "unavailable", "other"
var LocationFailuresTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "location_failures_total",
		Help:      "Total number of failed location acquisitions, by reason.",
	},
	[]string{"reason"},
)

// SubmissionsTotal counts attendance submissions.
// Labels:
//   - direction: "check-in" or "check-out"
//   - outcome: "success", "rejected", "network", "session_invalid"
var SubmissionsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "submissions_total",
		Help:      "Total number of attendance submissions, by direction and outcome.",
	},
	[]string{"direction", "outcome"},
)

// SubmissionDuration measures the remote check-in/check-out round trip.
// Label:
//   - direction: "check-in" or "check-out"
var SubmissionDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "submission_duration_seconds",
		Help:      "Duration of the remote attendance submission call.",
		Buckets:   prometheus.DefBuckets,
	},
	[]string{"direction"},
)

// ── State machine metrics ─────────────────────────────────────────────────────

// TransitionsTotal counts workflow state transitions.
// Labels:
//   - from, to: workflow state names
var TransitionsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "state_transitions_total",
		Help:      "Total number of workflow state transitions.",
	},
	[]string{"from", "to"},
)

// SSESubscribers tracks the number of connected display streams.
var SSESubscribers = promauto.NewGauge(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "display_subscribers",
		Help:      "Current number of connected display event streams.",
	},
)
