// Package metrics defines and registers all custom Prometheus metrics for the
// destiny matrix gateway. It is the single source of truth for metric names,
// labels, and help strings.
//
// Metrics are registered with the default Prometheus registry on import via
// promauto; HTTP request metrics come from the echoprometheus middleware.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "destiny"

// ── Pipeline metrics ──────────────────────────────────────────────────────────

// StageFailuresTotal counts requests stopped by a pipeline stage.
// Labels:
//   - stage: the stage name (e.g. "auth", "rate_limit", "order")
//   - status: the HTTP status returned to the caller
var StageFailuresTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "pipeline_stage_failures_total",
		Help:      "Total number of requests rejected by a pipeline stage.",
	},
	[]string{"stage", "status"},
)

// RemoteCallDuration measures calls to the platform and the AI model.
// Labels:
//   - target: "user", "catalog", "order" or "gemini"
//   - outcome: "ok", "rejected" or "error"
var RemoteCallDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "remote_call_duration_seconds",
		Help:      "Duration of outbound calls, by target and outcome.",
		Buckets:   prometheus.DefBuckets, // .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10
	},
	[]string{"target", "outcome"},
)

// OrdersCreatedTotal counts billable orders placed on the platform.
var OrdersCreatedTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "orders_created_total",
		Help:      "Total number of orders created on the platform.",
	},
)

// ── Analysis metrics ──────────────────────────────────────────────────────────

// AnalysesTotal counts analyses by prompt type and outcome.
// Labels:
//   - type: "personal", "compatibility" or "generic"
//   - outcome: "ok", "degraded" or "error"
var AnalysesTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "analyses_total",
		Help:      "Total number of matrix analyses, by type and outcome.",
	},
	[]string{"type", "outcome"},
)

// ── Journal metrics ───────────────────────────────────────────────────────────

// JournalQueueDepth tracks the number of records waiting in each journal worker channel.
// Label:
//   - worker_id: numeric worker index (e.g. "0", "1", …)
var JournalQueueDepth = promauto.NewGaugeVec(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "journal_queue_depth",
		Help:      "Current number of analysis records pending in each journal worker channel.",
	},
	[]string{"worker_id"},
)

// JournalErrorsTotal counts journal records that were not persisted.
// Label:
//   - reason: "queue_full" or "insert_failed"
var JournalErrorsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "journal_errors_total",
		Help:      "Total number of analysis records dropped or not persisted.",
	},
	[]string{"reason"},
)
