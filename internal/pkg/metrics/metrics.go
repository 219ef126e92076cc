// Package metrics defines and registers all custom Prometheus metrics for the
// marketplace API. It is the single source of truth for metric names, labels,
// and help strings.
//
// Metrics are registered with the default Prometheus registry on package
// initialisation via promauto.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "marketplace"

// ── Auth metrics ──────────────────────────────────────────────────────────────

// AuthAttemptsTotal counts credential operations.
// Labels:
//   - op: "register", "login" or "verify"
//   - result: "ok", "invalid", "exists", "throttled" or "error"
var AuthAttemptsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "auth_attempts_total",
		Help:      "Total number of register, login and token verification attempts.",
	},
	[]string{"op", "result"},
)

// ── Favorites metrics ─────────────────────────────────────────────────────────

// FavoritesOpsTotal counts favorite toggles.
// Labels:
//   - op: "add" or "remove"
//   - result: "changed", "noop" or "error"
var FavoritesOpsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "favorites_ops_total",
		Help:      "Total number of favorite add/remove operations, by outcome.",
	},
	[]string{"op", "result"},
)

// ── Admin metrics ─────────────────────────────────────────────────────────────

// AdminGuardTotal counts guarded identity mutations.
// Labels:
//   - op: "delete" or "set_role"
//   - result: "ok", "last_admin" or "error"
var AdminGuardTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "admin_guard_total",
		Help:      "Total number of guarded user deletions and role changes, by outcome.",
	},
	[]string{"op", "result"},
)

// ── Audit metrics ─────────────────────────────────────────────────────────────

// AuditEventsTotal counts audit events by fate.
// Label:
//   - result: "stored", "dropped" or "error"
var AuditEventsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "audit_events_total",
		Help:      "Total number of audit events, labelled by whether they were stored, dropped or failed.",
	},
	[]string{"result"},
)

// AuditQueueDepth tracks the current number of events waiting in each worker channel.
// Label:
//   - worker_id: numeric worker index (e.g. "0", "1", …)
var AuditQueueDepth = promauto.NewGaugeVec(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "audit_queue_depth",
		Help:      "Current number of audit events pending in each dispatcher worker channel.",
	},
	[]string{"worker_id"},
)

// AuditWriteDuration measures how long persisting a single audit event takes.
var AuditWriteDuration = promauto.NewHistogram(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "audit_write_duration_seconds",
		Help:      "Duration of audit event persistence from dequeue to insert.",
		Buckets:   prometheus.DefBuckets,
	},
)
