// Package metrics defines and registers all custom Prometheus metrics for the
// school portal admission core. It is the single source of truth for metric
// names, labels, and help strings. Metrics register with the default registry
// at import time via promauto.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "portal"

// ── Authentication metrics ────────────────────────────────────────────────────

// LoginAttemptsTotal counts login outcomes.
// Label:
//   - result: "success", "failure" (bad email or password), or "disabled"
var LoginAttemptsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "login_attempts_total",
		Help:      "Total number of login attempts, by outcome.",
	},
	[]string{"result"},
)

// TokenVerificationsTotal counts access-token verification outcomes at the
// admission gate.
// Label:
//   - result: "ok", "expired", "bad_signature", "malformed", or "missing"
var TokenVerificationsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "token_verifications_total",
		Help:      "Total number of access token verifications, by result.",
	},
	[]string{"result"},
)

// ── Rate limiting metrics ─────────────────────────────────────────────────────

// RateLimitDecisionsTotal counts rate-limit checks.
// Labels:
//   - preset: the endpoint class ("auth", "api", "sensitive")
//   - decision: "allow" or "reject"
var RateLimitDecisionsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "ratelimit_decisions_total",
		Help:      "Total number of rate limit checks, by preset and decision.",
	},
	[]string{"preset", "decision"},
)

// ── Sequence allocation metrics ───────────────────────────────────────────────

// SequenceAllocationsTotal counts issued registration numbers.
// Label:
//   - mode: "sequential" (clean sequence) or "fallback" (random suffix)
var SequenceAllocationsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "sequence_allocations_total",
		Help:      "Total number of registration numbers allocated, by mode.",
	},
	[]string{"mode"},
)

// ── Audit trail metrics ───────────────────────────────────────────────────────

// AuditQueueDepth tracks the current number of audit events waiting in each
// dispatcher worker channel.
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

// AuditEventsDroppedTotal counts audit events dropped because a worker buffer
// was full. Recording is best-effort; drops are visible here, not as errors.
var AuditEventsDroppedTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "audit_events_dropped_total",
		Help:      "Total number of audit events dropped due to full worker buffers.",
	},
)
