// Package metrics defines and registers the Prometheus metrics of the order
// desk. It is the single source of truth for metric names, labels, and help
// strings.
//
// Metrics register with the default registry on import; the terminal
// presenter's "metrics" command reads them back through prometheus.DefaultGatherer.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "orderdesk"

// ── Repository metrics ────────────────────────────────────────────────────────

// OrderMutationsTotal counts repository mutations.
// Labels:
//   - op: "create", "update" or "remove"
//   - result: "ok", "invalid", "duplicate" or "not_found"
var OrderMutationsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "order_mutations_total",
		Help:      "Total number of order mutations, by operation and result.",
	},
	[]string{"op", "result"},
)

// OrderIDsBurnedTotal counts generated ids that were never stored because the
// create that drew them failed.
var OrderIDsBurnedTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "order_ids_burned_total",
		Help:      "Total number of generated order ids consumed by a failed create.",
	},
)

// PersistenceFailuresTotal counts swallowed durable store errors.
// Label:
//   - op: "save", "save_session" or "restore"
var PersistenceFailuresTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "persistence_failures_total",
		Help:      "Total number of durable store operations that failed or were discarded, by operation.",
	},
	[]string{"op"},
)

// ── Session metrics ───────────────────────────────────────────────────────────

// AuthAttemptsTotal counts login attempts.
// Label:
//   - result: "ok", "invalid_input", "invalid_credentials" or "role_mismatch"
var AuthAttemptsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "auth_attempts_total",
		Help:      "Total number of login attempts, by result.",
	},
	[]string{"result"},
)

// AuthorizationDecisionsTotal counts policy decisions taken by the controller.
// Labels:
//   - action: the policy action (e.g. "edit", "complete-delivery")
//   - decision: "allow" or "deny"
var AuthorizationDecisionsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "authorization_decisions_total",
		Help:      "Total number of authorization decisions, by action and outcome.",
	},
	[]string{"action", "decision"},
)

// VisibleOrders is the size of the window last handed to the presenter.
var VisibleOrders = promauto.NewGauge(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "visible_orders",
		Help:      "Number of orders in the currently rendered window.",
	},
)
