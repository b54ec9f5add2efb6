// Package metrics defines the custom Prometheus metrics of the moderation
// portal API. They are registered with the same registry the router hands to
// the echoprometheus middleware, so /metrics exposes both sets.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "portal"

// Metrics holds the counters the HTTP handlers update.
type Metrics struct {
	// AuthAttemptsTotal counts register and login calls.
	// Labels:
	//   - action: "register" or "login"
	//   - result: "ok" or the error class ("invalid", "conflict", "denied", "error")
	AuthAttemptsTotal *prometheus.CounterVec

	// EntitiesCreatedTotal counts accepted submissions.
	// Label:
	//   - entity: "task", "bug" or "application"
	EntitiesCreatedTotal *prometheus.CounterVec

	// StatusTransitionsTotal counts status changes that were persisted.
	// Labels:
	//   - entity: "task", "bug" or "application"
	//   - status: the new status
	StatusTransitionsTotal *prometheus.CounterVec

	// TransitionsDeniedTotal counts status changes refused by the workflow.
	// Labels:
	//   - entity: "task", "bug" or "application"
	//   - reason: "forbidden", "invalid_transition", "invalid_status" or "not_found"
	TransitionsDeniedTotal *prometheus.CounterVec
}

// New registers the portal metrics with reg. It panics if they are already
// registered there, like promauto does.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		AuthAttemptsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "auth_attempts_total",
				Help:      "Total number of register and login attempts, by result.",
			},
			[]string{"action", "result"},
		),
		EntitiesCreatedTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "entities_created_total",
				Help:      "Total number of tasks, bugs and applications created.",
			},
			[]string{"entity"},
		),
		StatusTransitionsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "status_transitions_total",
				Help:      "Total number of applied status transitions.",
			},
			[]string{"entity", "status"},
		),
		TransitionsDeniedTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "transitions_denied_total",
				Help:      "Total number of status transitions refused before persistence.",
			},
			[]string{"entity", "reason"},
		),
	}
}
