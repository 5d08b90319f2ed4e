// internal/common/metrics/metrics.go
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	EventsReduced = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "notification_events_reduced_total",
			Help: "Total number of notification events applied to the app state",
		},
		[]string{"kind"},
	)

	EventsDropped = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "notification_events_dropped_total",
			Help: "Total number of notification events dropped before reduction",
		},
		[]string{"kind", "reason"},
	)

	CommandsDispatched = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "presentation_commands_total",
			Help: "Total number of presentation commands executed",
		},
		[]string{"command", "outcome"},
	)

	PendingBadgeCount = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "notification_pending_badge_count",
			Help: "Current pending badge count",
		},
	)

	SimulatedCalls = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "simulated_calls_total",
			Help: "Total number of simulated incoming calls",
		},
		[]string{"outcome"},
	)

	TokenFetches = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "registration_token_fetches_total",
			Help: "Total number of registration token fetch attempts",
		},
		[]string{"outcome"},
	)

	AuthorizationRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "notification_authorization_requests_total",
			Help: "Total number of notification permission requests by status",
		},
		[]string{"status"},
	)
)
