// Package metrics defines and registers all custom Prometheus metrics for the
// user accounts API. It is the single source of truth for metric names,
// labels, and help strings.
//
// Account counters register with the default Prometheus registry on package
// load. HTTP collectors come from echoprometheus and are registered per router.
package metrics

import (
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "accounts"

// Outcome label values.
const (
	OutcomeSuccess  = "success"
	OutcomeInvalid  = "invalid"
	OutcomeNotFound = "not_found"
	OutcomeError    = "error"
)

// ── User metrics ──────────────────────────────────────────────────────────────

// UserRegistrationsTotal counts successfully created users.
// Label:
//   - channel: "registration" (public sign-up) or "users" (authenticated create)
var UserRegistrationsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "user_registrations_total",
		Help:      "Total number of users created, by channel.",
	},
	[]string{"channel"},
)

// UserOperationsTotal counts user lifecycle calls.
// Labels:
//   - operation: "create", "show", "update", "destroy"
//   - outcome: "success", "invalid", "not_found", "error"
var UserOperationsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "user_operations_total",
		Help:      "Total number of user lifecycle operations, by outcome.",
	},
	[]string{"operation", "outcome"},
)

// LoginsTotal counts sign-in attempts.
// Label:
//   - result: "success", "invalid", "error"
var LoginsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "logins_total",
		Help:      "Total number of login attempts, by result.",
	},
	[]string{"result"},
)

// ── HTTP metrics ──────────────────────────────────────────────────────────────

const httpSubsystem = "http"

// HTTPMiddleware records request count, latency and payload sizes under
// accounts_http_*. Routes are labelled by their template (/users/:id) to bound
// cardinality. The collectors are registered with reg, so each router owns
// its own set.
func HTTPMiddleware(reg prometheus.Registerer) echo.MiddlewareFunc {
	return echoprometheus.NewMiddlewareWithConfig(echoprometheus.MiddlewareConfig{
		Namespace:  namespace,
		Subsystem:  httpSubsystem,
		Registerer: reg,
	})
}

// Handler exposes the default registry, which holds the account counters,
// together with the HTTP collectors gathered by gatherer.
func Handler(gatherer prometheus.Gatherer) echo.HandlerFunc {
	return echoprometheus.NewHandlerWithConfig(echoprometheus.HandlerConfig{
		Gatherer: prometheus.Gatherers{prometheus.DefaultGatherer, gatherer},
	})
}
