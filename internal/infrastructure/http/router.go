package http

import (
	"github.com/labstack/echo/v4"

	"github.com/99minutos/user-accounts/internal/infrastructure/http/handlers"
)

// RegisterProbes mounts the liveness and readiness probes. No auth required.
func RegisterProbes(e *echo.Echo, deps ...handlers.Dependency) {
	healthHandler := handlers.NewHealthHandler()
	healthDepsHandler := handlers.NewHealthDependenciesHandler(deps...)

	e.GET("/health", healthHandler.Liveness)            // liveness: is the process alive?
	e.GET("/health/ready", healthDepsHandler.Readiness) // readiness: are dependencies up?
}
