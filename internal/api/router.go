package api

import (
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"

	_ "github.com/99minutos/user-accounts/docs"
	"github.com/99minutos/user-accounts/internal/api/handler"
	"github.com/99minutos/user-accounts/internal/api/metrics"
	"github.com/99minutos/user-accounts/internal/api/middleware"
	"github.com/99minutos/user-accounts/internal/core/domain"
	"github.com/99minutos/user-accounts/internal/core/ports"
	"github.com/99minutos/user-accounts/internal/core/validation"
	infrahttp "github.com/99minutos/user-accounts/internal/infrastructure/http"
	"github.com/99minutos/user-accounts/internal/infrastructure/http/handlers"
)

// Dependencies are the services and settings the router wires together.
type Dependencies struct {
	Users     ports.UserService
	Roles     ports.RoleService
	Auth      ports.AuthService
	Sessions  middleware.SessionChecker
	Validator *validation.Validator
	JWTSecret string
	Logger    zerolog.Logger
	Probes    []handlers.Dependency

	// Metrics receives the HTTP collectors. A nil registry gets a fresh one.
	Metrics *prometheus.Registry
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(deps Dependencies) *echo.Echo {
	registry := deps.Metrics
	if registry == nil {
		registry = prometheus.NewRegistry()
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = NewHTTPErrorHandler(deps.Logger)
	e.Validator = handler.NewValidator(deps.Validator)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(metrics.HTTPMiddleware(registry))
	e.Use(middleware.RequestLogger(deps.Logger))

	// --- Operational endpoints (no auth required) ---
	infrahttp.RegisterProbes(e, deps.Probes...)
	e.GET("/metrics", metrics.Handler(registry))
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	// --- Handlers ---
	registrations := handler.NewRegistrationHandler(deps.Users)
	sessions := handler.NewSessionHandler(deps.Auth)
	users := handler.NewUserHandler(deps.Users, deps.Auth)
	roles := handler.NewRoleHandler(deps.Roles)
	auth := middleware.Auth(deps.JWTSecret, deps.Sessions)

	// --- Public routes ---
	e.POST("/registrations", registrations.Create)
	e.POST("/sessions", sessions.Create)

	// --- Authenticated routes ---
	e.DELETE("/sessions", sessions.Destroy, auth)

	e.GET("/users", users.List, auth)
	e.POST("/users", users.Create, auth)
	e.GET("/users/:id", users.Show, auth)
	e.PUT("/users/:id", users.Update, auth)
	e.PATCH("/users/:id", users.Update, auth)
	e.DELETE("/users/:id", users.Destroy, auth)

	e.GET("/roles", roles.List, auth)
	e.POST("/roles", roles.Create, auth, middleware.RequireRole(domain.RoleAdmin))

	return e
}
