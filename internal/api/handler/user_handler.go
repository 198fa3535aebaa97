package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/99minutos/user-accounts/internal/api/metrics"
	"github.com/99minutos/user-accounts/internal/api/response"
	"github.com/99minutos/user-accounts/internal/core/domain"
	"github.com/99minutos/user-accounts/internal/core/ports"
)

// UserHandler handles HTTP requests for the user lifecycle.
type UserHandler struct {
	users ports.UserService
	auth  ports.AuthService
}

func NewUserHandler(users ports.UserService, auth ports.AuthService) *UserHandler {
	return &UserHandler{users: users, auth: auth}
}

// List handles GET /users.
//
// @Summary      List users
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Param        active  query     bool  false  "Only active (true) or inactive (false) users"
// @Success      200     {array}   userResponse
// @Failure      400     {object}  map[string]string
// @Failure      401     {object}  map[string]string
// @Router       /users [get]
func (h *UserHandler) List(c echo.Context) error {
	var filter ports.ListUsersFilter
	if raw := c.QueryParam("active"); raw != "" {
		active, err := strconv.ParseBool(raw)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "active must be true or false")
		}
		filter.Active = &active
	}

	users, err := h.users.List(c.Request().Context(), filter)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toUserResponses(users))
}

// Create handles POST /users.
//
// @Summary      Create a user
// @Tags         users
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      userPayload  true  "email, password and optional role_id"
// @Success      201   {object}  createUserEnvelope
// @Failure      400   {object}  map[string]string
// @Failure      422   {object}  failureEnvelope
// @Router       /users [post]
func (h *UserHandler) Create(c echo.Context) error {
	return createUser(c, h.users, http.StatusCreated, "users")
}

// Show handles GET /users/:id.
//
// @Summary      Show a user
// @Description  Only the caller's own record is visible; any other id is a 404.
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "User id"
// @Success      200  {object}  userResponse
// @Failure      401  {object}  map[string]string
// @Failure      404
// @Router       /users/{id} [get]
func (h *UserHandler) Show(c echo.Context) error {
	callerID, _, err := ctxCaller(c)
	if err != nil {
		return err
	}

	user, err := h.users.Show(c.Request().Context(), callerID, c.Param("id"))
	metrics.UserOperationsTotal.WithLabelValues("show", outcome(err)).Inc()
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return response.NotFound(c)
		}
		return err
	}
	return c.JSON(http.StatusOK, toUserResponse(user))
}

// Update handles PUT and PATCH /users/:id.
//
// @Summary      Update a user
// @Description  Absent keys are left unchanged. A key supplied as null fails the whole update.
// @Tags         users
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string       true  "User id"
// @Param        body  body      userPayload  true  "Any subset of profile fields"
// @Success      200   {object}  messageEnvelope
// @Failure      400   {object}  map[string]string
// @Failure      404
// @Failure      422   {object}  messageEnvelope
// @Router       /users/{id} [put]
func (h *UserHandler) Update(c echo.Context) error {
	callerID, _, err := ctxCaller(c)
	if err != nil {
		return err
	}

	patch, err := decodePatch(c)
	if err == nil {
		_, err = h.users.Update(c.Request().Context(), callerID, c.Param("id"), patch)
	}
	metrics.UserOperationsTotal.WithLabelValues("update", outcome(err)).Inc()

	switch {
	case err == nil:
		return response.Status(c, http.StatusOK, response.UserUpdateSuccess)
	case errors.Is(err, domain.ErrUserNotFound):
		return response.NotFound(c)
	case errors.Is(err, domain.ErrValidation):
		return response.Status(c, http.StatusUnprocessableEntity, response.UserUpdateFailure)
	default:
		return err
	}
}

// Destroy handles DELETE /users/:id. The record is deactivated, not removed,
// and the session that made the request is closed.
//
// @Summary      Deactivate a user
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "User id"
// @Success      200  {object}  messageEnvelope
// @Failure      401  {object}  map[string]string
// @Failure      404
// @Router       /users/{id} [delete]
func (h *UserHandler) Destroy(c echo.Context) error {
	callerID, sessionID, err := ctxCaller(c)
	if err != nil {
		return err
	}

	ctx := c.Request().Context()
	err = h.users.Deactivate(ctx, callerID, c.Param("id"))
	metrics.UserOperationsTotal.WithLabelValues("destroy", outcome(err)).Inc()
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return response.NotFound(c)
		}
		return err
	}

	if err := h.auth.Logout(ctx, sessionID); err != nil {
		zerolog.Ctx(ctx).Warn().Err(err).Str("user_id", callerID).Msg("failed to revoke session of deactivated user")
	}
	return response.Status(c, http.StatusOK, response.UserDestroySuccess)
}

// createUser is shared by public registration and authenticated creation;
// they differ only in success status and metrics channel.
func createUser(c echo.Context, users ports.UserService, status int, channel string) error {
	patch, err := decodePatch(c)
	if err == nil {
		var user *domain.User
		user, err = users.Register(c.Request().Context(), ports.NewRegisterInput(patch))
		if err == nil {
			metrics.UserOperationsTotal.WithLabelValues("create", metrics.OutcomeSuccess).Inc()
			metrics.UserRegistrationsTotal.WithLabelValues(channel).Inc()
			return response.Created(c, status, toUserResponse(user))
		}
	}

	metrics.UserOperationsTotal.WithLabelValues("create", outcome(err)).Inc()
	if ve, ok := domain.AsValidationError(err); ok {
		return response.Invalid(c, response.UserCreateFailure, ve)
	}
	return err
}

func outcome(err error) string {
	switch {
	case err == nil:
		return metrics.OutcomeSuccess
	case errors.Is(err, domain.ErrValidation):
		return metrics.OutcomeInvalid
	case errors.Is(err, domain.ErrUserNotFound):
		return metrics.OutcomeNotFound
	default:
		return metrics.OutcomeError
	}
}
