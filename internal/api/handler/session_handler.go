package handler

import (
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/99minutos/user-accounts/internal/api/metrics"
	"github.com/99minutos/user-accounts/internal/core/domain"
	"github.com/99minutos/user-accounts/internal/core/ports"
)

// SessionHandler signs callers in and out.
type SessionHandler struct {
	auth ports.AuthService
}

func NewSessionHandler(auth ports.AuthService) *SessionHandler {
	return &SessionHandler{auth: auth}
}

// Create authenticates a user and returns a JWT token.
//
// @Summary      Login
// @Tags         sessions
// @Accept       json
// @Produce      json
// @Param        body  body      loginRequest  true  "Login credentials"
// @Success      200   {object}  loginResponse
// @Failure      400   {object}  map[string]string
// @Failure      401   {object}  map[string]string
// @Router       /sessions [post]
func (h *SessionHandler) Create(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid payload"})
	}
	if err := c.Validate(&req); err != nil {
		msg := err.Error()
		if ve, ok := domain.AsValidationError(err); ok {
			msg = strings.Join(ve.Messages(), "; ")
		}
		return c.JSON(http.StatusBadRequest, map[string]string{"error": msg})
	}

	token, user, err := h.auth.Login(c.Request().Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidCredentials) {
			metrics.LoginsTotal.WithLabelValues(metrics.OutcomeInvalid).Inc()
			return c.JSON(http.StatusUnauthorized, map[string]string{"error": "invalid credentials"})
		}
		metrics.LoginsTotal.WithLabelValues(metrics.OutcomeError).Inc()
		return err
	}

	metrics.LoginsTotal.WithLabelValues(metrics.OutcomeSuccess).Inc()
	return c.JSON(http.StatusOK, loginResponse{Token: token, User: toUserResponse(user)})
}

// Destroy revokes the session behind the presented token.
//
// @Summary      Logout
// @Tags         sessions
// @Security     BearerAuth
// @Success      204
// @Failure      401  {object}  map[string]string
// @Router       /sessions [delete]
func (h *SessionHandler) Destroy(c echo.Context) error {
	_, sessionID, err := ctxCaller(c)
	if err != nil {
		return err
	}
	if err := h.auth.Logout(c.Request().Context(), sessionID); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}
