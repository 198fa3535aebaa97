package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/99minutos/user-accounts/internal/core/ports"
)

// RegistrationHandler handles public sign-up.
type RegistrationHandler struct {
	users ports.UserService
}

func NewRegistrationHandler(users ports.UserService) *RegistrationHandler {
	return &RegistrationHandler{users: users}
}

// Create handles POST /registrations.
//
// @Summary      Register a new user
// @Description  Only email and password are required. role_id, when given, must reference an existing role.
// @Tags         registrations
// @Accept       json
// @Produce      json
// @Param        body  body      userPayload  true  "email, password and optional role_id"
// @Success      200   {object}  createUserEnvelope
// @Failure      400   {object}  map[string]string
// @Failure      422   {object}  failureEnvelope
// @Router       /registrations [post]
func (h *RegistrationHandler) Create(c echo.Context) error {
	return createUser(c, h.users, http.StatusOK, "registration")
}
