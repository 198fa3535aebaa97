// Package response renders service outcomes as the JSON envelopes clients
// depend on.
package response

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/99minutos/user-accounts/internal/core/domain"
)

// Message keys.
const (
	UserCreateSuccess  = "user.create.success"
	UserCreateFailure  = "user.create.failure"
	UserUpdateSuccess  = "user.update.success"
	UserUpdateFailure  = "user.update.failure"
	UserDestroySuccess = "user.destroy.success"
	RoleCreateFailure  = "role.create.failure"
)

var catalog = map[string]string{
	UserCreateSuccess:  "User was successfully created.",
	UserCreateFailure:  "User could not be created.",
	UserUpdateSuccess:  "User was successfully updated.",
	UserUpdateFailure:  "User could not be updated.",
	UserDestroySuccess: "User was successfully deactivated.",
	RoleCreateFailure:  "Role could not be created.",
}

// Message resolves a message key. Unknown keys are returned unchanged.
func Message(key string) string {
	if msg, ok := catalog[key]; ok {
		return msg
	}
	return key
}

// Envelope is the wrapper every user lifecycle response uses.
type Envelope struct {
	Code    int      `json:"code,omitempty"`
	Message string   `json:"message"`
	Data    any      `json:"data,omitempty"`
	Errors  []string `json:"errors,omitempty"`
}

// Created renders {code, message, data} with the given status.
func Created(c echo.Context, status int, data any) error {
	return c.JSON(status, Envelope{Code: status, Message: Message(UserCreateSuccess), Data: data})
}

// Invalid renders {message, errors} with 422.
func Invalid(c echo.Context, key string, ve *domain.ValidationError) error {
	var errs []string
	if ve != nil {
		errs = ve.Messages()
	}
	return c.JSON(http.StatusUnprocessableEntity, Envelope{Message: Message(key), Errors: errs})
}

// Status renders {message} with the given status.
func Status(c echo.Context, status int, key string) error {
	return c.JSON(status, Envelope{Message: Message(key)})
}

// NotFound renders an empty 404. Missing and forbidden records look the same.
func NotFound(c echo.Context) error {
	return c.NoContent(http.StatusNotFound)
}
