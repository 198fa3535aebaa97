package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/99minutos/user-accounts/internal/core/domain"
)

// errorResponse is the envelope for errors that no handler rendered.
type errorResponse struct {
	Error  string   `json:"error"`
	Errors []string `json:"errors,omitempty"`
}

// statusMapping pairs a domain sentinel with its status and client message.
type statusMapping struct {
	target  error
	code    int
	message string
}

// knownErrors is checked in order; the first errors.Is match wins.
var knownErrors = []statusMapping{
	{domain.ErrUserNotFound, http.StatusNotFound, ""},
	{domain.ErrRoleNotFound, http.StatusNotFound, ""},
	{domain.ErrEmailTaken, http.StatusUnprocessableEntity, "email has already been taken"},
	{domain.ErrValidation, http.StatusUnprocessableEntity, "validation failed"},
	{domain.ErrRoleExists, http.StatusConflict, "role already exists"},
	{domain.ErrForbidden, http.StatusForbidden, "access forbidden"},
	{domain.ErrInvalidCredentials, http.StatusUnauthorized, "invalid credentials"},
}

// NewHTTPErrorHandler returns the echo.HTTPErrorHandler for the service.
// Unrecognised errors are logged and answered with a generic 500. Not-found
// outcomes are rendered with an empty body.
func NewHTTPErrorHandler(log zerolog.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		code, body := resolveError(err, log, c)
		if code == http.StatusNotFound {
			_ = c.NoContent(code)
			return
		}
		_ = c.JSON(code, body)
	}
}

func resolveError(err error, log zerolog.Logger, c echo.Context) (int, errorResponse) {
	var he *echo.HTTPError
	if errors.As(err, &he) {
		return he.Code, errorResponse{Error: fmt.Sprintf("%v", he.Message)}
	}

	if ve, ok := domain.AsValidationError(err); ok {
		return http.StatusUnprocessableEntity, errorResponse{Error: domain.ErrValidation.Error(), Errors: ve.Messages()}
	}

	for _, m := range knownErrors {
		if errors.Is(err, m.target) {
			return m.code, errorResponse{Error: m.message}
		}
	}

	log.Error().
		Err(err).
		Str("method", c.Request().Method).
		Str("path", c.Path()).
		Msg("unhandled error")

	return http.StatusInternalServerError, errorResponse{Error: "internal server error"}
}
