package handler

import (
	"github.com/labstack/echo/v4"

	"github.com/99minutos/user-accounts/internal/core/domain"
	"github.com/99minutos/user-accounts/internal/core/validation"
)

// echoValidator wraps the shared validator so Echo can call c.Validate(req).
type echoValidator struct {
	v *validation.Validator
}

// NewValidator returns an echo.Validator. Failures are *domain.ValidationError.
func NewValidator(v *validation.Validator) echo.Validator {
	return &echoValidator{v: v}
}

// Validate satisfies the echo.Validator interface.
func (ev *echoValidator) Validate(i any) error {
	if ve := domain.NewValidationError(ev.v.Struct(i)); ve != nil {
		return ve
	}
	return nil
}
