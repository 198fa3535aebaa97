package middleware

import (
	"fmt"
	"slices"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/99minutos/user-accounts/internal/core/domain"
)

// RequireRole admits callers whose role key, as resolved by Auth, is one of
// roleKeys. Anyone else gets domain.ErrForbidden, rendered as 403 by the HTTP
// error handler. Unlike record access, role gates are not hidden behind 404.
func RequireRole(roleKeys ...string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			role, _ := c.Get(ContextRole).(string)
			if !slices.Contains(roleKeys, role) {
				userID, _ := c.Get(ContextUserID).(string)
				zerolog.Ctx(c.Request().Context()).Info().
					Str("user_id", userID).
					Str("role", role).
					Strs("required", roleKeys).
					Msg("role check denied")
				return fmt.Errorf("role %q on %s: %w", role, c.Path(), domain.ErrForbidden)
			}
			return next(c)
		}
	}
}
