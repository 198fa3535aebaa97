package middleware

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
)

// Context keys set by Auth.
const (
	ContextUserID    = "user_id"
	ContextRole      = "role"
	ContextSessionID = "session_id"
)

// SessionChecker reports whether a token's session is still live.
type SessionChecker interface {
	Exists(ctx context.Context, sessionID string) (bool, error)
}

// Auth validates the JWT, confirms its session has not been revoked and
// injects the caller into context. A nil checker skips the session lookup.
func Auth(jwtSecret string, sessions SessionChecker) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			authHeader := c.Request().Header.Get("Authorization")
			if authHeader == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "missing authorization header")
			}

			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid authorization header")
			}

			claims := jwt.MapClaims{}
			tkn, err := jwt.ParseWithClaims(parts[1], claims, func(token *jwt.Token) (interface{}, error) {
				if token.Method.Alg() != jwt.SigningMethodHS256.Alg() {
					return nil, jwt.ErrTokenSignatureInvalid
				}
				return []byte(jwtSecret), nil
			})
			if err != nil || !tkn.Valid {
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid token")
			}

			userID, _ := claims["sub"].(string)
			sessionID, _ := claims["jti"].(string)
			role, _ := claims["role"].(string)
			if userID == "" || sessionID == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid token")
			}

			if sessions != nil {
				live, err := sessions.Exists(c.Request().Context(), sessionID)
				if err != nil {
					return fmt.Errorf("checking session: %w", err)
				}
				if !live {
					return echo.NewHTTPError(http.StatusUnauthorized, "session expired")
				}
			}

			c.Set(ContextUserID, userID)
			c.Set(ContextRole, role)
			c.Set(ContextSessionID, sessionID)

			return next(c)
		}
	}
}
