package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/99minutos/user-accounts/internal/api/middleware"
)

// ctxCaller extracts the caller injected by the Auth middleware. An empty
// user id means the middleware did not run; reject with 401 before any
// service call.
func ctxCaller(c echo.Context) (userID, sessionID string, err error) {
	userID, _ = c.Get(middleware.ContextUserID).(string)
	if userID == "" {
		return "", "", echo.NewHTTPError(http.StatusUnauthorized, "missing authentication claims")
	}
	sessionID, _ = c.Get(middleware.ContextSessionID).(string)
	return userID, sessionID, nil
}
