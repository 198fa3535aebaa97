package handler

import (
	"context"
	"net/http/httptest"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/99minutos/user-accounts/internal/api/middleware"
	"github.com/99minutos/user-accounts/internal/core/domain"
	"github.com/99minutos/user-accounts/internal/core/ports"
	"github.com/99minutos/user-accounts/internal/core/validation"
)

type stubUserService struct {
	registerFn   func(ctx context.Context, input ports.RegisterInput) (*domain.User, error)
	listFn       func(ctx context.Context, filter ports.ListUsersFilter) ([]*domain.User, error)
	showFn       func(ctx context.Context, callerID, targetID string) (*domain.User, error)
	updateFn     func(ctx context.Context, callerID, targetID string, patch domain.UserPatch) (*domain.User, error)
	deactivateFn func(ctx context.Context, callerID, targetID string) error
}

func (s *stubUserService) Register(ctx context.Context, input ports.RegisterInput) (*domain.User, error) {
	return s.registerFn(ctx, input)
}

func (s *stubUserService) List(ctx context.Context, filter ports.ListUsersFilter) ([]*domain.User, error) {
	return s.listFn(ctx, filter)
}

func (s *stubUserService) Show(ctx context.Context, callerID, targetID string) (*domain.User, error) {
	return s.showFn(ctx, callerID, targetID)
}

func (s *stubUserService) Update(ctx context.Context, callerID, targetID string, patch domain.UserPatch) (*domain.User, error) {
	return s.updateFn(ctx, callerID, targetID, patch)
}

func (s *stubUserService) Deactivate(ctx context.Context, callerID, targetID string) error {
	return s.deactivateFn(ctx, callerID, targetID)
}

type stubAuthService struct {
	loginFn  func(ctx context.Context, email, password string) (string, *domain.User, error)
	logoutFn func(ctx context.Context, sessionID string) error
}

func (s *stubAuthService) Login(ctx context.Context, email, password string) (string, *domain.User, error) {
	return s.loginFn(ctx, email, password)
}

func (s *stubAuthService) Logout(ctx context.Context, sessionID string) error {
	return s.logoutFn(ctx, sessionID)
}

type stubRoleService struct {
	listFn   func(ctx context.Context) ([]*domain.Role, error)
	createFn func(ctx context.Context, name, key string) (*domain.Role, error)
}

func (s *stubRoleService) List(ctx context.Context) ([]*domain.Role, error) {
	return s.listFn(ctx)
}

func (s *stubRoleService) Create(ctx context.Context, name, key string) (*domain.Role, error) {
	return s.createFn(ctx, name, key)
}

func (s *stubRoleService) EnsureDefaults(context.Context) error { return nil }

func newEcho() *echo.Echo {
	e := echo.New()
	e.Validator = NewValidator(validation.New(validation.DefaultPhoneRegion))
	return e
}

// newContext builds a request context. A non-empty callerID simulates the
// Auth middleware having run.
func newContext(e *echo.Echo, method, target, body, callerID string) (echo.Context, *httptest.ResponseRecorder) {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	if callerID != "" {
		c.Set(middleware.ContextUserID, callerID)
		c.Set(middleware.ContextSessionID, "sess-"+callerID)
		c.Set(middleware.ContextRole, domain.RoleCustomer)
	}
	return c, rec
}

func strPtr(s string) *string { return &s }
