package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/99minutos/user-accounts/internal/core/domain"
	"github.com/99minutos/user-accounts/internal/core/policy"
	"github.com/99minutos/user-accounts/internal/core/service"
	"github.com/99minutos/user-accounts/internal/core/validation"
	"github.com/99minutos/user-accounts/internal/infrastructure/db/sqldb"
)

const testSecret = "test-secret"

type memorySessions struct {
	mu   sync.Mutex
	live map[string]string
}

func (m *memorySessions) Create(_ context.Context, sessionID, userID string, _ time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.live[sessionID] = userID
	return nil
}

func (m *memorySessions) Exists(_ context.Context, sessionID string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.live[sessionID]
	return ok, nil
}

func (m *memorySessions) Revoke(_ context.Context, sessionID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.live, sessionID)
	return nil
}

type testServer struct {
	e     *echo.Echo
	users *sqldb.UserRepository
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	ctx := context.Background()

	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	client, err := sqldb.Open(ctx, sqldb.Config{
		Driver: sqldb.DriverSQLite,
		DSN:    fmt.Sprintf("file:%s?mode=memory&cache=shared", name),
	})
	require.NoError(t, err)
	require.NoError(t, client.EnsureSchema(ctx))
	t.Cleanup(func() { _ = client.Close() })

	log := zerolog.Nop()
	users := sqldb.NewUserRepository(client)
	roles := sqldb.NewRoleRepository(client)
	sessions := &memorySessions{live: make(map[string]string)}
	hasher := service.BcryptHasher{Cost: bcrypt.MinCost}
	v := validation.New(validation.DefaultPhoneRegion)

	roleService := service.NewRoleService(roles, v, log)
	require.NoError(t, roleService.EnsureDefaults(ctx))

	e := NewRouter(Dependencies{
		Users:     service.NewUserService(users, roles, hasher, policy.OwnerOnly{}, v, log),
		Roles:     roleService,
		Auth:      service.NewAuthService(users, roles, sessions, hasher, testSecret, time.Hour, log),
		Sessions:  sessions,
		Validator: v,
		JWTSecret: testSecret,
		Logger:    log,
	})
	return &testServer{e: e, users: users}
}

func (s *testServer) do(t *testing.T, method, path, body, token string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	if token != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	s.e.ServeHTTP(rec, req)
	return rec
}

func (s *testServer) register(t *testing.T, email string) string {
	t.Helper()
	rec := s.do(t, http.MethodPost, "/registrations", fmt.Sprintf(`{"email":%q,"password":"secret1"}`, email), "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var env struct {
		Data struct {
			ID string `json:"id"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	require.NotEmpty(t, env.Data.ID)
	return env.Data.ID
}

func (s *testServer) login(t *testing.T, email string) string {
	t.Helper()
	rec := s.do(t, http.MethodPost, "/sessions", fmt.Sprintf(`{"email":%q,"password":"secret1"}`, email), "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.Token)
	return resp.Token
}

func TestRouter_Registration(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(t, http.MethodPost, "/registrations", `{"email":"a@x.com","password":"secret1"}`, "")
	require.Equal(t, http.StatusOK, rec.Code)

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, float64(http.StatusOK), body["code"])
	data := body["data"].(map[string]any)
	assert.Equal(t, "a@x.com", data["email"])
	assert.Equal(t, true, data["active"])
	assert.NotContains(t, data, "password")

	rec = s.do(t, http.MethodPost, "/registrations", `{"email":"a@x.com","password":"secret1"}`, "")
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Contains(t, rec.Body.String(), "email has already been taken")

	rec = s.do(t, http.MethodPost, "/registrations", `{"email":"b@x.com","password":"abc"}`, "")
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Contains(t, rec.Body.String(), "password must be at least 6 characters")

	rec = s.do(t, http.MethodPost, "/registrations", `{"email":"c@x.com","password":"`+strings.Repeat("é", 40)+`"}`, "")
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Contains(t, rec.Body.String(), "password must be at most 72 bytes")
}

func TestRouter_MetricsEndpoint(t *testing.T) {
	s := newTestServer(t)
	s.register(t, "a@x.com")

	rec := s.do(t, http.MethodGet, "/metrics", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "accounts_http_requests_total{")
	assert.Contains(t, rec.Body.String(), `url="/registrations"`)
	assert.Contains(t, rec.Body.String(), "accounts_user_registrations_total")
}

func TestRouter_RequiresToken(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(t, http.MethodGet, "/users", "", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = s.do(t, http.MethodGet, "/users", "", "not-a-jwt")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRouter_OwnerOnlyAccess(t *testing.T) {
	s := newTestServer(t)
	idA := s.register(t, "a@x.com")
	idB := s.register(t, "b@x.com")
	tokenA := s.login(t, "a@x.com")

	rec := s.do(t, http.MethodGet, "/users/"+idA, "", tokenA)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = s.do(t, http.MethodGet, "/users/"+idB, "", tokenA)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Empty(t, rec.Body.String())

	rec = s.do(t, http.MethodGet, "/users/does-not-exist", "", tokenA)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Empty(t, rec.Body.String())

	rec = s.do(t, http.MethodPut, "/users/"+idB, `{"first_name":"Eve"}`, tokenA)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = s.do(t, http.MethodDelete, "/users/"+idB, "", tokenA)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	other, err := s.users.FindByID(context.Background(), idB)
	require.NoError(t, err)
	assert.Nil(t, other.FirstName)
	assert.True(t, other.Active)
}

func TestRouter_ListUsers(t *testing.T) {
	s := newTestServer(t)
	s.register(t, "a@x.com")
	s.register(t, "b@x.com")
	token := s.login(t, "a@x.com")

	rec := s.do(t, http.MethodGet, "/users", "", token)
	require.Equal(t, http.StatusOK, rec.Code)

	var users []map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &users))
	require.Len(t, users, 2)
	assert.Equal(t, "a@x.com", users[0]["email"])
	assert.Equal(t, "b@x.com", users[1]["email"])

	rec = s.do(t, http.MethodGet, "/users?active=false", "", token)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[]`, rec.Body.String())
}

func TestRouter_UpdateUser(t *testing.T) {
	s := newTestServer(t)
	id := s.register(t, "a@x.com")
	token := s.login(t, "a@x.com")

	rec := s.do(t, http.MethodPut, "/users/"+id, `{"first_name":"Ada","dob":"1815-12-10","active":"false"}`, token)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.JSONEq(t, `{"message":"User was successfully updated."}`, rec.Body.String())

	rec = s.do(t, http.MethodPut, "/users/"+id, `{"first_name":null}`, token)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.JSONEq(t, `{"message":"User could not be updated."}`, rec.Body.String())

	rec = s.do(t, http.MethodPatch, "/users/"+id, `{"dob":"10/12/1815"}`, token)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	stored, err := s.users.FindByID(context.Background(), id)
	require.NoError(t, err)
	require.NotNil(t, stored.FirstName)
	assert.Equal(t, "Ada", *stored.FirstName)
	require.NotNil(t, stored.DOB)
	assert.Equal(t, "1815-12-10", stored.DOB.Format(domain.DateLayout))
	assert.True(t, stored.Active)
}

func TestRouter_DeactivateEndsSession(t *testing.T) {
	s := newTestServer(t)
	id := s.register(t, "a@x.com")
	token := s.login(t, "a@x.com")

	rec := s.do(t, http.MethodDelete, "/users/"+id, "", token)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"message":"User was successfully deactivated."}`, rec.Body.String())

	stored, err := s.users.FindByID(context.Background(), id)
	require.NoError(t, err)
	assert.False(t, stored.Active)

	rec = s.do(t, http.MethodGet, "/users/"+id, "", token)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = s.do(t, http.MethodPost, "/sessions", `{"email":"a@x.com","password":"secret1"}`, "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRouter_Logout(t *testing.T) {
	s := newTestServer(t)
	s.register(t, "a@x.com")
	token := s.login(t, "a@x.com")

	rec := s.do(t, http.MethodDelete, "/sessions", "", token)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = s.do(t, http.MethodGet, "/users", "", token)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRouter_Roles(t *testing.T) {
	s := newTestServer(t)
	s.register(t, "a@x.com")
	token := s.login(t, "a@x.com")

	rec := s.do(t, http.MethodGet, "/roles", "", token)
	require.Equal(t, http.StatusOK, rec.Code)
	var roles []map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &roles))
	assert.Len(t, roles, len(domain.DefaultRoles))

	rec = s.do(t, http.MethodPost, "/roles", `{"name":"Support","key":"support"}`, token)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestRouter_AdminCreatesRole(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(t, http.MethodGet, "/health", "", "")
	require.Equal(t, http.StatusOK, rec.Code)

	s.register(t, "seed@x.com")
	rec = s.do(t, http.MethodGet, "/roles", "", s.login(t, "seed@x.com"))
	var roles []map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &roles))
	adminRole := ""
	for _, r := range roles {
		if r["key"] == domain.RoleAdmin {
			adminRole, _ = r["id"].(string)
		}
	}
	require.NotEmpty(t, adminRole)

	rec = s.do(t, http.MethodPost, "/registrations",
		fmt.Sprintf(`{"email":"root@x.com","password":"secret1","role_id":%q}`, adminRole), "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	token := s.login(t, "root@x.com")

	rec = s.do(t, http.MethodPost, "/roles", `{"name":"Support","key":"Support"}`, token)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.Contains(t, rec.Body.String(), `"key":"support"`)

	rec = s.do(t, http.MethodPost, "/roles", `{"name":"Support","key":"support"}`, token)
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = s.do(t, http.MethodPost, "/roles", `{"name":"Nameless"}`, token)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}
