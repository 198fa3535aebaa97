package sqldb

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/99minutos/user-accounts/internal/core/domain"
	"github.com/99minutos/user-accounts/internal/core/ports"
)

func newTestClient(t *testing.T) *Client {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	client, err := Open(context.Background(), Config{
		Driver: DriverSQLite,
		DSN:    fmt.Sprintf("file:%s?mode=memory&cache=shared", name),
	})
	require.NoError(t, err)
	require.NoError(t, client.EnsureSchema(context.Background()))
	t.Cleanup(func() { _ = client.Close() })
	return client
}

func newUser(email string) *domain.User {
	now := time.Now().UTC()
	return &domain.User{Email: email, PasswordHash: "hash", Active: true, CreatedAt: now, UpdatedAt: now}
}

func TestOpen_Errors(t *testing.T) {
	_, err := Open(context.Background(), Config{Driver: DriverSQLite})
	assert.Error(t, err)

	_, err = Open(context.Background(), Config{Driver: "oracle", DSN: "x"})
	assert.Error(t, err)
}

func TestUserRepository_CreateAndFind(t *testing.T) {
	ctx := context.Background()
	repo := NewUserRepository(newTestClient(t))

	created, err := repo.Create(ctx, newUser("a@x.com"))
	require.NoError(t, err)
	assert.NotEmpty(t, created.ID)
	assert.True(t, created.Active)

	byID, err := repo.FindByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "a@x.com", byID.Email)
	assert.Nil(t, byID.FirstName)

	byEmail, err := repo.FindByEmail(ctx, "a@x.com")
	require.NoError(t, err)
	assert.Equal(t, created.ID, byEmail.ID)

	_, err = repo.FindByID(ctx, "missing")
	assert.ErrorIs(t, err, domain.ErrUserNotFound)
}

func TestUserRepository_DuplicateEmail(t *testing.T) {
	ctx := context.Background()
	repo := NewUserRepository(newTestClient(t))

	_, err := repo.Create(ctx, newUser("a@x.com"))
	require.NoError(t, err)

	_, err = repo.Create(ctx, newUser("a@x.com"))
	assert.ErrorIs(t, err, domain.ErrEmailTaken)
}

func TestUserRepository_ListOrderAndFilter(t *testing.T) {
	ctx := context.Background()
	repo := NewUserRepository(newTestClient(t))

	var ids []string
	for _, email := range []string{"c@x.com", "a@x.com", "b@x.com"} {
		u, err := repo.Create(ctx, newUser(email))
		require.NoError(t, err)
		ids = append(ids, u.ID)
	}
	require.NoError(t, repo.Deactivate(ctx, ids[1]))

	all, err := repo.List(ctx, ports.ListUsersFilter{})
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, ids, []string{all[0].ID, all[1].ID, all[2].ID})

	inactive := false
	onlyInactive, err := repo.List(ctx, ports.ListUsersFilter{Active: &inactive})
	require.NoError(t, err)
	require.Len(t, onlyInactive, 1)
	assert.Equal(t, ids[1], onlyInactive[0].ID)
	assert.False(t, onlyInactive[0].Active)
}

func TestUserRepository_ListSameTimestampKeepsInsertionOrder(t *testing.T) {
	ctx := context.Background()
	repo := NewUserRepository(newTestClient(t))
	stamp := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

	var ids []string
	for i := 20; i > 0; i-- {
		u := newUser(fmt.Sprintf("user%02d@x.com", i))
		u.CreatedAt, u.UpdatedAt = stamp, stamp
		created, err := repo.Create(ctx, u)
		require.NoError(t, err)
		ids = append(ids, created.ID)
	}

	all, err := repo.List(ctx, ports.ListUsersFilter{})
	require.NoError(t, err)
	require.Len(t, all, len(ids))
	for i, u := range all {
		assert.Equal(t, ids[i], u.ID, "position %d", i)
	}
}

func TestUserRepository_Update(t *testing.T) {
	ctx := context.Background()
	repo := NewUserRepository(newTestClient(t))

	a, err := repo.Create(ctx, newUser("a@x.com"))
	require.NoError(t, err)
	_, err = repo.Create(ctx, newUser("b@x.com"))
	require.NoError(t, err)

	first, gender := "Ada", "female"
	dob := time.Date(1815, 12, 10, 0, 0, 0, 0, time.UTC)
	updated, err := repo.Update(ctx, a.ID, ports.UserChanges{FirstName: &first, Gender: &gender, DOB: &dob})
	require.NoError(t, err)
	require.NotNil(t, updated.FirstName)
	assert.Equal(t, "Ada", *updated.FirstName)
	assert.Equal(t, "female", *updated.Gender)
	require.NotNil(t, updated.DOB)
	assert.Equal(t, "1815-12-10", updated.DOB.Format(domain.DateLayout))
	assert.Nil(t, updated.LastName)
	assert.Equal(t, "a@x.com", updated.Email)

	taken := "b@x.com"
	_, err = repo.Update(ctx, a.ID, ports.UserChanges{Email: &taken})
	assert.ErrorIs(t, err, domain.ErrEmailTaken)

	_, err = repo.Update(ctx, "missing", ports.UserChanges{FirstName: &first})
	assert.ErrorIs(t, err, domain.ErrUserNotFound)
}

func TestUserRepository_Deactivate(t *testing.T) {
	ctx := context.Background()
	repo := NewUserRepository(newTestClient(t))

	a, err := repo.Create(ctx, newUser("a@x.com"))
	require.NoError(t, err)

	require.NoError(t, repo.Deactivate(ctx, a.ID))
	stored, err := repo.FindByID(ctx, a.ID)
	require.NoError(t, err)
	assert.False(t, stored.Active)

	assert.ErrorIs(t, repo.Deactivate(ctx, "missing"), domain.ErrUserNotFound)
}

func TestRoleRepository(t *testing.T) {
	ctx := context.Background()
	repo := NewRoleRepository(newTestClient(t))

	admin, err := repo.Create(ctx, &domain.Role{Name: "Admin", Key: domain.RoleAdmin})
	require.NoError(t, err)
	_, err = repo.Create(ctx, &domain.Role{Name: "Customer", Key: domain.RoleCustomer})
	require.NoError(t, err)

	_, err = repo.Create(ctx, &domain.Role{Name: "Other admin", Key: domain.RoleAdmin})
	assert.ErrorIs(t, err, domain.ErrRoleExists)

	byKey, err := repo.FindByKey(ctx, domain.RoleAdmin)
	require.NoError(t, err)
	assert.Equal(t, admin.ID, byKey.ID)

	byID, err := repo.FindByID(ctx, admin.ID)
	require.NoError(t, err)
	assert.Equal(t, "Admin", byID.Name)

	_, err = repo.FindByKey(ctx, "")
	assert.ErrorIs(t, err, domain.ErrRoleNotFound)
	_, err = repo.FindByID(ctx, "missing")
	assert.ErrorIs(t, err, domain.ErrRoleNotFound)

	roles, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, roles, 2)
	assert.Equal(t, domain.RoleAdmin, roles[0].Key)
}

func TestClient_Ping(t *testing.T) {
	client := newTestClient(t)
	assert.NoError(t, client.Ping(context.Background()))
}
