package service

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"

	"github.com/99minutos/user-accounts/internal/core/domain"
	"github.com/99minutos/user-accounts/internal/core/validation"
)

func TestRoleService_Create(t *testing.T) {
	repo := &stubRoleRepo{}
	svc := NewRoleService(repo, validation.New("US"), zerolog.Nop())

	role, err := svc.Create(context.Background(), " Support ", " SUPPORT ")
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}
	if role.Name != "Support" || role.Key != "support" {
		t.Fatalf("unexpected role: %+v", role)
	}

	if _, err := svc.Create(context.Background(), "Support again", "support"); !errors.Is(err, domain.ErrRoleExists) {
		t.Fatalf("expected ErrRoleExists, got %v", err)
	}
}

func TestRoleService_Create_Validation(t *testing.T) {
	svc := NewRoleService(&stubRoleRepo{}, nil, zerolog.Nop())

	_, err := svc.Create(context.Background(), "", "")
	ve, ok := domain.AsValidationError(err)
	if !ok {
		t.Fatalf("expected validation error, got %v", err)
	}
	msgs := ve.Messages()
	if len(msgs) != 2 || msgs[0] != "name is required" || msgs[1] != "key is required" {
		t.Fatalf("unexpected messages: %v", msgs)
	}
}

func TestRoleService_EnsureDefaults_Idempotent(t *testing.T) {
	repo := &stubRoleRepo{roles: []*domain.Role{{ID: "role-admin", Name: "Admin", Key: domain.RoleAdmin}}}
	svc := NewRoleService(repo, nil, zerolog.Nop())

	for i := 0; i < 2; i++ {
		if err := svc.EnsureDefaults(context.Background()); err != nil {
			t.Fatalf("EnsureDefaults run %d returned error: %v", i, err)
		}
	}

	roles, _ := svc.List(context.Background())
	if len(roles) != len(domain.DefaultRoles) {
		t.Fatalf("expected %d roles, got %d", len(domain.DefaultRoles), len(roles))
	}
	if _, err := repo.FindByKey(context.Background(), domain.RoleCustomer); err != nil {
		t.Fatalf("customer role not seeded: %v", err)
	}
}

func TestRoleService_EnsureDefaults_StoreError(t *testing.T) {
	boom := errors.New("store down")
	svc := NewRoleService(&stubRoleRepo{createErr: boom}, nil, zerolog.Nop())

	if err := svc.EnsureDefaults(context.Background()); !errors.Is(err, boom) {
		t.Fatalf("expected store error, got %v", err)
	}
}
