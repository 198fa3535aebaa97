package ports

import (
	"context"

	"github.com/99minutos/user-accounts/internal/core/domain"
)

// RegisterInput carries the sign-up payload. Empty strings stand for both
// missing and null values; both are rejected.
type RegisterInput struct {
	Email    string
	Password string
	RoleID   *string
}

// UserService defines the user lifecycle use cases. Every operation on a
// single record takes the resolved caller id explicitly.
type UserService interface {
	Register(ctx context.Context, input RegisterInput) (*domain.User, error)
	List(ctx context.Context, filter ListUsersFilter) ([]*domain.User, error)
	Show(ctx context.Context, callerID, targetID string) (*domain.User, error)
	Update(ctx context.Context, callerID, targetID string, patch domain.UserPatch) (*domain.User, error)
	Deactivate(ctx context.Context, callerID, targetID string) error
}

// RoleService defines role lookups and administration.
type RoleService interface {
	List(ctx context.Context) ([]*domain.Role, error)
	Create(ctx context.Context, name, key string) (*domain.Role, error)
	EnsureDefaults(ctx context.Context) error
}

// NewRegisterInput keeps the registration fields of a decoded payload. Null
// values become empty strings so they fail the required checks.
func NewRegisterInput(patch domain.UserPatch) RegisterInput {
	var in RegisterInput
	for field, value := range patch {
		if !domain.Permits(domain.RegistrationFields, field) {
			continue
		}
		switch field {
		case domain.FieldEmail:
			in.Email = value.Value
		case domain.FieldPassword:
			in.Password = value.Value
		case domain.FieldRoleID:
			in.RoleID = value.Ptr()
		}
	}
	return in
}
