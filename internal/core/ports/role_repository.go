package ports

import (
	"context"

	"github.com/99minutos/user-accounts/internal/core/domain"
)

// RoleRepository defines persistence operations for roles. Key uniqueness is
// enforced by the store and reported as domain.ErrRoleExists.
type RoleRepository interface {
	Create(ctx context.Context, role *domain.Role) (*domain.Role, error)
	FindByID(ctx context.Context, id string) (*domain.Role, error)
	FindByKey(ctx context.Context, key string) (*domain.Role, error)
	List(ctx context.Context) ([]*domain.Role, error)
}
