package sqldb

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/99minutos/user-accounts/internal/core/domain"
)

type RoleRepository struct {
	client *Client
}

func NewRoleRepository(client *Client) *RoleRepository {
	return &RoleRepository{client: client}
}

func (r *RoleRepository) Create(ctx context.Context, role *domain.Role) (*domain.Role, error) {
	m := &roleModel{
		ID:        role.ID,
		Name:      role.Name,
		Key:       role.Key,
		CreatedAt: role.CreatedAt,
		UpdatedAt: role.UpdatedAt,
	}
	if err := r.client.DB(ctx).Create(m).Error; err != nil {
		if isDuplicateKey(err) {
			return nil, domain.ErrRoleExists
		}
		return nil, fmt.Errorf("insert role: %w", err)
	}
	return m.toDomain(), nil
}

func (r *RoleRepository) FindByID(ctx context.Context, id string) (*domain.Role, error) {
	if id == "" {
		return nil, domain.ErrRoleNotFound
	}
	return r.first(ctx, &roleModel{ID: id})
}

func (r *RoleRepository) FindByKey(ctx context.Context, key string) (*domain.Role, error) {
	if key == "" {
		return nil, domain.ErrRoleNotFound
	}
	return r.first(ctx, &roleModel{Key: key})
}

// first takes a struct condition so the key column is quoted by the dialect.
func (r *RoleRepository) first(ctx context.Context, cond *roleModel) (*domain.Role, error) {
	var m roleModel
	if err := r.client.DB(ctx).Where(cond).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrRoleNotFound
		}
		return nil, fmt.Errorf("find role: %w", err)
	}
	return m.toDomain(), nil
}

func (r *RoleRepository) List(ctx context.Context) ([]*domain.Role, error) {
	var rows []roleModel
	if err := r.client.DB(ctx).Order("created_at asc").Order("id asc").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("list roles: %w", err)
	}
	roles := make([]*domain.Role, 0, len(rows))
	for _, m := range rows {
		roles = append(roles, m.toDomain())
	}
	return roles, nil
}
