package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/99minutos/user-accounts/internal/core/domain"
	"github.com/99minutos/user-accounts/internal/core/ports"
	"github.com/99minutos/user-accounts/internal/core/validation"
)

type roleInput struct {
	Name string `json:"name" validate:"required,max=100"`
	Key  string `json:"key"  validate:"required,max=64"`
}

// RoleService implements ports.RoleService.
type RoleService struct {
	repo     ports.RoleRepository
	validate *validation.Validator
	logger   zerolog.Logger
}

func NewRoleService(repo ports.RoleRepository, validate *validation.Validator, logger zerolog.Logger) *RoleService {
	if validate == nil {
		validate = validation.New(validation.DefaultPhoneRegion)
	}
	return &RoleService{repo: repo, validate: validate, logger: logger}
}

func (s *RoleService) List(ctx context.Context) ([]*domain.Role, error) {
	return s.repo.List(ctx)
}

// Create stores a new role. The key is trimmed and lower-cased; a key that
// is already in use yields domain.ErrRoleExists.
func (s *RoleService) Create(ctx context.Context, name, key string) (*domain.Role, error) {
	in := roleInput{Name: strings.TrimSpace(name), Key: strings.ToLower(strings.TrimSpace(key))}
	if ve := domain.NewValidationError(s.validate.Struct(&in)); ve != nil {
		return nil, ve
	}

	now := time.Now().UTC()
	created, err := s.repo.Create(ctx, &domain.Role{Name: in.Name, Key: in.Key, CreatedAt: now, UpdatedAt: now})
	if err != nil {
		return nil, err
	}

	s.logger.Info().Str("role_id", created.ID).Str("key", created.Key).Msg("role created")
	return created, nil
}

// EnsureDefaults creates every domain.DefaultRoles entry that is missing.
func (s *RoleService) EnsureDefaults(ctx context.Context) error {
	for _, role := range domain.DefaultRoles {
		_, err := s.repo.FindByKey(ctx, role.Key)
		if err == nil {
			continue
		}
		if !errors.Is(err, domain.ErrRoleNotFound) {
			return fmt.Errorf("looking up role %q: %w", role.Key, err)
		}
		if _, err := s.Create(ctx, role.Name, role.Key); err != nil && !errors.Is(err, domain.ErrRoleExists) {
			return fmt.Errorf("seeding role %q: %w", role.Key, err)
		}
		s.logger.Info().Str("key", role.Key).Msg("default role seeded")
	}
	return nil
}
