package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/99minutos/user-accounts/internal/core/domain"
	"github.com/99minutos/user-accounts/internal/core/policy"
	"github.com/99minutos/user-accounts/internal/core/ports"
	"github.com/99minutos/user-accounts/internal/core/validation"
)

// UserService implements ports.UserService.
type UserService struct {
	users    ports.UserRepository
	roles    ports.RoleRepository
	hasher   ports.PasswordHasher
	access   policy.UserAccessPolicy
	validate *validation.Validator
	logger   zerolog.Logger
}

func NewUserService(
	users ports.UserRepository,
	roles ports.RoleRepository,
	hasher ports.PasswordHasher,
	access policy.UserAccessPolicy,
	validate *validation.Validator,
	logger zerolog.Logger,
) *UserService {
	if access == nil {
		access = policy.OwnerOnly{}
	}
	if validate == nil {
		validate = validation.New(validation.DefaultPhoneRegion)
	}
	return &UserService{
		users:    users,
		roles:    roles,
		hasher:   hasher,
		access:   access,
		validate: validate,
		logger:   logger,
	}
}

// Register creates an active user from an email and password. An optional
// role id must reference an existing role.
func (s *UserService) Register(ctx context.Context, input ports.RegisterInput) (*domain.User, error) {
	email := normalizeEmail(input.Email)

	var fieldErrs []domain.FieldError
	if fe := s.validate.Field(domain.FieldEmail, email); fe != nil {
		fieldErrs = append(fieldErrs, *fe)
	}
	if fe := s.validate.Field(domain.FieldPassword, input.Password); fe != nil {
		fieldErrs = append(fieldErrs, *fe)
	}

	var roleID *string
	if input.RoleID != nil && strings.TrimSpace(*input.RoleID) != "" {
		id := strings.TrimSpace(*input.RoleID)
		if _, err := s.roles.FindByID(ctx, id); err != nil {
			if !errors.Is(err, domain.ErrRoleNotFound) {
				return nil, fmt.Errorf("looking up role: %w", err)
			}
			fieldErrs = append(fieldErrs, domain.FieldError{Field: string(domain.FieldRoleID), Message: "does not exist"})
		}
		roleID = &id
	}

	if ve := domain.NewValidationError(fieldErrs); ve != nil {
		return nil, ve
	}

	hash, err := s.hashPassword(input.Password)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	user := &domain.User{
		Email:        email,
		PasswordHash: hash,
		RoleID:       roleID,
		Active:       true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	created, err := s.users.Create(ctx, user)
	if err != nil {
		if errors.Is(err, domain.ErrEmailTaken) {
			return nil, emailTaken()
		}
		s.logger.Error().Err(err).Msg("failed to create user")
		return nil, err
	}

	s.logger.Info().Str("user_id", created.ID).Msg("user registered")
	return created, nil
}

func (s *UserService) List(ctx context.Context, filter ports.ListUsersFilter) ([]*domain.User, error) {
	return s.users.List(ctx, filter)
}

// Show returns the target only to its owner. Everyone else gets
// domain.ErrUserNotFound whether or not the record exists.
func (s *UserService) Show(ctx context.Context, callerID, targetID string) (*domain.User, error) {
	if !s.access.CanAccess(callerID, targetID) {
		return nil, domain.ErrUserNotFound
	}
	return s.users.FindByID(ctx, targetID)
}

// Update applies the permitted keys of patch. Any supplied key that is null,
// blank or invalid fails the whole update before anything is written.
func (s *UserService) Update(ctx context.Context, callerID, targetID string, patch domain.UserPatch) (*domain.User, error) {
	if !s.access.CanAccess(callerID, targetID) {
		return nil, domain.ErrUserNotFound
	}

	current, err := s.users.FindByID(ctx, targetID)
	if err != nil {
		return nil, err
	}

	var (
		changes   ports.UserChanges
		fieldErrs []domain.FieldError
		dropped   []string
	)
	for _, field := range patch.Keys() {
		if !domain.Permits(domain.ProfileUpdateFields, field) {
			dropped = append(dropped, string(field))
			continue
		}

		opt := patch[field]
		if opt.Null {
			fieldErrs = append(fieldErrs, domain.FieldError{Field: string(field), Message: "can't be null"})
			continue
		}

		value := opt.Value
		if field == domain.FieldEmail {
			value = normalizeEmail(value)
		}
		if fe := s.validate.Field(field, value); fe != nil {
			fieldErrs = append(fieldErrs, *fe)
			continue
		}

		if err := s.applyChange(&changes, field, value); err != nil {
			return nil, err
		}
	}

	if len(dropped) > 0 {
		s.logger.Debug().Str("user_id", targetID).Strs("fields", dropped).Msg("unpermitted fields dropped")
	}
	if ve := domain.NewValidationError(fieldErrs); ve != nil {
		return nil, ve
	}
	if changes.Empty() {
		return current, nil
	}

	updated, err := s.users.Update(ctx, targetID, changes)
	if err != nil {
		if errors.Is(err, domain.ErrEmailTaken) {
			return nil, emailTaken()
		}
		return nil, err
	}

	s.logger.Info().Str("user_id", targetID).Msg("user updated")
	return updated, nil
}

// hashPassword reports a password bcrypt refuses as too long as a field
// error rather than an internal failure.
func (s *UserService) hashPassword(password string) (string, error) {
	hash, err := s.hasher.Hash(password)
	if errors.Is(err, bcrypt.ErrPasswordTooLong) {
		return "", domain.NewValidationError([]domain.FieldError{{
			Field:   string(domain.FieldPassword),
			Message: fmt.Sprintf("must be at most %d bytes", validation.PasswordMaxBytes),
		}})
	}
	if err != nil {
		return "", fmt.Errorf("hashing password: %w", err)
	}
	return hash, nil
}

func (s *UserService) applyChange(changes *ports.UserChanges, field domain.UserField, value string) error {
	switch field {
	case domain.FieldEmail:
		changes.Email = &value
	case domain.FieldPassword:
		hash, err := s.hashPassword(value)
		if err != nil {
			return err
		}
		changes.PasswordHash = &hash
	case domain.FieldFirstName:
		changes.FirstName = &value
	case domain.FieldLastName:
		changes.LastName = &value
	case domain.FieldContactNo:
		changes.ContactNo = &value
	case domain.FieldAddress:
		changes.Address = &value
	case domain.FieldDOB:
		dob, err := time.Parse(domain.DateLayout, value)
		if err != nil {
			return fmt.Errorf("parsing dob: %w", err)
		}
		changes.DOB = &dob
	case domain.FieldGender:
		changes.Gender = &value
	}
	return nil
}

// Deactivate clears the active flag of the caller's own record.
func (s *UserService) Deactivate(ctx context.Context, callerID, targetID string) error {
	if !s.access.CanAccess(callerID, targetID) {
		return domain.ErrUserNotFound
	}
	if err := s.users.Deactivate(ctx, targetID); err != nil {
		return err
	}
	s.logger.Info().Str("user_id", targetID).Msg("user deactivated")
	return nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func emailTaken() error {
	return domain.NewValidationError([]domain.FieldError{
		{Field: string(domain.FieldEmail), Message: "has already been taken"},
	})
}
