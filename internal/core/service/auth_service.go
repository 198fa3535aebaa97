package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/99minutos/user-accounts/internal/core/domain"
	"github.com/99minutos/user-accounts/internal/core/ports"
)

// AuthService implements login and logout on top of signed tokens and a
// server-side session registry.
type AuthService struct {
	users     ports.UserRepository
	roles     ports.RoleRepository
	sessions  ports.SessionStore
	hasher    ports.PasswordHasher
	jwtSecret string
	tokenTTL  time.Duration
	logger    zerolog.Logger
}

func NewAuthService(
	users ports.UserRepository,
	roles ports.RoleRepository,
	sessions ports.SessionStore,
	hasher ports.PasswordHasher,
	jwtSecret string,
	tokenTTL time.Duration,
	logger zerolog.Logger,
) *AuthService {
	if tokenTTL <= 0 {
		tokenTTL = 24 * time.Hour
	}
	return &AuthService{
		users:     users,
		roles:     roles,
		sessions:  sessions,
		hasher:    hasher,
		jwtSecret: jwtSecret,
		tokenTTL:  tokenTTL,
		logger:    logger,
	}
}

// Login verifies the credentials of an active user, opens a session and
// returns a token naming it. Unknown, inactive and wrong-password attempts
// all yield domain.ErrInvalidCredentials.
func (s *AuthService) Login(ctx context.Context, email, password string) (string, *domain.User, error) {
	email = normalizeEmail(email)
	if email == "" || password == "" {
		return "", nil, domain.ErrInvalidCredentials
	}

	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			s.logger.Info().Msg("login failed: unknown email")
			return "", nil, domain.ErrInvalidCredentials
		}
		return "", nil, err
	}
	if !user.Active {
		s.logger.Info().Str("user_id", user.ID).Msg("login failed: user inactive")
		return "", nil, domain.ErrInvalidCredentials
	}
	if s.hasher.Compare(user.PasswordHash, password) != nil {
		s.logger.Info().Str("user_id", user.ID).Msg("login failed: wrong password")
		return "", nil, domain.ErrInvalidCredentials
	}

	roleKey, err := s.roleKey(ctx, user)
	if err != nil {
		return "", nil, err
	}

	sessionID := uuid.NewString()
	if err := s.sessions.Create(ctx, sessionID, user.ID, s.tokenTTL); err != nil {
		return "", nil, fmt.Errorf("opening session: %w", err)
	}

	token, err := s.generateToken(user.ID, roleKey, sessionID)
	if err != nil {
		return "", nil, err
	}

	s.logger.Info().Str("user_id", user.ID).Msg("user logged in")
	return token, user, nil
}

// Logout revokes a session. An empty id is a no-op.
func (s *AuthService) Logout(ctx context.Context, sessionID string) error {
	if sessionID == "" {
		return nil
	}
	return s.sessions.Revoke(ctx, sessionID)
}

func (s *AuthService) roleKey(ctx context.Context, user *domain.User) (string, error) {
	if user.RoleID == nil || *user.RoleID == "" {
		return "", nil
	}
	role, err := s.roles.FindByID(ctx, *user.RoleID)
	if err != nil {
		if errors.Is(err, domain.ErrRoleNotFound) {
			return "", nil
		}
		return "", err
	}
	return role.Key, nil
}

func (s *AuthService) generateToken(userID, roleKey, sessionID string) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"sub":  userID,
		"role": roleKey,
		"jti":  sessionID,
		"iat":  now.Unix(),
		"exp":  now.Add(s.tokenTTL).Unix(),
	}

	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return t.SignedString([]byte(s.jwtSecret))
}
