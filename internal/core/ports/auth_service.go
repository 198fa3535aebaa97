package ports

import (
	"context"

	"github.com/99minutos/user-accounts/internal/core/domain"
)

// AuthService signs callers in and out.
type AuthService interface {
	// Login returns a signed bearer token for an active user.
	Login(ctx context.Context, email, password string) (string, *domain.User, error)
	// Logout revokes the session behind a token.
	Logout(ctx context.Context, sessionID string) error
}
