package ports

import (
	"context"
	"time"

	"github.com/99minutos/user-accounts/internal/core/domain"
)

// ListUsersFilter narrows List. A nil Active returns active and inactive users.
type ListUsersFilter struct {
	Active *bool
}

// UserChanges carries the columns an update writes. Nil fields are left as
// stored.
type UserChanges struct {
	Email        *string
	PasswordHash *string
	FirstName    *string
	LastName     *string
	ContactNo    *string
	Address      *string
	DOB          *time.Time
	Gender       *string
}

// Empty reports whether no column would be written.
func (c UserChanges) Empty() bool {
	return c.Email == nil && c.PasswordHash == nil && c.FirstName == nil && c.LastName == nil &&
		c.ContactNo == nil && c.Address == nil && c.DOB == nil && c.Gender == nil
}

// UserRepository defines persistence operations for users.
//
// Implementations enforce email uniqueness in the store and report a
// violation as domain.ErrEmailTaken. Lookups of unknown or malformed ids
// return domain.ErrUserNotFound.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) (*domain.User, error)
	FindByID(ctx context.Context, id string) (*domain.User, error)
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	// List returns users in insertion order.
	List(ctx context.Context, filter ListUsersFilter) ([]*domain.User, error)
	// Update applies changes in a single write and returns the stored record.
	Update(ctx context.Context, id string, changes UserChanges) (*domain.User, error)
	// Deactivate clears the active flag; the record is kept.
	Deactivate(ctx context.Context, id string) error
}
