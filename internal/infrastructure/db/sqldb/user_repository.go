package sqldb

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/99minutos/user-accounts/internal/core/domain"
	"github.com/99minutos/user-accounts/internal/core/ports"
)

type UserRepository struct {
	client *Client
}

func NewUserRepository(client *Client) *UserRepository {
	return &UserRepository{client: client}
}

func (r *UserRepository) Create(ctx context.Context, u *domain.User) (*domain.User, error) {
	m := newUserModel(u)
	if err := r.client.DB(ctx).Create(m).Error; err != nil {
		if isDuplicateKey(err) {
			return nil, domain.ErrEmailTaken
		}
		return nil, fmt.Errorf("insert user: %w", err)
	}
	return m.toDomain(), nil
}

func (r *UserRepository) FindByID(ctx context.Context, id string) (*domain.User, error) {
	return r.first(ctx, "id = ?", id)
}

func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	return r.first(ctx, "email = ?", email)
}

func (r *UserRepository) first(ctx context.Context, query string, arg any) (*domain.User, error) {
	var m userModel
	if err := r.client.DB(ctx).Where(query, arg).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrUserNotFound
		}
		return nil, fmt.Errorf("find user: %w", err)
	}
	return m.toDomain(), nil
}

// List returns users in insertion order: by created_at, then by the
// time-ordered id for rows stamped in the same instant.
func (r *UserRepository) List(ctx context.Context, filter ports.ListUsersFilter) ([]*domain.User, error) {
	q := r.client.DB(ctx).Model(&userModel{})
	if filter.Active != nil {
		q = q.Where("active = ?", *filter.Active)
	}

	var rows []userModel
	if err := q.Order("created_at asc").Order("id asc").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}

	users := make([]*domain.User, 0, len(rows))
	for _, m := range rows {
		users = append(users, m.toDomain())
	}
	return users, nil
}

// Update writes every supplied column in one statement and re-reads the row.
func (r *UserRepository) Update(ctx context.Context, id string, changes ports.UserChanges) (*domain.User, error) {
	res := r.client.DB(ctx).Model(&userModel{}).Where("id = ?", id).Updates(changeColumns(changes, time.Now().UTC()))
	if err := res.Error; err != nil {
		if isDuplicateKey(err) {
			return nil, domain.ErrEmailTaken
		}
		return nil, fmt.Errorf("update user: %w", err)
	}
	if res.RowsAffected == 0 {
		return nil, domain.ErrUserNotFound
	}
	return r.FindByID(ctx, id)
}

func (r *UserRepository) Deactivate(ctx context.Context, id string) error {
	res := r.client.DB(ctx).Model(&userModel{}).Where("id = ?", id).Updates(map[string]any{
		"active":     false,
		"updated_at": time.Now().UTC(),
	})
	if res.Error != nil {
		return fmt.Errorf("deactivate user: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return domain.ErrUserNotFound
	}
	return nil
}

func changeColumns(c ports.UserChanges, now time.Time) map[string]any {
	cols := map[string]any{"updated_at": now}
	if c.Email != nil {
		cols["email"] = *c.Email
	}
	if c.PasswordHash != nil {
		cols["password_hash"] = *c.PasswordHash
	}
	if c.FirstName != nil {
		cols["first_name"] = *c.FirstName
	}
	if c.LastName != nil {
		cols["last_name"] = *c.LastName
	}
	if c.ContactNo != nil {
		cols["contact_no"] = *c.ContactNo
	}
	if c.Address != nil {
		cols["address"] = *c.Address
	}
	if c.DOB != nil {
		cols["dob"] = *c.DOB
	}
	if c.Gender != nil {
		cols["gender"] = *c.Gender
	}
	return cols
}
