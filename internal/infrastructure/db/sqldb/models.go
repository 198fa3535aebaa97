package sqldb

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/99minutos/user-accounts/internal/core/domain"
)

// newID returns a time-ordered UUIDv7. Ids minted by one process increase
// monotonically, so ordering by id breaks created_at ties in insertion order.
func newID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}

type roleModel struct {
	ID        string `gorm:"type:varchar(36);primaryKey"`
	Name      string `gorm:"size:100;not null"`
	Key       string `gorm:"size:64;not null;uniqueIndex"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (roleModel) TableName() string { return "roles" }

func (m *roleModel) BeforeCreate(*gorm.DB) error {
	if m.ID == "" {
		m.ID = newID()
	}
	return nil
}

func (m roleModel) toDomain() *domain.Role {
	return &domain.Role{
		ID:        m.ID,
		Name:      m.Name,
		Key:       m.Key,
		CreatedAt: m.CreatedAt.UTC(),
		UpdatedAt: m.UpdatedAt.UTC(),
	}
}

type userModel struct {
	ID           string     `gorm:"type:varchar(36);primaryKey"`
	Email        string     `gorm:"size:255;not null;uniqueIndex"`
	PasswordHash string     `gorm:"not null"`
	FirstName    *string    `gorm:"size:100"`
	LastName     *string    `gorm:"size:100"`
	ContactNo    *string    `gorm:"size:32"`
	Address      *string    `gorm:"size:255"`
	DOB          *time.Time `gorm:"column:dob"`
	Gender       *string    `gorm:"size:32"`
	RoleID       *string    `gorm:"type:varchar(36);index"`
	Active       bool       `gorm:"not null;default:true;index"`
	CreatedAt    time.Time  `gorm:"index"`
	UpdatedAt    time.Time
}

func (userModel) TableName() string { return "users" }

func (m *userModel) BeforeCreate(*gorm.DB) error {
	if m.ID == "" {
		m.ID = newID()
	}
	return nil
}

func newUserModel(u *domain.User) *userModel {
	return &userModel{
		ID:           u.ID,
		Email:        u.Email,
		PasswordHash: u.PasswordHash,
		FirstName:    u.FirstName,
		LastName:     u.LastName,
		ContactNo:    u.ContactNo,
		Address:      u.Address,
		DOB:          u.DOB,
		Gender:       u.Gender,
		RoleID:       u.RoleID,
		Active:       u.Active,
		CreatedAt:    u.CreatedAt,
		UpdatedAt:    u.UpdatedAt,
	}
}

func (m userModel) toDomain() *domain.User {
	var dob *time.Time
	if m.DOB != nil {
		v := m.DOB.UTC()
		dob = &v
	}
	return &domain.User{
		ID:           m.ID,
		Email:        m.Email,
		PasswordHash: m.PasswordHash,
		FirstName:    m.FirstName,
		LastName:     m.LastName,
		ContactNo:    m.ContactNo,
		Address:      m.Address,
		DOB:          dob,
		Gender:       m.Gender,
		RoleID:       m.RoleID,
		Active:       m.Active,
		CreatedAt:    m.CreatedAt.UTC(),
		UpdatedAt:    m.UpdatedAt.UTC(),
	}
}

// isDuplicateKey recognizes unique violations whether or not the dialect
// translated them.
func isDuplicateKey(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "duplicate key value") || strings.Contains(msg, "UNIQUE constraint failed")
}
