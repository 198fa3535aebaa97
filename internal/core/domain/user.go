package domain

import "time"

// User models an account holder. The caller of every authenticated request is
// itself a User.
type User struct {
	ID           string
	Email        string
	PasswordHash string
	FirstName    *string
	LastName     *string
	ContactNo    *string
	Address      *string
	DOB          *time.Time
	Gender       *string
	RoleID       *string
	Active       bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// DateLayout is the wire and storage format of the dob field.
const DateLayout = "2006-01-02"
