package domain

import "time"

const (
	RoleAdmin    = "admin"
	RoleCustomer = "customer"
)

// Role is a named access level. Key is the stable machine identifier and is
// unique across roles.
type Role struct {
	ID        string
	Name      string
	Key       string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// DefaultRoles are seeded at start-up when missing.
var DefaultRoles = []Role{
	{Name: "Admin", Key: RoleAdmin},
	{Name: "Customer", Key: RoleCustomer},
}
