package auth

import "github.com/google/uuid"

// Role is the capability carried by an authenticated caller.
type Role string

const (
	RoleCustomer Role = "CUSTOMER"
	RoleStaff    Role = "STAFF"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	return r == RoleCustomer || r == RoleStaff
}

// Principal is an authenticated identity: who is calling and what they may do.
type Principal struct {
	ID   uuid.UUID
	Role Role
}

func (p Principal) IsStaff() bool {
	return p.Role == RoleStaff
}
