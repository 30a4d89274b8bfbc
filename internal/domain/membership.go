package domain

import "github.com/google/uuid"

// Role is a member's role within a group.
type Role string

const (
	RoleAdmin  Role = "admin"
	RoleMember Role = "member"
)

// Membership links a user to a group with a role.
type Membership struct {
	GroupID uuid.UUID
	UserID  uuid.UUID
	Role    Role
}

// IsAdmin reports whether the membership carries the admin role.
func (m Membership) IsAdmin() bool {
	return m.Role == RoleAdmin
}
