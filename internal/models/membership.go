package models

import (
	"time"

	"github.com/google/uuid"
)

// Membership roles.
const (
	RoleOwner  = "owner"
	RoleAdmin  = "admin"
	RoleMember = "member"
)

// ValidRole reports whether role is one of the known membership roles.
func ValidRole(role string) bool {
	switch role {
	case RoleOwner, RoleAdmin, RoleMember:
		return true
	}
	return false
}

// Membership links a user to an organization with a role.
// A membership with JoinedAt unset is a pending invitation. A membership is
// active iff JoinedAt is set and both LeftAt and DeletedAt are unset.
// At most one active membership exists per (user, organization) pair, and an
// organization has exactly one active membership with role "owner".
type Membership struct {
	ID             uuid.UUID // UUIDv7
	UserID         uuid.UUID // FK to users
	OrganizationID uuid.UUID // FK to organizations
	Role           string    // "owner", "admin" or "member"

	InvitedAt *time.Time // Set when the membership was created as an invitation
	JoinedAt  *time.Time // nil while the invitation is pending
	LeftAt    *time.Time // Set when the member leaves or is removed

	// Custom holds caller-defined fields in storage shape.
	Custom map[string]any

	CreatedAt time.Time
	UpdatedAt time.Time
	DeletedAt *time.Time // Soft delete
}

// IsActive returns true if the member has joined and not left.
func (m *Membership) IsActive() bool {
	return m.JoinedAt != nil && m.LeftAt == nil && m.DeletedAt == nil
}

// IsPending returns true while the invitation awaits acceptance.
func (m *Membership) IsPending() bool {
	return m.JoinedAt == nil && m.LeftAt == nil && m.DeletedAt == nil
}

// MemberDetail joins a membership with its user record for member listings.
type MemberDetail struct {
	Membership *Membership
	Username   string
}
