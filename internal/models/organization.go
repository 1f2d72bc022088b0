package models

import (
	"time"

	"github.com/google/uuid"
)

// Organization status values.
const (
	OrganizationStatusActive   = "active"
	OrganizationStatusArchived = "archived"
)

// Organization represents a tenant in the system.
// Each organization has exactly one owner at any time; OwnerUserID must
// reference a user holding the organization's single active owner membership.
type Organization struct {
	ID          uuid.UUID // UUIDv7
	Name        string
	OwnerUserID uuid.UUID // FK to users
	Status      string    // "active" or "archived"

	// Custom holds caller-defined fields in storage shape.
	Custom map[string]any

	CreatedAt time.Time
	UpdatedAt time.Time
	DeletedAt *time.Time // Soft delete
}

// IsDeleted returns true if the organization has been soft-deleted.
func (o *Organization) IsDeleted() bool {
	return o.DeletedAt != nil
}

// IsArchived returns true if the organization has been archived.
func (o *Organization) IsArchived() bool {
	return o.Status == OrganizationStatusArchived
}
