package models

import (
	"time"

	"github.com/google/uuid"
)

// User represents an identity record in the system.
// ExternalID links the user to the auth provider's subject claim.
type User struct {
	ID         uuid.UUID // UUIDv7
	ExternalID string    // auth provider subject
	Username   string

	// Custom holds caller-defined fields in storage shape (keys already
	// translated by the schema engine). Stored as JSONB in postgres.
	Custom map[string]any

	CreatedAt time.Time
	UpdatedAt time.Time
	DeletedAt *time.Time // Soft delete; records are never purged
}

// IsDeleted returns true if the user has been soft-deleted.
func (u *User) IsDeleted() bool {
	return u.DeletedAt != nil
}
