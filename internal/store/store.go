// Package store defines the repository ports consumed by use cases and
// implemented by the persistence adapters in the memory and postgres
// subpackages.
package store

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/wolfeidau/tenantd/internal/models"
)

// Sentinel errors for common store conditions. Absence is reported with
// a not-found sentinel rather than a nil result; adapter faults are wrapped
// in models.PersistenceError and never leak driver types.
var (
	ErrUserNotFound         = errors.New("user not found")
	ErrUserAlreadyExists    = errors.New("user already exists")
	ErrOrganizationNotFound = errors.New("organization not found")
	ErrMembershipNotFound   = errors.New("membership not found")
	// ErrMembershipAlreadyExists reports a second concurrent membership for
	// the same (user, organization) pair.
	ErrMembershipAlreadyExists = errors.New("membership already exists")
	// ErrOwnerAlreadyExists reports a second concurrent owner membership
	// for the same organization.
	ErrOwnerAlreadyExists = errors.New("organization already has an owner")
)

// UserStore defines the interface for user storage operations.
type UserStore interface {
	// Insert creates a new user. Returns ErrUserAlreadyExists if a live
	// user with the same external ID exists.
	Insert(ctx context.Context, op *models.OperationContext, user *models.User) error

	// Update updates an existing user. Returns ErrUserNotFound if absent.
	Update(ctx context.Context, op *models.OperationContext, user *models.User) error

	// Delete removes a user record. Soft deletion goes through Update;
	// Delete is a hard remove. Returns ErrUserNotFound if absent.
	Delete(ctx context.Context, op *models.OperationContext, id uuid.UUID) error

	// FindByID retrieves a user by ID. Returns ErrUserNotFound if absent.
	FindByID(ctx context.Context, id uuid.UUID) (*models.User, error)

	// FindByExternalID retrieves the live user linked to an auth provider
	// subject. Returns ErrUserNotFound if absent or soft-deleted.
	FindByExternalID(ctx context.Context, externalID string) (*models.User, error)
}

// OrganizationStore defines the interface for organization storage operations.
type OrganizationStore interface {
	Insert(ctx context.Context, op *models.OperationContext, org *models.Organization) error

	// Update updates an existing organization. Returns
	// ErrOrganizationNotFound if absent.
	Update(ctx context.Context, op *models.OperationContext, org *models.Organization) error

	Delete(ctx context.Context, op *models.OperationContext, id uuid.UUID) error

	// FindByID retrieves an organization by ID, including soft-deleted
	// records. Returns ErrOrganizationNotFound if absent.
	FindByID(ctx context.Context, id uuid.UUID) (*models.Organization, error)

	// ListByMember returns live organizations in which the user holds an
	// active membership, newest first.
	ListByMember(ctx context.Context, userID uuid.UUID) ([]*models.Organization, error)
}

// MembershipStore defines the interface for membership storage operations.
type MembershipStore interface {
	// Insert creates a membership. Returns ErrMembershipAlreadyExists for
	// a duplicate live (user, organization) pair and ErrOwnerAlreadyExists
	// for a second live owner in the same organization.
	Insert(ctx context.Context, op *models.OperationContext, m *models.Membership) error

	Update(ctx context.Context, op *models.OperationContext, m *models.Membership) error

	Delete(ctx context.Context, op *models.OperationContext, id uuid.UUID) error

	FindByID(ctx context.Context, id uuid.UUID) (*models.Membership, error)

	// FindActive returns the active membership for the pair, or
	// ErrMembershipNotFound.
	FindActive(ctx context.Context, userID, orgID uuid.UUID) (*models.Membership, error)

	// FindPending returns the pending invitation for the pair, or
	// ErrMembershipNotFound.
	FindPending(ctx context.Context, userID, orgID uuid.UUID) (*models.Membership, error)

	// FindOwner returns the organization's active owner membership, or
	// ErrMembershipNotFound.
	FindOwner(ctx context.Context, orgID uuid.UUID) (*models.Membership, error)

	// ListByOrganization returns memberships joined with their user
	// records, paginated, ordered by creation time.
	ListByOrganization(ctx context.Context, orgID uuid.UUID, page Page) (*MemberPage, error)
}
