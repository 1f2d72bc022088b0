package usecase

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/wolfeidau/tenantd/internal/models"
	"github.com/wolfeidau/tenantd/internal/store"
)

// requireActorUser loads the user record behind the actor principal.
// Anonymous actors are rejected with ForbiddenError before any lookup.
func requireActorUser(ctx context.Context, repos *store.Repositories, octx *models.OperationContext) (*models.User, error) {
	if octx.Actor.IsAnonymous() {
		return nil, &models.ForbiddenError{Reason: "authentication required"}
	}

	user, err := repos.Users.FindByExternalID(ctx, octx.Actor.ExternalID)
	if err != nil {
		if errors.Is(err, store.ErrUserNotFound) {
			return nil, &models.NotFoundError{Resource: "user"}
		}
		return nil, translateStoreError(err)
	}
	return user, nil
}

// loadLiveOrganization loads an organization, treating soft-deleted
// records as absent.
func loadLiveOrganization(ctx context.Context, repos *store.Repositories, orgID uuid.UUID) (*models.Organization, error) {
	org, err := repos.Organizations.FindByID(ctx, orgID)
	if err != nil {
		if errors.Is(err, store.ErrOrganizationNotFound) {
			return nil, &models.NotFoundError{Resource: "organization", ID: orgID.String()}
		}
		return nil, translateStoreError(err)
	}
	if org.IsDeleted() {
		return nil, &models.NotFoundError{Resource: "organization", ID: orgID.String()}
	}
	return org, nil
}

// requireRole checks that the user holds an active membership in the
// organization with one of the given roles, denying before any mutation.
func requireRole(ctx context.Context, repos *store.Repositories, userID, orgID uuid.UUID, roles ...string) (*models.Membership, error) {
	membership, err := repos.Memberships.FindActive(ctx, userID, orgID)
	if err != nil {
		if errors.Is(err, store.ErrMembershipNotFound) {
			return nil, &models.ForbiddenError{Reason: "not a member of this organization"}
		}
		return nil, translateStoreError(err)
	}

	for _, role := range roles {
		if membership.Role == role {
			return membership, nil
		}
	}
	return nil, &models.ForbiddenError{Reason: "insufficient role"}
}
