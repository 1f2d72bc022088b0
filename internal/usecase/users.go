package usecase

import (
	"context"
	"errors"
	"time"

	"github.com/wolfeidau/tenantd/internal/models"
	"github.com/wolfeidau/tenantd/internal/store"
)

// UserOutput is the external shape of a user, custom fields translated
// back to their domain names.
type UserOutput struct {
	ID         string         `json:"id"`
	ExternalID string         `json:"externalId"`
	Username   string         `json:"username"`
	Custom     map[string]any `json:"custom,omitempty"`
	CreatedAt  time.Time      `json:"createdAt"`
	UpdatedAt  time.Time      `json:"updatedAt"`
	DeletedAt  *time.Time     `json:"deletedAt,omitempty"`
}

func (s *Service) userOutput(u *models.User) *UserOutput {
	return &UserOutput{
		ID:         u.ID.String(),
		ExternalID: u.ExternalID,
		Username:   u.Username,
		Custom:     s.fromStorage(EntityUser, u.Custom),
		CreatedAt:  u.CreatedAt,
		UpdatedAt:  u.UpdatedAt,
		DeletedAt:  u.DeletedAt,
	}
}

// CreateUserInput carries the validated input of CreateUser.
type CreateUserInput struct {
	Username string
	Custom   map[string]any
}

// CreateUser registers a user for the authenticated principal. The
// external id is taken from the principal, never from the input.
func (s *Service) CreateUser(ctx context.Context, raw map[string]any, octx *models.OperationContext) (*UserOutput, error) {
	return run(s, ctx, &operation[CreateUserInput, *UserOutput]{
		name:      OpCreateUser,
		validator: s.validators[OpCreateUser],
		bind: func(fields map[string]any) (CreateUserInput, error) {
			return CreateUserInput{
				Username: stringField(fields, "username"),
				Custom:   customFields(fields, s.cores[OpCreateUser]),
			}, nil
		},
		execute: s.createUser,
	}, raw, octx)
}

func (s *Service) createUser(ctx context.Context, octx *models.OperationContext, in CreateUserInput) (*UserOutput, error) {
	if octx.Actor.IsAnonymous() {
		return nil, &models.ForbiddenError{Reason: "authentication required"}
	}

	var out *UserOutput
	err := s.uow.Transaction(ctx, func(ctx context.Context, repos *store.Repositories) error {
		_, err := repos.Users.FindByExternalID(ctx, octx.Actor.ExternalID)
		if err == nil {
			return &models.ConflictError{Reason: "user already registered"}
		}
		if !errors.Is(err, store.ErrUserNotFound) {
			return translateStoreError(err)
		}

		now := s.clock.Now()
		user := &models.User{
			ID:         s.ids.NewID(),
			ExternalID: octx.Actor.ExternalID,
			Username:   in.Username,
			Custom:     s.toStorage(EntityUser, in.Custom),
			CreatedAt:  now,
			UpdatedAt:  now,
		}
		if err := repos.Users.Insert(ctx, octx, user); err != nil {
			return translateStoreError(err)
		}
		out = s.userOutput(user)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// GetSelf returns the actor's own user record.
func (s *Service) GetSelf(ctx context.Context, raw map[string]any, octx *models.OperationContext) (*UserOutput, error) {
	return run(s, ctx, &operation[struct{}, *UserOutput]{
		name:      OpGetSelf,
		validator: s.validators[OpGetSelf],
		bind:      func(map[string]any) (struct{}, error) { return struct{}{}, nil },
		execute: func(ctx context.Context, octx *models.OperationContext, _ struct{}) (*UserOutput, error) {
			user, err := requireActorUser(ctx, s.uow.Repositories(), octx)
			if err != nil {
				return nil, err
			}
			return s.userOutput(user), nil
		},
	}, raw, octx)
}

// UpdateSelfInput carries the validated input of UpdateSelf. A nil
// Username leaves the current value untouched.
type UpdateSelfInput struct {
	Username string
	Custom   map[string]any
}

// UpdateSelf mutates the actor's own user record.
func (s *Service) UpdateSelf(ctx context.Context, raw map[string]any, octx *models.OperationContext) (*UserOutput, error) {
	return run(s, ctx, &operation[UpdateSelfInput, *UserOutput]{
		name:      OpUpdateSelf,
		validator: s.validators[OpUpdateSelf],
		bind: func(fields map[string]any) (UpdateSelfInput, error) {
			return UpdateSelfInput{
				Username: stringField(fields, "username"),
				Custom:   customFields(fields, s.cores[OpUpdateSelf]),
			}, nil
		},
		execute: s.updateSelf,
	}, raw, octx)
}

func (s *Service) updateSelf(ctx context.Context, octx *models.OperationContext, in UpdateSelfInput) (*UserOutput, error) {
	var out *UserOutput
	err := s.uow.Transaction(ctx, func(ctx context.Context, repos *store.Repositories) error {
		user, err := requireActorUser(ctx, repos, octx)
		if err != nil {
			return err
		}

		if in.Username != "" {
			user.Username = in.Username
		}
		if len(in.Custom) > 0 {
			if user.Custom == nil {
				user.Custom = make(map[string]any)
			}
			for k, v := range s.toStorage(EntityUser, in.Custom) {
				user.Custom[k] = v
			}
		}
		user.UpdatedAt = s.clock.Now()

		if err := repos.Users.Update(ctx, octx, user); err != nil {
			return translateStoreError(err)
		}
		out = s.userOutput(user)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// DeleteSelf soft-deletes the actor's user record and closes out their
// active memberships. Refused while the user still owns organizations.
func (s *Service) DeleteSelf(ctx context.Context, raw map[string]any, octx *models.OperationContext) (*UserOutput, error) {
	return run(s, ctx, &operation[struct{}, *UserOutput]{
		name:      OpDeleteSelf,
		validator: s.validators[OpDeleteSelf],
		bind:      func(map[string]any) (struct{}, error) { return struct{}{}, nil },
		execute:   s.deleteSelf,
	}, raw, octx)
}

func (s *Service) deleteSelf(ctx context.Context, octx *models.OperationContext, _ struct{}) (*UserOutput, error) {
	var out *UserOutput
	err := s.uow.Transaction(ctx, func(ctx context.Context, repos *store.Repositories) error {
		user, err := requireActorUser(ctx, repos, octx)
		if err != nil {
			return err
		}

		orgs, err := repos.Organizations.ListByMember(ctx, user.ID)
		if err != nil {
			return translateStoreError(err)
		}
		now := s.clock.Now()
		for _, org := range orgs {
			if org.OwnerUserID == user.ID {
				return &models.ConflictError{Reason: "user still owns organizations; transfer ownership first"}
			}
		}
		for _, org := range orgs {
			membership, err := repos.Memberships.FindActive(ctx, user.ID, org.ID)
			if err != nil {
				return translateStoreError(err)
			}
			membership.LeftAt = &now
			membership.UpdatedAt = now
			if err := repos.Memberships.Update(ctx, octx, membership); err != nil {
				return translateStoreError(err)
			}
		}

		user.DeletedAt = &now
		user.UpdatedAt = now
		if err := repos.Users.Update(ctx, octx, user); err != nil {
			return translateStoreError(err)
		}
		out = s.userOutput(user)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// OrganizationListOutput is the result of ListSelfOrganizations.
type OrganizationListOutput struct {
	Items []*OrganizationOutput `json:"items"`
}

// ListSelfOrganizations returns the organizations in which the actor
// holds an active membership.
func (s *Service) ListSelfOrganizations(ctx context.Context, raw map[string]any, octx *models.OperationContext) (*OrganizationListOutput, error) {
	return run(s, ctx, &operation[struct{}, *OrganizationListOutput]{
		name:      OpListSelfOrganizations,
		validator: s.validators[OpListSelfOrganizations],
		bind:      func(map[string]any) (struct{}, error) { return struct{}{}, nil },
		execute: func(ctx context.Context, octx *models.OperationContext, _ struct{}) (*OrganizationListOutput, error) {
			repos := s.uow.Repositories()
			user, err := requireActorUser(ctx, repos, octx)
			if err != nil {
				return nil, err
			}

			orgs, err := repos.Organizations.ListByMember(ctx, user.ID)
			if err != nil {
				return nil, translateStoreError(err)
			}

			out := &OrganizationListOutput{Items: make([]*OrganizationOutput, 0, len(orgs))}
			for _, org := range orgs {
				out.Items = append(out.Items, s.organizationOutput(org))
			}
			return out, nil
		},
	}, raw, octx)
}
